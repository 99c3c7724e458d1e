package domain

import "time"

// Session is one row per authenticated device. TokenExpirationDate mirrors
// the exp claim of the currently valid refresh token for that device; a
// presented refresh token whose exp differs from the stored value has been
// rotated out (or forged) and must be rejected.
type Session struct {
	ID                  SessionID `gorm:"type:uuid;primaryKey" db:"id"`
	UserID              UserID    `gorm:"type:uuid;index" db:"user_id"`
	DeviceID            DeviceID  `gorm:"type:uuid;uniqueIndex:ux_sessions_deviceid" db:"device_id"`
	IP                  string    `gorm:"type:inet" db:"ip"`
	Title               string    `gorm:"type:text" db:"title"`
	LastActiveDate      time.Time `gorm:"not null" db:"last_active_date"`
	TokenIssueDate      time.Time `gorm:"not null" db:"token_issue_date"`
	TokenExpirationDate time.Time `gorm:"not null" db:"token_expiration_date"`
	CreatedAt           time.Time `gorm:"not null" db:"created_at"`
}

func (Session) TableName() string { return "sessions" }
