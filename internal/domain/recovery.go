package domain

import "time"

// RecoveryCode is the per-user single-use password recovery slot. Code holds
// the exact token string mailed to the user; redemption requires string
// equality. Once Used is set the slot is permanently inert until a new
// recovery request overwrites it.
type RecoveryCode struct {
	UserID    UserID    `gorm:"type:uuid;primaryKey" db:"user_id"`
	Code      string    `gorm:"type:text;not null" db:"code"`
	Used      bool      `gorm:"not null;default:false" db:"used"`
	CreatedAt time.Time `gorm:"not null" db:"created_at"`
	UpdatedAt time.Time `gorm:"not null" db:"updated_at"`
}

func (RecoveryCode) TableName() string { return "recovery_codes" }
