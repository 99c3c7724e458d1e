package domain

import "time"

// Visit is an append-only record of one guarded request. Rows are only ever
// counted, never updated.
type Visit struct {
	ID        uint      `gorm:"primaryKey" db:"id"`
	IP        string    `gorm:"type:inet;index:ix_visits_ip_url" db:"ip"`
	URL       string    `gorm:"type:text;index:ix_visits_ip_url" db:"url"`
	CreatedAt time.Time `gorm:"not null;index" db:"created_at"`
}

func (Visit) TableName() string { return "visits" }
