package domain

import "time"

type User struct {
	ID             UserID    `gorm:"type:uuid;primaryKey" db:"id" json:"id"`
	Login          string    `gorm:"type:citext;uniqueIndex:ux_users_login" db:"login" json:"login"`
	Email          string    `gorm:"type:citext;uniqueIndex:ux_users_email" db:"email" json:"email"`
	EmailConfirmed bool      `gorm:"not null;default:false" db:"email_confirmed" json:"emailConfirmed"`
	CreatedAt      time.Time `gorm:"not null" db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `gorm:"not null" db:"updated_at" json:"updatedAt"`
}

func (User) TableName() string { return "users" }

type EmailConfirmation struct {
	UserID    UserID    `gorm:"type:uuid;index" db:"user_id"`
	Code      string    `gorm:"type:text;uniqueIndex" db:"code"`
	ExpiresAt time.Time `gorm:"not null" db:"expires_at"`
	Consumed  bool      `gorm:"not null;default:false" db:"consumed"`
	CreatedAt time.Time `gorm:"not null" db:"created_at"`
}

func (EmailConfirmation) TableName() string { return "email_confirmations" }
