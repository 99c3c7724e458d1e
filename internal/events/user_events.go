package events

import "time"

type UserRegistered struct {
	UserID string    `json:"userId"`
	Email  string    `json:"email"`
	At     time.Time `json:"at"`
}

type PasswordChanged struct {
	UserID string    `json:"userId"`
	At     time.Time `json:"at"`
}
