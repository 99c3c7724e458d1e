package events

import "time"

type SessionStarted struct {
	DeviceID string    `json:"deviceId"`
	UserID   string    `json:"userId"`
	At       time.Time `json:"at"`
}

type TokenRefreshed struct {
	DeviceID string    `json:"deviceId"`
	UserID   string    `json:"userId"`
	At       time.Time `json:"at"`
}

type SessionRevoked struct {
	DeviceID string    `json:"deviceId"`
	UserID   string    `json:"userId"`
	At       time.Time `json:"at"`
}

type SessionsRevokedBulk struct {
	KeptDeviceID string    `json:"keptDeviceId"`
	UserID       string    `json:"userId"`
	Revoked      int64     `json:"revoked"`
	At           time.Time `json:"at"`
}
