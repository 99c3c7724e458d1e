package dto

import "time"

type DeviceView struct {
	IP             string    `json:"ip"`
	Title          string    `json:"title"`
	LastActiveDate time.Time `json:"lastActiveDate"`
	DeviceID       string    `json:"deviceId"`
}
