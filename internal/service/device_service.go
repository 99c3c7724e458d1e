package service

import (
	"context"

	"blogger-auth/internal/dto"
)

// DeviceService manages the multi-device session registry. Caller identity
// always comes from the refresh token, never from the request body.
type DeviceService interface {
	List(ctx context.Context, refreshToken string) ([]dto.DeviceView, error)
	RevokeOthers(ctx context.Context, refreshToken string) error
	RevokeOne(ctx context.Context, refreshToken, deviceID string) error
}
