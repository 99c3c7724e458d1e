package service

import (
	"context"

	"blogger-auth/internal/dto"
)

type RegistrationService interface {
	Register(ctx context.Context, r dto.RegistrationRequest) error
	Confirm(ctx context.Context, code string) error
	// Resend succeeds silently for unknown or already-confirmed addresses,
	// so responses cannot be used to enumerate accounts.
	Resend(ctx context.Context, email string) error
}
