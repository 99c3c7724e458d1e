package service

import "context"

type RecoveryService interface {
	// Request succeeds for unknown email addresses too, so responses cannot
	// be used to enumerate accounts.
	Request(ctx context.Context, email string) error
	Redeem(ctx context.Context, newPassword, recoveryCode string) error
}
