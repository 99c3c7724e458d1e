package service

import "context"

type EmailService interface {
	SendConfirmation(ctx context.Context, to, code string) error
	SendRecovery(ctx context.Context, to, recoveryCode string) error
}
