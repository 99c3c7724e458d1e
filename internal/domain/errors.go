package domain

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("device belongs to another user")
	ErrSessionNotFound    = errors.New("session not found")
	ErrRateLimited        = errors.New("rate limited")

	// Recovery failures share one message so the response cannot be used as
	// an oracle for code validity.
	ErrBadRecoveryCode = errors.New("recovery code not correct")

	ErrBadConfirmationCode = errors.New("confirmation code not correct")
)
