package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"blogger-auth/internal/domain"
)

// Claim shapes are wire-exact for interop with existing clients: access
// tokens carry {userId, exp}, refresh tokens {userId, deviceId, exp} and
// recovery tokens {userId|null, exp}. Nothing else is set.

type AccessClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

type RefreshClaims struct {
	UserID   string `json:"userId"`
	DeviceID string `json:"deviceId"`
	jwt.RegisteredClaims
}

type RecoveryClaims struct {
	// Nil marshals as "userId":null, keeping the token shape identical for
	// unknown email addresses.
	UserID *string `json:"userId"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed, time-bounded tokens. Verification
// is a typed result, never an error: false means malformed, expired or
// tampered, and callers treat all three as unauthenticated.
type TokenService interface {
	IssueAccess(userID domain.UserID, now time.Time) (string, error)
	IssueRefresh(userID domain.UserID, deviceID domain.DeviceID, now time.Time) (token string, expiresAt time.Time, err error)
	IssueRecovery(userID *domain.UserID, now time.Time) (string, error)

	VerifyAccess(token string) (*AccessClaims, bool)
	VerifyRefresh(token string) (*RefreshClaims, bool)
	VerifyRecovery(token string) (*RecoveryClaims, bool)
}
