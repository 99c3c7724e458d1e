package impl

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"blogger-auth/internal/domain"
	"blogger-auth/internal/service"
)

type TokenConfig struct {
	AccessTTL   time.Duration // e.g. 15 * time.Minute
	RefreshTTL  time.Duration // e.g. 30 * 24h
	RecoveryTTL time.Duration // e.g. 1h
	SigningKey  []byte        // HS256 secret
}

var _ service.TokenService = (*TokenServiceImpl)(nil)

type TokenServiceImpl struct {
	cfg TokenConfig
}

func NewTokenServiceHS256(cfg TokenConfig) *TokenServiceImpl {
	return &TokenServiceImpl{cfg: cfg}
}

// exp carries whole seconds only, so expirations are truncated at issue time
// and the stored session expiration can be compared exactly.
func (t *TokenServiceImpl) expiry(now time.Time, ttl time.Duration) time.Time {
	return now.Add(ttl).Truncate(time.Second)
}

func (t *TokenServiceImpl) sign(claims jwt.Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.cfg.SigningKey)
}

func (t *TokenServiceImpl) IssueAccess(userID domain.UserID, now time.Time) (string, error) {
	return t.sign(service.AccessClaims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(t.expiry(now, t.cfg.AccessTTL)),
		},
	})
}

func (t *TokenServiceImpl) IssueRefresh(userID domain.UserID, deviceID domain.DeviceID, now time.Time) (string, time.Time, error) {
	exp := t.expiry(now, t.cfg.RefreshTTL)
	token, err := t.sign(service.RefreshClaims{
		UserID:   userID.String(),
		DeviceID: deviceID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	if err != nil {
		return "", time.Time{}, err
	}
	return token, exp, nil
}

func (t *TokenServiceImpl) IssueRecovery(userID *domain.UserID, now time.Time) (string, error) {
	var sub *string
	if userID != nil {
		s := userID.String()
		sub = &s
	}
	return t.sign(service.RecoveryClaims{
		UserID: sub,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(t.expiry(now, t.cfg.RecoveryTTL)),
		},
	})
}

func (t *TokenServiceImpl) parser() *jwt.Parser {
	return jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
}

func (t *TokenServiceImpl) keyFunc(token *jwt.Token) (interface{}, error) {
	return t.cfg.SigningKey, nil
}

func (t *TokenServiceImpl) VerifyAccess(token string) (*service.AccessClaims, bool) {
	claims := &service.AccessClaims{}
	tok, err := t.parser().ParseWithClaims(token, claims, t.keyFunc)
	if err != nil || !tok.Valid || claims.UserID == "" {
		return nil, false
	}
	return claims, true
}

func (t *TokenServiceImpl) VerifyRefresh(token string) (*service.RefreshClaims, bool) {
	claims := &service.RefreshClaims{}
	tok, err := t.parser().ParseWithClaims(token, claims, t.keyFunc)
	if err != nil || !tok.Valid || claims.UserID == "" || claims.DeviceID == "" {
		return nil, false
	}
	return claims, true
}

func (t *TokenServiceImpl) VerifyRecovery(token string) (*service.RecoveryClaims, bool) {
	claims := &service.RecoveryClaims{}
	tok, err := t.parser().ParseWithClaims(token, claims, t.keyFunc)
	if err != nil || !tok.Valid {
		return nil, false
	}
	return claims, true
}
