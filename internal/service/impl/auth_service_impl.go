package impl

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"blogger-auth/internal/dto"
	"blogger-auth/internal/events"
	"blogger-auth/internal/netutil"
	"blogger-auth/internal/observability/metrics"
	"blogger-auth/internal/observability/middleware"
	"blogger-auth/internal/service"
	"blogger-auth/internal/store"

	"blogger-auth/internal/domain"
)

var _ service.AuthService = (*AuthServiceImpl)(nil)

type AuthServiceImpl struct {
	Store           dataStore
	PasswordService service.PasswordService
	Tokens          service.TokenService

	now func() time.Time
}

func NewAuthServiceImpl(st *store.Store, passwordService service.PasswordService, tokenService service.TokenService) *AuthServiceImpl {
	return &AuthServiceImpl{
		Store:           gormStoreAdapter{store: st},
		PasswordService: passwordService,
		Tokens:          tokenService,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func (a *AuthServiceImpl) nowTime() time.Time {
	if a.now != nil {
		return a.now()
	}
	return time.Now().UTC()
}

// Login verifies credentials, binds a fresh deviceId to a new session row
// and returns an access+refresh pair. The session's tokenExpirationDate
// mirrors the refresh token's exp claim; that mirror is the sole replay
// detector for later refreshes.
func (a *AuthServiceImpl) Login(ctx context.Context, r dto.LoginRequest, ip, title string) (*dto.TokenPair, error) {
	result := "success"
	defer func() {
		metrics.AuthLoginsTotal.WithLabelValues(result).Inc()
	}()

	if r.LoginOrEmail == "" || r.Password == "" {
		result = "failure"
		return nil, domain.ErrInvalidCredentials
	}
	ip = normalizeIP(ip)
	title = netutil.TruncateTitle(title)

	var pair *dto.TokenPair
	var userID uuid.UUID
	var deviceID uuid.UUID

	err := a.Store.WithTx(ctx, func(tx storeTx) error {
		user, err := tx.Users().GetByLoginOrEmail(ctx, r.LoginOrEmail)
		if err != nil {
			return domain.ErrInvalidCredentials // don't leak which field failed
		}

		cred, err := tx.Credentials().GetPasswordByUserID(ctx, user.ID)
		if err != nil {
			return domain.ErrInvalidCredentials
		}

		rehashNeeded, ok := a.PasswordService.Verify(r.Password, cred)
		if !ok {
			return domain.ErrInvalidCredentials
		}

		// Transparent rehash on policy upgrade.
		if rehashNeeded {
			newHash, newSalt, newParamsJSON, algo, ver, err := a.PasswordService.Hash(r.Password)
			if err != nil {
				return err
			}
			cred.Algo = algo
			cred.Hash = newHash
			cred.Salt = newSalt
			cred.ParamsJSON = newParamsJSON
			cred.PasswordVer = ver
			if err := tx.Credentials().UpsertPassword(ctx, cred); err != nil {
				return err
			}
		}

		now := a.nowTime()
		deviceID = uuid.New()
		userID = user.ID

		access, err := a.Tokens.IssueAccess(user.ID, now)
		if err != nil {
			return err
		}
		refresh, refreshExp, err := a.Tokens.IssueRefresh(user.ID, deviceID, now)
		if err != nil {
			return err
		}

		sess := &domain.Session{
			ID:                  uuid.New(),
			UserID:              user.ID,
			DeviceID:            deviceID,
			IP:                  ip,
			Title:               title,
			LastActiveDate:      now,
			TokenIssueDate:      now,
			TokenExpirationDate: refreshExp,
			CreatedAt:           now,
		}
		if err := tx.Sessions().Create(ctx, sess); err != nil {
			return err
		}

		pair = &dto.TokenPair{AccessToken: access, RefreshToken: refresh, RefreshExpiresAt: refreshExp}
		return nil
	})
	if err != nil {
		result = "failure"
		return nil, err
	}

	appendAudit(ctx, a.Store.Audit(), &userID, "login", events.SessionStarted{
		DeviceID: deviceID.String(),
		UserID:   userID.String(),
		At:       a.nowTime(),
	}, ip, title)

	reqID := middleware.RequestIDFromContext(ctx)
	slog.Info("login succeeded", "user_id", userID, "device_id", deviceID, "request_id", reqID)

	return pair, nil
}

// Refresh rotates the pair bound to the token's deviceId. A stored
// expiration that differs from the token's exp means the token was already
// rotated out (or forged); both cases are plain unauthenticated.
func (a *AuthServiceImpl) Refresh(ctx context.Context, refreshToken, ip, title string) (*dto.TokenPair, error) {
	result := "success"
	defer func() {
		metrics.TokensIssuedTotal.WithLabelValues("refresh", result).Inc()
	}()
	ip = normalizeIP(ip)
	title = netutil.TruncateTitle(title)

	claims, ok := a.Tokens.VerifyRefresh(refreshToken)
	if !ok {
		result = "failure"
		return nil, domain.ErrUnauthorized
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		result = "failure"
		return nil, domain.ErrUnauthorized
	}
	deviceID, err := uuid.Parse(claims.DeviceID)
	if err != nil {
		result = "failure"
		return nil, domain.ErrUnauthorized
	}

	sess, err := a.Store.Sessions().GetByDeviceID(ctx, deviceID)
	if err != nil {
		result = "failure"
		return nil, domain.ErrUnauthorized
	}
	if !sess.TokenExpirationDate.Equal(claims.ExpiresAt.Time) {
		result = "failure"
		return nil, domain.ErrUnauthorized
	}

	now := a.nowTime()
	access, err := a.Tokens.IssueAccess(userID, now)
	if err != nil {
		result = "failure"
		return nil, err
	}
	refresh, refreshExp, err := a.Tokens.IssueRefresh(userID, deviceID, now)
	if err != nil {
		result = "failure"
		return nil, err
	}

	// CAS on the expiration we just validated: a concurrent refresh that won
	// the race already moved it and this token counts as replayed.
	rotated, err := a.Store.Sessions().Rotate(ctx, sess.ID, sess.TokenExpirationDate, refreshExp, now, ip, title)
	if err != nil {
		result = "failure"
		return nil, err
	}
	if !rotated {
		result = "failure"
		return nil, domain.ErrUnauthorized
	}

	appendAudit(ctx, a.Store.Audit(), &userID, "token_refreshed", events.TokenRefreshed{
		DeviceID: deviceID.String(),
		UserID:   userID.String(),
		At:       now,
	}, ip, title)

	reqID := middleware.RequestIDFromContext(ctx)
	slog.Info("refreshed tokens", "user_id", userID, "device_id", deviceID, "request_id", reqID)

	return &dto.TokenPair{AccessToken: access, RefreshToken: refresh, RefreshExpiresAt: refreshExp}, nil
}

// Logout validates the refresh token exactly like Refresh, then deletes the
// session row. There is no blacklist: with the row gone, no future refresh
// or logout can match, so the token is dead.
func (a *AuthServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	claims, ok := a.Tokens.VerifyRefresh(refreshToken)
	if !ok {
		return domain.ErrUnauthorized
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return domain.ErrUnauthorized
	}
	deviceID, err := uuid.Parse(claims.DeviceID)
	if err != nil {
		return domain.ErrUnauthorized
	}

	sess, err := a.Store.Sessions().GetByDeviceID(ctx, deviceID)
	if err != nil {
		return domain.ErrUnauthorized
	}
	if !sess.TokenExpirationDate.Equal(claims.ExpiresAt.Time) {
		return domain.ErrUnauthorized
	}

	if err := a.Store.Sessions().DeleteByID(ctx, sess.ID); err != nil {
		return domain.ErrUnauthorized
	}

	appendAudit(ctx, a.Store.Audit(), &userID, "logout", events.SessionRevoked{
		DeviceID: deviceID.String(),
		UserID:   userID.String(),
		At:       a.nowTime(),
	}, sess.IP, sess.Title)

	return nil
}

// Me resolves the bearer token to the current user's profile.
func (a *AuthServiceImpl) Me(ctx context.Context, accessToken string) (*dto.MeResponse, error) {
	claims, ok := a.Tokens.VerifyAccess(accessToken)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	user, err := a.Store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	return &dto.MeResponse{
		Email:  user.Email,
		Login:  user.Login,
		UserID: user.ID.String(),
	}, nil
}

func normalizeIP(ip string) string {
	if normalized, ok := netutil.NormalizeIP(ip); ok {
		return normalized
	}
	return ip
}
