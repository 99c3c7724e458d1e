package impl

import (
	"context"
	"time"

	"github.com/google/uuid"

	"blogger-auth/internal/domain"
	"blogger-auth/internal/dto"
	"blogger-auth/internal/events"
	"blogger-auth/internal/observability/metrics"
	"blogger-auth/internal/service"
	"blogger-auth/internal/store"
)

var _ service.DeviceService = (*DeviceServiceImpl)(nil)

type DeviceServiceImpl struct {
	Store  dataStore
	Tokens service.TokenService

	now func() time.Time
}

func NewDeviceServiceImpl(st *store.Store, tokenService service.TokenService) *DeviceServiceImpl {
	return &DeviceServiceImpl{
		Store:  gormStoreAdapter{store: st},
		Tokens: tokenService,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func (d *DeviceServiceImpl) nowTime() time.Time {
	if d.now != nil {
		return d.now()
	}
	return time.Now().UTC()
}

// caller resolves the refresh token to the session it is bound to. Every
// device-management operation authenticates this way; a token that no longer
// matches its session row gets nothing.
func (d *DeviceServiceImpl) caller(ctx context.Context, refreshToken string) (*domain.Session, error) {
	claims, ok := d.Tokens.VerifyRefresh(refreshToken)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	deviceID, err := uuid.Parse(claims.DeviceID)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	sess, err := d.Store.Sessions().GetByDeviceID(ctx, deviceID)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !sess.TokenExpirationDate.Equal(claims.ExpiresAt.Time) {
		return nil, domain.ErrUnauthorized
	}
	return sess, nil
}

func (d *DeviceServiceImpl) List(ctx context.Context, refreshToken string) ([]dto.DeviceView, error) {
	sess, err := d.caller(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	sessions, err := d.Store.Sessions().ListActiveByUser(ctx, sess.UserID, d.nowTime())
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	views := make([]dto.DeviceView, 0, len(sessions))
	for _, s := range sessions {
		views = append(views, dto.DeviceView{
			IP:             s.IP,
			Title:          s.Title,
			LastActiveDate: s.LastActiveDate,
			DeviceID:       s.DeviceID.String(),
		})
	}
	return views, nil
}

// RevokeOthers deletes every session of the caller's user except the one the
// presented refresh token is bound to.
func (d *DeviceServiceImpl) RevokeOthers(ctx context.Context, refreshToken string) error {
	sess, err := d.caller(ctx, refreshToken)
	if err != nil {
		return err
	}

	revoked, err := d.Store.Sessions().DeleteAllExcept(ctx, sess.UserID, sess.DeviceID)
	if err != nil {
		return domain.ErrUnauthorized
	}
	metrics.SessionsRevokedTotal.WithLabelValues("others").Add(float64(revoked))

	userID := sess.UserID
	appendAudit(ctx, d.Store.Audit(), &userID, "sessions_revoked_bulk", events.SessionsRevokedBulk{
		KeptDeviceID: sess.DeviceID.String(),
		UserID:       sess.UserID.String(),
		Revoked:      revoked,
		At:           d.nowTime(),
	}, sess.IP, sess.Title)

	return nil
}

// RevokeOne deletes the session for the given device id. Unknown device is
// NotFound; a device owned by another user is Forbidden.
func (d *DeviceServiceImpl) RevokeOne(ctx context.Context, refreshToken, deviceID string) error {
	sess, err := d.caller(ctx, refreshToken)
	if err != nil {
		return err
	}

	targetID, err := uuid.Parse(deviceID)
	if err != nil {
		return domain.ErrSessionNotFound
	}
	target, err := d.Store.Sessions().GetByDeviceID(ctx, targetID)
	if err != nil {
		if notFound(err) {
			return domain.ErrSessionNotFound
		}
		return err
	}
	if target.UserID != sess.UserID {
		return domain.ErrForbidden
	}

	if err := d.Store.Sessions().DeleteByDeviceID(ctx, target.DeviceID); err != nil {
		if notFound(err) {
			return domain.ErrSessionNotFound
		}
		return err
	}
	metrics.SessionsRevokedTotal.WithLabelValues("single").Inc()

	userID := sess.UserID
	appendAudit(ctx, d.Store.Audit(), &userID, "session_revoked", events.SessionRevoked{
		DeviceID: target.DeviceID.String(),
		UserID:   target.UserID.String(),
		At:       d.nowTime(),
	}, sess.IP, sess.Title)

	return nil
}
