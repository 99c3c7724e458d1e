package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"blogger-auth/internal/domain"
)

type SessionStore struct{ db *gorm.DB }

func (s *Store) Sessions() *SessionStore { return &SessionStore{s.DB} }

func (ss *SessionStore) Create(ctx context.Context, s *domain.Session) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return ss.db.WithContext(ctx).Create(s).Error
}

func (ss *SessionStore) GetByDeviceID(ctx context.Context, deviceID uuid.UUID) (*domain.Session, error) {
	var s domain.Session
	if err := ss.db.WithContext(ctx).First(&s, "device_id = ?", deviceID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &s, nil
}

// Rotate is a compare-and-swap keyed on the expiration the caller validated
// against: a concurrent refresh that already rotated the row leaves zero rows
// matching and the losing caller must treat the token as replayed.
func (ss *SessionStore) Rotate(ctx context.Context, id uuid.UUID, oldExp, newExp, lastActive time.Time, ip, title string) (bool, error) {
	tx := ss.db.WithContext(ctx).
		Model(&domain.Session{}).
		Where("id = ? AND token_expiration_date = ?", id, oldExp).
		Updates(map[string]interface{}{
			"token_expiration_date": newExp,
			"token_issue_date":      lastActive,
			"last_active_date":      lastActive,
			"ip":                    ip,
			"title":                 title,
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (ss *SessionStore) DeleteByID(ctx context.Context, id uuid.UUID) error {
	tx := ss.db.WithContext(ctx).Delete(&domain.Session{}, "id = ?", id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (ss *SessionStore) DeleteByDeviceID(ctx context.Context, deviceID uuid.UUID) error {
	tx := ss.db.WithContext(ctx).Delete(&domain.Session{}, "device_id = ?", deviceID)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// ListActiveByUser returns sessions whose refresh token has not yet expired.
// No ordering is guaranteed.
func (ss *SessionStore) ListActiveByUser(ctx context.Context, userID uuid.UUID, now time.Time) ([]*domain.Session, error) {
	var sessions []*domain.Session
	if err := ss.db.WithContext(ctx).
		Where("user_id = ? AND token_expiration_date > ?", userID, now).
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// DeleteAllExcept removes every session of the user but the one bound to
// deviceID. Unlike the wipe-and-reinsert it replaces, concurrent calls from
// two devices of the same user converge to a consistent state.
func (ss *SessionStore) DeleteAllExcept(ctx context.Context, userID, deviceID uuid.UUID) (int64, error) {
	tx := ss.db.WithContext(ctx).
		Where("user_id = ? AND device_id <> ?", userID, deviceID).
		Delete(&domain.Session{})
	return tx.RowsAffected, tx.Error
}
