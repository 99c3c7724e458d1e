package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"blogger-auth/internal/domain"
)

type RecoveryStore struct{ db *gorm.DB }

func (s *Store) Recovery() *RecoveryStore { return &RecoveryStore{s.DB} }

// Upsert replaces the user's recovery slot with a fresh, unused code. A new
// recovery request always invalidates whatever was there before.
func (rs *RecoveryStore) Upsert(ctx context.Context, userID uuid.UUID, code string) error {
	now := time.Now().UTC()
	rec := &domain.RecoveryCode{
		UserID:    userID,
		Code:      code,
		Used:      false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return rs.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"code", "used", "updated_at"}),
	}).Create(rec).Error
}

func (rs *RecoveryStore) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.RecoveryCode, error) {
	var out domain.RecoveryCode
	if err := rs.db.WithContext(ctx).First(&out, "user_id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &out, nil
}

// MarkUsed is the one-way transition: only an unused slot can be consumed,
// so a concurrent double redemption loses here.
func (rs *RecoveryStore) MarkUsed(ctx context.Context, userID uuid.UUID) error {
	tx := rs.db.WithContext(ctx).Model(&domain.RecoveryCode{}).
		Where("user_id = ? AND used = ?", userID, false).
		Updates(map[string]interface{}{"used": true, "updated_at": time.Now().UTC()})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
