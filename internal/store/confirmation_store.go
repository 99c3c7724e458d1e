package store

import (
	"context"

	"gorm.io/gorm"

	"blogger-auth/internal/domain"
)

type ConfirmationStore struct{ db *gorm.DB }

func (s *Store) Confirmations() *ConfirmationStore { return &ConfirmationStore{s.DB} }

func (cs *ConfirmationStore) Create(ctx context.Context, c *domain.EmailConfirmation) error {
	return cs.db.WithContext(ctx).Create(c).Error
}

func (cs *ConfirmationStore) GetByCode(ctx context.Context, code string) (*domain.EmailConfirmation, error) {
	var out domain.EmailConfirmation
	if err := cs.db.WithContext(ctx).First(&out, "code = ?", code).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (cs *ConfirmationStore) MarkConsumed(ctx context.Context, code string) error {
	tx := cs.db.WithContext(ctx).Model(&domain.EmailConfirmation{}).
		Where("code = ? AND consumed = ?", code, false).
		Update("consumed", true)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
