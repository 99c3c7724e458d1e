package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"blogger-auth/internal/domain"
)

type VisitStore struct{ db *gorm.DB }

func (s *Store) Visits() *VisitStore { return &VisitStore{s.DB} }

func (vs *VisitStore) Create(ctx context.Context, v *domain.Visit) error {
	return vs.db.WithContext(ctx).Create(v).Error
}

// CountSince counts visits for the exact (ip, url) pair recorded at or after
// the cutoff.
func (vs *VisitStore) CountSince(ctx context.Context, ip, url string, since time.Time) (int64, error) {
	var total int64
	err := vs.db.WithContext(ctx).Model(&domain.Visit{}).
		Where("ip = ? AND url = ? AND created_at >= ?", ip, url, since).
		Count(&total).Error
	return total, err
}
