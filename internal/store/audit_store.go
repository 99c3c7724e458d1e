package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"blogger-auth/internal/domain"
)

type AuditStore struct{ db *gorm.DB }

func (s *Store) Audit() *AuditStore { return &AuditStore{s.DB} }

func (as *AuditStore) Append(ctx context.Context, entry *domain.AuditLog) error {
	if entry.ID == [16]byte{} {
		entry.ID = [16]byte(uuid.New())
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	return as.db.WithContext(ctx).Create(entry).Error
}
