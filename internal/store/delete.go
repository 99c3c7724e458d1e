package store

import (
	"context"

	"blogger-auth/internal/domain"
)

// DeleteAllData wipes every table in one transaction. Used only by the
// testing endpoint; never reachable unless explicitly enabled in config.
func (s *Store) DeleteAllData(ctx context.Context) error {
	return s.WithTx(ctx, func(tx *Store) error {
		db := tx.DB.WithContext(ctx)

		for _, model := range []interface{}{
			&domain.Session{},
			&domain.Visit{},
			&domain.RecoveryCode{},
			&domain.EmailConfirmation{},
			&domain.PasswordCredential{},
			&domain.AuditLog{},
			&domain.User{},
		} {
			if err := db.Where("1 = 1").Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
