package impl

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"blogger-auth/internal/domain"
	"blogger-auth/internal/store"
)

// Narrow store interfaces so the orchestrators can be exercised against an
// in-memory store in tests. The gorm-backed store satisfies them via the
// adapter below.

type storeTx interface {
	Sessions() sessionStore
	Users() userStore
	Credentials() credentialStore
	Recovery() recoveryStore
	Confirmations() confirmationStore
	Visits() visitStore
	Audit() auditStore
}

type dataStore interface {
	storeTx
	WithTx(ctx context.Context, fn func(tx storeTx) error) error
}

type sessionStore interface {
	Create(ctx context.Context, s *domain.Session) error
	GetByDeviceID(ctx context.Context, deviceID uuid.UUID) (*domain.Session, error)
	Rotate(ctx context.Context, id uuid.UUID, oldExp, newExp, lastActive time.Time, ip, title string) (bool, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
	DeleteByDeviceID(ctx context.Context, deviceID uuid.UUID) error
	ListActiveByUser(ctx context.Context, userID uuid.UUID, now time.Time) ([]*domain.Session, error)
	DeleteAllExcept(ctx context.Context, userID, deviceID uuid.UUID) (int64, error)
}

type userStore interface {
	Create(ctx context.Context, usr *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByLoginOrEmail(ctx context.Context, loginOrEmail string) (*domain.User, error)
	SetEmailConfirmed(ctx context.Context, userID uuid.UUID) error
}

type credentialStore interface {
	UpsertPassword(ctx context.Context, c *domain.PasswordCredential) error
	GetPasswordByUserID(ctx context.Context, userID uuid.UUID) (*domain.PasswordCredential, error)
}

type recoveryStore interface {
	Upsert(ctx context.Context, userID uuid.UUID, code string) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.RecoveryCode, error)
	MarkUsed(ctx context.Context, userID uuid.UUID) error
}

type confirmationStore interface {
	Create(ctx context.Context, c *domain.EmailConfirmation) error
	GetByCode(ctx context.Context, code string) (*domain.EmailConfirmation, error)
	MarkConsumed(ctx context.Context, code string) error
}

type visitStore interface {
	Create(ctx context.Context, v *domain.Visit) error
	CountSince(ctx context.Context, ip, url string, since time.Time) (int64, error)
}

type auditStore interface {
	Append(ctx context.Context, entry *domain.AuditLog) error
}

type gormStoreAdapter struct {
	store *store.Store
}

func (g gormStoreAdapter) Sessions() sessionStore           { return g.store.Sessions() }
func (g gormStoreAdapter) Users() userStore                 { return g.store.Users() }
func (g gormStoreAdapter) Credentials() credentialStore     { return g.store.Credentials() }
func (g gormStoreAdapter) Recovery() recoveryStore          { return g.store.Recovery() }
func (g gormStoreAdapter) Confirmations() confirmationStore { return g.store.Confirmations() }
func (g gormStoreAdapter) Visits() visitStore               { return g.store.Visits() }
func (g gormStoreAdapter) Audit() auditStore                { return g.store.Audit() }

func (g gormStoreAdapter) WithTx(ctx context.Context, fn func(tx storeTx) error) error {
	if g.store == nil {
		return errors.New("nil store")
	}
	return g.store.WithTx(ctx, func(tx *store.Store) error {
		return fn(gormStoreAdapter{store: tx})
	})
}

func notFound(err error) bool { return errors.Is(err, store.ErrRecordNotFound) }
