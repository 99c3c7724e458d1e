package impl

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"blogger-auth/internal/domain"
	"blogger-auth/internal/dto"
	"blogger-auth/internal/events"
	"blogger-auth/internal/service"
	"blogger-auth/internal/store"
)

const confirmationTTL = time.Hour

var _ service.RegistrationService = (*RegistrationServiceImpl)(nil)

type RegistrationServiceImpl struct {
	Store           dataStore
	PasswordService service.PasswordService
	Email           service.EmailService

	now func() time.Time
}

func NewRegistrationServiceImpl(st *store.Store, passwords service.PasswordService, email service.EmailService) *RegistrationServiceImpl {
	return &RegistrationServiceImpl{
		Store:           gormStoreAdapter{store: st},
		PasswordService: passwords,
		Email:           email,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func (s *RegistrationServiceImpl) nowTime() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now().UTC()
}

func (s *RegistrationServiceImpl) Register(ctx context.Context, r dto.RegistrationRequest) error {
	if r.Login == "" || r.Email == "" {
		return ErrEmptyCredential
	}
	if len(r.Password) < 8 {
		return ErrPasswordLength
	}

	now := s.nowTime()
	code := uuid.NewString()
	var userID uuid.UUID

	err := s.Store.WithTx(ctx, func(tx storeTx) error {
		u := &domain.User{
			ID:             uuid.New(),
			Login:          r.Login,
			Email:          r.Email,
			EmailConfirmed: false,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := tx.Users().Create(ctx, u); err != nil {
			return err // unique constraints on login/email bubble up
		}
		userID = u.ID

		hash, salt, paramsJSON, algo, ver, err := s.PasswordService.Hash(r.Password)
		if err != nil {
			return err
		}
		if err := tx.Credentials().UpsertPassword(ctx, &domain.PasswordCredential{
			UserID:      u.ID,
			Algo:        algo,
			Hash:        hash,
			Salt:        salt,
			ParamsJSON:  paramsJSON,
			PasswordVer: ver,
		}); err != nil {
			return err
		}

		return tx.Confirmations().Create(ctx, &domain.EmailConfirmation{
			UserID:    u.ID,
			Code:      code,
			ExpiresAt: now.Add(confirmationTTL),
			CreatedAt: now,
		})
	})
	if err != nil {
		return err
	}

	if err := s.Email.SendConfirmation(ctx, r.Email, code); err != nil {
		// The account exists; the user can request another mail later.
		slog.Warn("confirmation email not sent", "user_id", userID, "error", err)
	}

	appendAudit(ctx, s.Store.Audit(), &userID, "user_registered", events.UserRegistered{
		UserID: userID.String(),
		Email:  r.Email,
		At:     now,
	}, "", "")

	return nil
}

// Resend issues a fresh confirmation code for an account that has not
// confirmed its email yet. Unknown and already-confirmed addresses get the
// same silent success, so nothing leaks about which accounts exist.
func (s *RegistrationServiceImpl) Resend(ctx context.Context, email string) error {
	if email == "" {
		return ErrEmptyCredential
	}

	user, err := s.Store.Users().GetByEmail(ctx, email)
	if err != nil {
		if notFound(err) {
			return nil
		}
		return err
	}
	if user.EmailConfirmed {
		return nil
	}

	now := s.nowTime()
	code := uuid.NewString()
	if err := s.Store.Confirmations().Create(ctx, &domain.EmailConfirmation{
		UserID:    user.ID,
		Code:      code,
		ExpiresAt: now.Add(confirmationTTL),
		CreatedAt: now,
	}); err != nil {
		return err
	}

	return s.Email.SendConfirmation(ctx, email, code)
}

func (s *RegistrationServiceImpl) Confirm(ctx context.Context, code string) error {
	if code == "" {
		return domain.ErrBadConfirmationCode
	}

	return s.Store.WithTx(ctx, func(tx storeTx) error {
		conf, err := tx.Confirmations().GetByCode(ctx, code)
		if err != nil {
			return domain.ErrBadConfirmationCode
		}
		if conf.Consumed || s.nowTime().After(conf.ExpiresAt) {
			return domain.ErrBadConfirmationCode
		}
		if err := tx.Confirmations().MarkConsumed(ctx, code); err != nil {
			return domain.ErrBadConfirmationCode
		}
		return tx.Users().SetEmailConfirmed(ctx, conf.UserID)
	})
}
