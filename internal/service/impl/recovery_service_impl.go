package impl

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"blogger-auth/internal/domain"
	"blogger-auth/internal/events"
	"blogger-auth/internal/observability/metrics"
	"blogger-auth/internal/service"
	"blogger-auth/internal/store"
)

var _ service.RecoveryService = (*RecoveryServiceImpl)(nil)

type RecoveryServiceImpl struct {
	Store           dataStore
	Tokens          service.TokenService
	PasswordService service.PasswordService
	Email           service.EmailService

	now func() time.Time
}

func NewRecoveryServiceImpl(st *store.Store, tokens service.TokenService, passwords service.PasswordService, email service.EmailService) *RecoveryServiceImpl {
	return &RecoveryServiceImpl{
		Store:           gormStoreAdapter{store: st},
		Tokens:          tokens,
		PasswordService: passwords,
		Email:           email,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func (r *RecoveryServiceImpl) nowTime() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now().UTC()
}

// Request issues a recovery code and mails it. An unknown email address gets
// the exact same treatment — a token with a null userId and a real email —
// so the response never reveals whether the account exists.
func (r *RecoveryServiceImpl) Request(ctx context.Context, email string) error {
	result := "success"
	defer func() {
		metrics.RecoveryRequestsTotal.WithLabelValues("request", result).Inc()
	}()

	var userID *domain.UserID
	user, err := r.Store.Users().GetByEmail(ctx, email)
	switch {
	case err == nil:
		userID = &user.ID
	case notFound(err):
		// keep going with a null-subject token
	default:
		result = "failure"
		return err
	}

	code, err := r.Tokens.IssueRecovery(userID, r.nowTime())
	if err != nil {
		result = "failure"
		return err
	}

	if userID != nil {
		if err := r.Store.Recovery().Upsert(ctx, *userID, code); err != nil {
			result = "failure"
			return err
		}
	}

	if err := r.Email.SendRecovery(ctx, email, code); err != nil {
		result = "failure"
		return err
	}

	slog.Info("recovery email sent", "known_account", userID != nil)
	return nil
}

// Redeem consumes a recovery code and sets the new password. Every failure
// mode — missing claims, expiry, unknown user, mismatched or already-used
// code — collapses into the same ErrBadRecoveryCode so responses carry no
// information about which check failed.
func (r *RecoveryServiceImpl) Redeem(ctx context.Context, newPassword, recoveryCode string) error {
	result := "success"
	defer func() {
		metrics.RecoveryRequestsTotal.WithLabelValues("redeem", result).Inc()
	}()

	if newPassword == "" {
		result = "failure"
		return ErrEmptyPassword
	}

	claims, ok := r.Tokens.VerifyRecovery(recoveryCode)
	if !ok || claims.UserID == nil || claims.ExpiresAt == nil {
		result = "failure"
		return domain.ErrBadRecoveryCode
	}
	userID, err := uuid.Parse(*claims.UserID)
	if err != nil {
		result = "failure"
		return domain.ErrBadRecoveryCode
	}

	err = r.Store.WithTx(ctx, func(tx storeTx) error {
		rec, err := tx.Recovery().GetByUserID(ctx, userID)
		if err != nil {
			return domain.ErrBadRecoveryCode
		}
		if rec.Used || rec.Code != recoveryCode {
			return domain.ErrBadRecoveryCode
		}

		hash, salt, paramsJSON, algo, ver, err := r.PasswordService.Hash(newPassword)
		if err != nil {
			return err
		}
		if err := tx.Credentials().UpsertPassword(ctx, &domain.PasswordCredential{
			UserID:      userID,
			Algo:        algo,
			Hash:        hash,
			Salt:        salt,
			ParamsJSON:  paramsJSON,
			PasswordVer: ver,
		}); err != nil {
			return err
		}

		// One-way transition: the slot can never be redeemed again.
		if err := tx.Recovery().MarkUsed(ctx, userID); err != nil {
			return domain.ErrBadRecoveryCode
		}
		return nil
	})
	if err != nil {
		result = "failure"
		return err
	}

	appendAudit(ctx, r.Store.Audit(), &userID, "password_changed", events.PasswordChanged{
		UserID: userID.String(),
		At:     r.nowTime(),
	}, "", "")

	return nil
}
