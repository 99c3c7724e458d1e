package impl

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"blogger-auth/internal/domain"
)

type stubEmailService struct {
	confirmations []struct{ to, code string }
	recoveries    []struct{ to, code string }
	sendErr       error
}

func (s *stubEmailService) SendConfirmation(ctx context.Context, to, code string) error {
	s.confirmations = append(s.confirmations, struct{ to, code string }{to, code})
	return s.sendErr
}

func (s *stubEmailService) SendRecovery(ctx context.Context, to, code string) error {
	s.recoveries = append(s.recoveries, struct{ to, code string }{to, code})
	return s.sendErr
}

type recoveryFixture struct {
	store *memoryStore
	svc   *RecoveryServiceImpl
	email *stubEmailService
	user  *domain.User
	clock *time.Time
}

func newRecoveryFixture(t *testing.T) *recoveryFixture {
	t.Helper()
	st := newMemoryStore()
	now := time.Now().UTC().Truncate(time.Second)
	clock := &now
	email := &stubEmailService{}

	user := &domain.User{ID: uuid.New(), Login: "alice", Email: "alice@example.com", EmailConfirmed: true, CreatedAt: now, UpdatedAt: now}
	if err := st.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	svc := &RecoveryServiceImpl{
		Store:           st,
		Tokens:          testTokenService(),
		PasswordService: &stubPasswordService{},
		Email:           email,
		now:             func() time.Time { return *clock },
	}
	return &recoveryFixture{store: st, svc: svc, email: email, user: user, clock: clock}
}

func TestRecoveryRequestKnownEmail(t *testing.T) {
	f := newRecoveryFixture(t)
	ctx := context.Background()

	if err := f.svc.Request(ctx, "alice@example.com"); err != nil {
		t.Fatalf("request: %v", err)
	}
	if len(f.email.recoveries) != 1 || f.email.recoveries[0].to != "alice@example.com" {
		t.Fatalf("expected one recovery mail to alice, got %+v", f.email.recoveries)
	}

	// The mailed code is persisted verbatim for later exact-match redemption.
	rec, err := f.store.Recovery().GetByUserID(ctx, f.user.ID)
	if err != nil {
		t.Fatalf("recovery slot missing: %v", err)
	}
	if rec.Code != f.email.recoveries[0].code {
		t.Fatalf("stored code differs from mailed code")
	}
	if rec.Used {
		t.Fatalf("fresh slot must not be marked used")
	}
}

func TestRecoveryRequestUnknownEmailStillSendsMail(t *testing.T) {
	f := newRecoveryFixture(t)
	ctx := context.Background()

	if err := f.svc.Request(ctx, "stranger@example.com"); err != nil {
		t.Fatalf("request for unknown email must succeed, got %v", err)
	}
	if len(f.email.recoveries) != 1 || f.email.recoveries[0].to != "stranger@example.com" {
		t.Fatalf("expected one recovery mail to the stranger, got %+v", f.email.recoveries)
	}

	// The mailed token carries a null subject and can never be redeemed.
	code := f.email.recoveries[0].code
	err := f.svc.Redeem(ctx, "brand-new-password", code)
	if !errors.Is(err, domain.ErrBadRecoveryCode) {
		t.Fatalf("expected ErrBadRecoveryCode, got %v", err)
	}
}

func TestRecoveryRequestOverwritesPreviousSlot(t *testing.T) {
	f := newRecoveryFixture(t)
	ctx := context.Background()

	if err := f.svc.Request(ctx, "alice@example.com"); err != nil {
		t.Fatalf("first request: %v", err)
	}
	first := f.email.recoveries[0].code

	// time moves so the second token differs (exp changes)
	*f.clock = f.clock.Add(2 * time.Second)
	if err := f.svc.Request(ctx, "alice@example.com"); err != nil {
		t.Fatalf("second request: %v", err)
	}
	second := f.email.recoveries[1].code
	if first == second {
		t.Fatalf("expected a fresh code on the second request")
	}

	// Only the latest code redeems; the superseded one is dead.
	if err := f.svc.Redeem(ctx, "brand-new-password", first); !errors.Is(err, domain.ErrBadRecoveryCode) {
		t.Fatalf("expected superseded code to fail, got %v", err)
	}
	if err := f.svc.Redeem(ctx, "brand-new-password", second); err != nil {
		t.Fatalf("latest code should redeem: %v", err)
	}
}

func TestRecoveryRedeemSetsPasswordOnce(t *testing.T) {
	f := newRecoveryFixture(t)
	ctx := context.Background()

	if err := f.svc.Request(ctx, "alice@example.com"); err != nil {
		t.Fatalf("request: %v", err)
	}
	code := f.email.recoveries[0].code

	if err := f.svc.Redeem(ctx, "brand-new-password", code); err != nil {
		t.Fatalf("redeem: %v", err)
	}

	cred, ok := f.store.credentialByUserID(f.user.ID)
	if !ok {
		t.Fatalf("credential was not written")
	}
	if string(cred.Hash) != "hash" {
		t.Fatalf("unexpected credential: %+v", cred)
	}

	// Second redemption of the same code fails: the slot is single-use.
	if err := f.svc.Redeem(ctx, "another-password", code); !errors.Is(err, domain.ErrBadRecoveryCode) {
		t.Fatalf("expected ErrBadRecoveryCode on reuse, got %v", err)
	}
}

func TestRecoveryRedeemFailuresAreIndistinguishable(t *testing.T) {
	f := newRecoveryFixture(t)
	ctx := context.Background()

	if err := f.svc.Request(ctx, "alice@example.com"); err != nil {
		t.Fatalf("request: %v", err)
	}

	// A well-formed token for the right user that was never stored (e.g.
	// minted before the latest request) must fail like any garbage string.
	foreign, err := f.svc.Tokens.IssueRecovery(&f.user.ID, f.clock.Add(time.Second))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	for name, code := range map[string]string{
		"garbage":       "garbage",
		"empty":         "",
		"unstored code": foreign,
	} {
		if err := f.svc.Redeem(ctx, "brand-new-password", code); !errors.Is(err, domain.ErrBadRecoveryCode) {
			t.Fatalf("%s: expected ErrBadRecoveryCode, got %v", name, err)
		}
	}
}

func TestRecoveryRedeemRejectsEmptyPassword(t *testing.T) {
	f := newRecoveryFixture(t)
	ctx := context.Background()

	if err := f.svc.Request(ctx, "alice@example.com"); err != nil {
		t.Fatalf("request: %v", err)
	}
	code := f.email.recoveries[0].code

	if err := f.svc.Redeem(ctx, "", code); !errors.Is(err, ErrEmptyPassword) {
		t.Fatalf("expected ErrEmptyPassword, got %v", err)
	}

	// The failed attempt must not burn the slot.
	if err := f.svc.Redeem(ctx, "brand-new-password", code); err != nil {
		t.Fatalf("slot should still be redeemable: %v", err)
	}
}
