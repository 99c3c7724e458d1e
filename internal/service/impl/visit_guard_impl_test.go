package impl

import (
	"context"
	"errors"
	"testing"
	"time"

	"blogger-auth/internal/domain"
)

func newVisitGuard() (*VisitGuardImpl, *time.Time) {
	now := time.Now().UTC().Truncate(time.Second)
	clock := &now
	g := &VisitGuardImpl{
		Store: newMemoryStore(),
		now:   func() time.Time { return *clock },
	}
	return g, clock
}

func TestVisitGuardAllowsUpToFivePerWindow(t *testing.T) {
	g, _ := newVisitGuard()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := g.Admit(ctx, "10.0.0.1", "/auth/login"); err != nil {
			t.Fatalf("request %d should be admitted: %v", i+1, err)
		}
	}
	if err := g.Admit(ctx, "10.0.0.1", "/auth/login"); !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("6th request should be denied, got %v", err)
	}
}

func TestVisitGuardWindowSlides(t *testing.T) {
	g, clock := newVisitGuard()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := g.Admit(ctx, "10.0.0.1", "/auth/login"); err != nil {
			t.Fatalf("request %d: %v", i+1, err)
		}
	}
	if err := g.Admit(ctx, "10.0.0.1", "/auth/login"); !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected denial inside the window, got %v", err)
	}

	// Once the earlier visits fall out of the 10s window, requests flow again.
	*clock = clock.Add(visitWindow + time.Second)
	if err := g.Admit(ctx, "10.0.0.1", "/auth/login"); err != nil {
		t.Fatalf("request after window should be admitted: %v", err)
	}
}

func TestVisitGuardBudgetsAreIndependent(t *testing.T) {
	g, _ := newVisitGuard()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := g.Admit(ctx, "10.0.0.1", "/auth/login"); err != nil {
			t.Fatalf("request %d: %v", i+1, err)
		}
	}
	if err := g.Admit(ctx, "10.0.0.1", "/auth/login"); !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected same pair to be denied, got %v", err)
	}

	// Another endpoint and another ip each have an untouched budget.
	if err := g.Admit(ctx, "10.0.0.1", "/auth/registration"); err != nil {
		t.Fatalf("different endpoint should be admitted: %v", err)
	}
	if err := g.Admit(ctx, "10.0.0.2", "/auth/login"); err != nil {
		t.Fatalf("different ip should be admitted: %v", err)
	}
}

func TestVisitGuardDeniedRequestsStillCount(t *testing.T) {
	g, _ := newVisitGuard()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := g.Admit(ctx, "10.0.0.1", "/auth/login"); err != nil {
			t.Fatalf("request %d: %v", i+1, err)
		}
	}
	// Denied requests do not append visits, so the count stays at 5 and
	// every further attempt inside the window is denied the same way.
	for i := 0; i < 3; i++ {
		if err := g.Admit(ctx, "10.0.0.1", "/auth/login"); !errors.Is(err, domain.ErrRateLimited) {
			t.Fatalf("attempt %d should be denied, got %v", i+1, err)
		}
	}
}

func TestVisitGuardFailsClosedOnStoreError(t *testing.T) {
	g := &VisitGuardImpl{Store: failingVisitStore{}}
	err := g.Admit(context.Background(), "10.0.0.1", "/auth/login")
	if err == nil {
		t.Fatalf("expected fail-closed denial")
	}
	// The denial is a plain error, not ErrRateLimited: 429 means "budget
	// exceeded", a broken store does not.
	if errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("store error must not masquerade as a rate limit, got %v", err)
	}
}

// failingVisitStore errors on every visit operation; the rest of the store
// surface is unused by the guard.
type failingVisitStore struct{}

func (failingVisitStore) Sessions() sessionStore           { return nil }
func (failingVisitStore) Users() userStore                 { return nil }
func (failingVisitStore) Credentials() credentialStore     { return nil }
func (failingVisitStore) Recovery() recoveryStore          { return nil }
func (failingVisitStore) Confirmations() confirmationStore { return nil }
func (failingVisitStore) Audit() auditStore                { return nil }
func (failingVisitStore) Visits() visitStore               { return erroringVisits{} }
func (failingVisitStore) WithTx(ctx context.Context, fn func(tx storeTx) error) error {
	return errors.New("store down")
}

type erroringVisits struct{}

func (erroringVisits) Create(ctx context.Context, v *domain.Visit) error {
	return errors.New("store down")
}

func (erroringVisits) CountSince(ctx context.Context, ip, url string, since time.Time) (int64, error) {
	return 0, errors.New("store down")
}
