package impl

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"blogger-auth/internal/domain"
	"blogger-auth/internal/dto"
)

// deviceFixture runs two users through login so the registry holds sessions
// for both, then exposes a DeviceServiceImpl over the same store.
type deviceFixture struct {
	store *memoryStore
	auth  *AuthServiceImpl
	svc   *DeviceServiceImpl

	alice   *domain.User
	bob     *domain.User
	clock   *time.Time
	alicePs []*dto.TokenPair // login order preserved
	bobPair *dto.TokenPair
}

func newDeviceFixture(t *testing.T, aliceLogins int) *deviceFixture {
	t.Helper()
	st := newMemoryStore()
	now := time.Now().UTC().Truncate(time.Second)
	clock := &now
	tokens := testTokenService()

	auth := &AuthServiceImpl{
		Store:           st,
		PasswordService: &stubPasswordService{},
		Tokens:          tokens,
		now:             func() time.Time { return *clock },
	}
	svc := &DeviceServiceImpl{
		Store:  st,
		Tokens: tokens,
		now:    func() time.Time { return *clock },
	}

	f := &deviceFixture{store: st, auth: auth, svc: svc, clock: clock}
	ctx := context.Background()

	seed := func(login, email string) *domain.User {
		u := &domain.User{ID: uuid.New(), Login: login, Email: email, EmailConfirmed: true, CreatedAt: now, UpdatedAt: now}
		if err := st.Users().Create(ctx, u); err != nil {
			t.Fatalf("seed user: %v", err)
		}
		cred := &domain.PasswordCredential{ID: uuid.New(), UserID: u.ID, Algo: "argon2id", Hash: []byte("h"), Salt: []byte("s"), ParamsJSON: []byte("{}"), PasswordVer: 1}
		if err := st.Credentials().UpsertPassword(ctx, cred); err != nil {
			t.Fatalf("seed credential: %v", err)
		}
		return u
	}
	f.alice = seed("alice", "alice@example.com")
	f.bob = seed("bob", "bob@example.com")

	for i := 0; i < aliceLogins; i++ {
		pair, err := auth.Login(ctx, dto.LoginRequest{LoginOrEmail: "alice", Password: "hunter22"}, "10.0.0.1", "device")
		if err != nil {
			t.Fatalf("alice login %d: %v", i, err)
		}
		f.alicePs = append(f.alicePs, pair)
	}
	pair, err := auth.Login(ctx, dto.LoginRequest{LoginOrEmail: "bob", Password: "hunter22"}, "10.0.0.2", "bob-device")
	if err != nil {
		t.Fatalf("bob login: %v", err)
	}
	f.bobPair = pair

	return f
}

func deviceIDOf(t *testing.T, svc *DeviceServiceImpl, pair *dto.TokenPair) string {
	t.Helper()
	claims, ok := svc.Tokens.VerifyRefresh(pair.RefreshToken)
	if !ok {
		t.Fatalf("refresh token does not verify")
	}
	return claims.DeviceID
}

func TestDeviceServiceListShowsOnlyOwnSessions(t *testing.T) {
	f := newDeviceFixture(t, 3)
	ctx := context.Background()

	views, err := f.svc.List(ctx, f.alicePs[0].RefreshToken)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 3 {
		t.Fatalf("expected 3 devices for alice, got %d", len(views))
	}
	bobDevice := deviceIDOf(t, f.svc, f.bobPair)
	for _, v := range views {
		if v.DeviceID == bobDevice {
			t.Fatalf("bob's device leaked into alice's list")
		}
		if v.IP != "10.0.0.1" || v.Title != "device" {
			t.Fatalf("unexpected view: %+v", v)
		}
	}
}

func TestDeviceServiceListRequiresLiveToken(t *testing.T) {
	f := newDeviceFixture(t, 1)
	ctx := context.Background()

	if _, err := f.svc.List(ctx, "garbage"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	// A token superseded by rotation no longer matches its session row.
	old := f.alicePs[0]
	f.advance(2 * time.Second)
	if _, err := f.auth.Refresh(ctx, old.RefreshToken, "10.0.0.1", "device"); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if _, err := f.svc.List(ctx, old.RefreshToken); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for rotated-out token, got %v", err)
	}
}

func (f *deviceFixture) advance(d time.Duration) {
	*f.clock = f.clock.Add(d)
}

func TestDeviceServiceRevokeOthersKeepsCaller(t *testing.T) {
	f := newDeviceFixture(t, 3)
	ctx := context.Background()

	caller := f.alicePs[1]
	if err := f.svc.RevokeOthers(ctx, caller.RefreshToken); err != nil {
		t.Fatalf("revoke others: %v", err)
	}

	views, err := f.svc.List(ctx, caller.RefreshToken)
	if err != nil {
		t.Fatalf("list after revoke: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected only the caller's session, got %d", len(views))
	}
	if want := deviceIDOf(t, f.svc, caller); views[0].DeviceID != want {
		t.Fatalf("surviving device = %s, want %s", views[0].DeviceID, want)
	}

	// Bob's session is untouched.
	if _, err := f.svc.List(ctx, f.bobPair.RefreshToken); err != nil {
		t.Fatalf("bob's token should still work: %v", err)
	}

	// The revoked siblings are dead for refresh.
	if _, err := f.auth.Refresh(ctx, f.alicePs[0].RefreshToken, "", ""); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected revoked sibling to be unauthorized, got %v", err)
	}
}

func TestDeviceServiceRevokeOne(t *testing.T) {
	f := newDeviceFixture(t, 2)
	ctx := context.Background()

	caller := f.alicePs[0]
	victim := deviceIDOf(t, f.svc, f.alicePs[1])

	if err := f.svc.RevokeOne(ctx, caller.RefreshToken, victim); err != nil {
		t.Fatalf("revoke one: %v", err)
	}
	views, err := f.svc.List(ctx, caller.RefreshToken)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 session left, got %d", len(views))
	}

	// Revoking the same device again is NotFound, as is a made-up id.
	if err := f.svc.RevokeOne(ctx, caller.RefreshToken, victim); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if err := f.svc.RevokeOne(ctx, caller.RefreshToken, uuid.NewString()); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound for unknown id, got %v", err)
	}
	if err := f.svc.RevokeOne(ctx, caller.RefreshToken, "not-a-uuid"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound for malformed id, got %v", err)
	}
}

func TestDeviceServiceRevokeOneForbiddenAcrossUsers(t *testing.T) {
	f := newDeviceFixture(t, 1)
	ctx := context.Background()

	bobDevice := deviceIDOf(t, f.svc, f.bobPair)
	if err := f.svc.RevokeOne(ctx, f.alicePs[0].RefreshToken, bobDevice); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	// Bob is unaffected by the attempt.
	if _, err := f.svc.List(ctx, f.bobPair.RefreshToken); err != nil {
		t.Fatalf("bob's session should survive: %v", err)
	}
}
