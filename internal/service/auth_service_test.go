package service

import (
	"context"
	"errors"
	"testing"

	"github.com/reusemart/reusemart-mobile/internal/adapter/outbound/memory"
	"github.com/reusemart/reusemart-mobile/internal/domain/market"
	"github.com/reusemart/reusemart-mobile/internal/domain/session"
)

func newTestCache(t *testing.T, store session.Store) *session.Cache {
	t.Helper()
	cache := session.NewCache(store, testLogger())
	t.Cleanup(cache.Close)
	if err := Boot(context.Background(), cache); err != nil {
		t.Fatalf("Boot() error: %v", err)
	}
	return cache
}

func TestAuthService_Login_PersistsAndPrimes(t *testing.T) {
	ctx := context.Background()
	store := memory.NewCredentialStore()
	cache := newTestCache(t, store)

	var events []session.EventKind
	cache.Subscribe(func(ev session.Event) { events = append(events, ev.Kind) })

	api := &fakeAuth{res: session.LoginResult{Token: "T1", Role: "pembeli", ActorID: "3"}}
	svc := NewAuthService(api, store, cache, testLogger())

	if _, err := svc.Login(ctx, "a@b.c", "pw"); err != nil {
		t.Fatalf("Login() error: %v", err)
	}

	stored := session.Load(ctx, store, testLogger())
	if stored.Token != "T1" || stored.Role != "pembeli" {
		t.Errorf("store = %+v, want token and role", stored)
	}
	if got := cache.Get(); got != "T1" {
		t.Errorf("cache token = %q, want T1", got)
	}
	if len(events) != 1 || events[0] != session.EventLogin {
		t.Errorf("events = %v, want [login]", events)
	}
}

func TestAuthService_Login_RejectedLeavesSession(t *testing.T) {
	ctx := context.Background()
	store := memory.NewCredentialStore()
	if err := session.Persist(ctx, store, session.Session{Token: "old", Role: "penitip"}); err != nil {
		t.Fatalf("Persist() error: %v", err)
	}
	cache := newTestCache(t, store)

	api := &fakeAuth{err: &market.Error{Kind: market.ErrInvalidCredentials}}
	svc := NewAuthService(api, store, cache, testLogger())

	if _, err := svc.Login(ctx, "a@b.c", "bad"); !errors.Is(err, market.ErrInvalidCredentials) {
		t.Fatalf("Login() error = %v, want ErrInvalidCredentials", err)
	}
	if got := cache.Get(); got != "old" {
		t.Errorf("cache token = %q, want old", got)
	}
	if stored := session.Load(ctx, store, testLogger()); stored.Token != "old" {
		t.Errorf("store = %+v, want previous session", stored)
	}
}

func TestAuthService_Login_PartialPersistRollsBack(t *testing.T) {
	ctx := context.Background()
	store := newFailingStore(session.KeyRole)
	cache := newTestCache(t, store)

	api := &fakeAuth{res: session.LoginResult{Token: "T1", Role: "pegawai", SubRole: "Kurir", ActorID: "5"}}
	svc := NewAuthService(api, store, cache, testLogger())

	_, err := svc.Login(ctx, "a@b.c", "pw")
	if !errors.Is(err, session.ErrPartialPersist) {
		t.Fatalf("Login() error = %v, want ErrPartialPersist", err)
	}
	if got := cache.Get(); got != "" {
		t.Errorf("cache token = %q after failed login, want empty", got)
	}
	if n := store.len(); n != 0 {
		t.Errorf("store keeps %d keys after rollback, want 0", n)
	}
}

func TestAuthService_LoginAsGuest(t *testing.T) {
	ctx := context.Background()
	store := memory.NewCredentialStore()
	if err := session.Persist(ctx, store, session.Session{Token: "old", Role: "pembeli"}); err != nil {
		t.Fatalf("Persist() error: %v", err)
	}
	cache := newTestCache(t, store)
	svc := NewAuthService(&fakeAuth{}, store, cache, testLogger())

	if err := svc.LoginAsGuest(ctx); err != nil {
		t.Fatalf("LoginAsGuest() error: %v", err)
	}
	stored := session.Load(ctx, store, testLogger())
	if stored.Token != "" {
		t.Errorf("token still stored for guest: %+v", stored)
	}
	if stored.Role != "guest" {
		t.Errorf("role = %q, want guest", stored.Role)
	}
	if got := cache.Get(); got != "" {
		t.Errorf("cache token = %q, want empty", got)
	}
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	store := memory.NewCredentialStore()
	cache := newTestCache(t, store)
	svc := NewAuthService(&fakeAuth{res: session.LoginResult{Token: "T", Role: "pembeli"}}, store, cache, testLogger())

	if _, err := svc.Login(ctx, "a@b.c", "pw"); err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if err := svc.Logout(ctx); err != nil {
		t.Fatalf("Logout() error: %v", err)
	}
	if stored := session.Load(ctx, store, testLogger()); !stored.Empty() {
		t.Errorf("store = %+v after logout, want empty", stored)
	}
	if got := cache.Get(); got != "" {
		t.Errorf("cache token = %q after logout", got)
	}
	if cur := svc.Current(ctx); !cur.Empty() {
		t.Errorf("Current() = %+v, want empty", cur)
	}
}

type failingHydrator struct{ err error }

func (h failingHydrator) Hydrate(context.Context) error { return h.err }

func TestBoot_WrapsHydrateError(t *testing.T) {
	t.Parallel()

	err := Boot(context.Background(), failingHydrator{err: context.DeadlineExceeded})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Boot() error = %v, want wrapped DeadlineExceeded", err)
	}
}
