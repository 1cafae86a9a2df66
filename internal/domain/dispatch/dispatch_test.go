package dispatch

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/reusemart/reusemart-mobile/internal/domain/session"
)

type mapStore struct {
	mu     sync.Mutex
	values map[string]string
	reads  int
}

func (m *mapStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *mapStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *mapStore) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestResolver_Dispatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		values    map[string]string
		wantPhase Phase
		wantView  View
	}{
		{
			name:      "staff courier",
			values:    map[string]string{"token": "t", "role": "staff", "jabatan": "kurir"},
			wantPhase: Resolved,
			wantView:  CourierView,
		},
		{
			name:      "staff unknown position falls back to buyer",
			values:    map[string]string{"role": "staff", "jabatan": "unknown"},
			wantPhase: Resolved,
			wantView:  BuyerView,
		},
		{
			name:      "empty store",
			values:    map[string]string{},
			wantPhase: LoggedOut,
			wantView:  LoginPrompt,
		},
		{
			name:      "backend spelling pegawai hunter",
			values:    map[string]string{"token": "t", "role": "pegawai", "jabatan": "Hunter"},
			wantPhase: Resolved,
			wantView:  HunterView,
		},
		{
			name:      "buyer",
			values:    map[string]string{"token": "t", "role": "pembeli"},
			wantPhase: Resolved,
			wantView:  BuyerView,
		},
		{
			name:      "consignor",
			values:    map[string]string{"token": "t", "role": "penitip"},
			wantPhase: Resolved,
			wantView:  ConsignorView,
		},
		{
			name:      "guest without token",
			values:    map[string]string{"role": "guest"},
			wantPhase: Resolved,
			wantView:  GuestView,
		},
		{
			name:      "token without role is a partial write",
			values:    map[string]string{"token": "t"},
			wantPhase: LoggedOut,
			wantView:  LoginPrompt,
		},
		{
			name:      "unrecognised role uses fallback",
			values:    map[string]string{"token": "t", "role": "owner"},
			wantPhase: Resolved,
			wantView:  BuyerView,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := NewResolver(&mapStore{values: tt.values}, nil, testLogger())
			if got := r.State().Phase; got != Unresolved {
				t.Fatalf("initial phase = %s, want unresolved", got)
			}
			state, view := r.Resolve(context.Background())
			if state.Phase != tt.wantPhase {
				t.Errorf("phase = %s, want %s", state.Phase, tt.wantPhase)
			}
			if view != tt.wantView {
				t.Errorf("view = %q, want %q", view, tt.wantView)
			}
		})
	}
}

func TestResolver_StaffSubRoleOnlyForStaff(t *testing.T) {
	t.Parallel()

	r := NewResolver(&mapStore{values: map[string]string{"role": "pembeli", "jabatan": "kurir"}}, nil, testLogger())
	state, view := r.Resolve(context.Background())
	if state.SubRole != session.SubRoleNone {
		t.Errorf("SubRole = %q for a buyer, want none", state.SubRole)
	}
	if view != BuyerView {
		t.Errorf("view = %q, want %q", view, BuyerView)
	}
}

func TestResolver_CachesUntilEvent(t *testing.T) {
	t.Parallel()

	store := &mapStore{values: map[string]string{"token": "t", "role": "pembeli"}}
	cache := session.NewCache(store, testLogger())
	defer cache.Close()

	r := NewResolver(store, nil, testLogger())
	detach := r.Attach(cache)
	defer detach()

	if _, view := r.Resolve(context.Background()); view != BuyerView {
		t.Fatalf("view = %q, want %q", view, BuyerView)
	}
	readsAfterFirst := store.reads
	r.Resolve(context.Background())
	if store.reads != readsAfterFirst {
		t.Error("second Resolve re-read the store without an auth-state event")
	}

	// Logout clears the store and resets the resolver.
	if err := session.Destroy(context.Background(), store); err != nil {
		t.Fatalf("Destroy() error: %v", err)
	}
	cache.Clear()
	if got := r.State().Phase; got != Unresolved {
		t.Fatalf("phase after logout event = %s, want unresolved", got)
	}
	if state, view := r.Resolve(context.Background()); state.Phase != LoggedOut || view != LoginPrompt {
		t.Errorf("after logout = (%s, %q), want (logged_out, login)", state.Phase, view)
	}
}

func TestTable_CustomEntries(t *testing.T) {
	t.Parallel()

	table := NewTable(map[Key]View{
		{Role: session.RoleStaff, SubRole: session.SubRoleOther}: GuestView,
	}, LoginPrompt)

	if got := table.Lookup(Key{Role: session.RoleStaff, SubRole: session.SubRoleOther}); got != GuestView {
		t.Errorf("Lookup(staff, other) = %q, want %q", got, GuestView)
	}
	if got := table.Lookup(Key{Role: session.RoleBuyer}); got != LoginPrompt {
		t.Errorf("Lookup(buyer) = %q, want fallback %q", got, LoginPrompt)
	}
}

func TestDefaultTable_StaffFallbackIsNamed(t *testing.T) {
	t.Parallel()

	got := DefaultTable().Lookup(Key{Role: session.RoleStaff, SubRole: session.SubRoleOther})
	if got != StaffFallback {
		t.Errorf("staff+other = %q, want StaffFallback (%q)", got, StaffFallback)
	}
}
