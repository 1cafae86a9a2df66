// Package dispatch decides which role-specific screen to mount for the
// stored session.
package dispatch

import (
	"context"
	"log/slog"
	"sync"

	"github.com/reusemart/reusemart-mobile/internal/domain/session"
)

// View names a role-specific screen.
type View string

const (
	BuyerView     View = "buyer"
	ConsignorView View = "consignor"
	CourierView   View = "courier"
	HunterView    View = "hunter"
	GuestView     View = "guest"
	LoginPrompt   View = "login"
)

// StaffFallback is the view for staff whose position has no screen of its
// own. Staff without a courier or hunter position browse as buyers.
const StaffFallback = BuyerView

// Key selects a row of the dispatch table. SubRole is SubRoleNone for every
// role except staff.
type Key struct {
	Role    session.Role
	SubRole session.SubRole
}

// Table maps (role, sub-role) to a view. Adding a role is a new entry.
type Table struct {
	entries  map[Key]View
	fallback View
}

// NewTable builds a table from entries. fallback is used for any key that has
// no entry, including unrecognised roles.
func NewTable(entries map[Key]View, fallback View) *Table {
	m := make(map[Key]View, len(entries))
	for k, v := range entries {
		m[k] = v
	}
	return &Table{entries: m, fallback: fallback}
}

// DefaultTable returns the marketplace's role routing.
func DefaultTable() *Table {
	return NewTable(map[Key]View{
		{Role: session.RoleBuyer}:                                  BuyerView,
		{Role: session.RoleConsignor}:                              ConsignorView,
		{Role: session.RoleStaff, SubRole: session.SubRoleCourier}: CourierView,
		{Role: session.RoleStaff, SubRole: session.SubRoleHunter}:  HunterView,
		{Role: session.RoleStaff, SubRole: session.SubRoleOther}:   StaffFallback,
		{Role: session.RoleGuest}:                                  GuestView,
	}, BuyerView)
}

// Lookup returns the view for key.
func (t *Table) Lookup(key Key) View {
	if v, ok := t.entries[key]; ok {
		return v
	}
	return t.fallback
}

// Phase is the resolver's state.
type Phase int

const (
	// Unresolved means the store has not been read since the last auth-state change.
	Unresolved Phase = iota
	// Resolved means a role was found.
	Resolved
	// LoggedOut means there is no routable session.
	LoggedOut
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case Resolved:
		return "resolved"
	case LoggedOut:
		return "logged_out"
	default:
		return "unresolved"
	}
}

// State is the outcome of a resolution. Role and SubRole are set only when
// Phase is Resolved.
type State struct {
	Phase   Phase
	Role    session.Role
	SubRole session.SubRole
}

// Resolver reads the stored role and picks a view. A resolution stays valid
// until the next auth-state event.
type Resolver struct {
	store  session.Store
	table  *Table
	logger *slog.Logger

	mu    sync.Mutex
	state State
	view  View
}

// NewResolver creates a Resolver over store. A nil table means DefaultTable.
func NewResolver(store session.Store, table *Table, logger *slog.Logger) *Resolver {
	if table == nil {
		table = DefaultTable()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{store: store, table: table, logger: logger}
}

// State returns the current state without reading the store.
func (r *Resolver) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Resolve returns the state and view, reading the store when unresolved.
func (r *Resolver) Resolve(ctx context.Context) (State, View) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state.Phase != Unresolved {
		return r.state, r.view
	}

	s := session.Load(ctx, r.store, r.logger)
	r.state, r.view = r.evaluate(s)
	r.logger.Debug("role resolved", "phase", r.state.Phase, "role", r.state.Role, "sub_role", r.state.SubRole, "view", r.view)
	return r.state, r.view
}

func (r *Resolver) evaluate(s session.Session) (State, View) {
	role := s.ParsedRole()
	if role == session.RoleNone {
		if s.Authenticated() {
			r.logger.Warn("stored session has a token but no role, treating as logged out")
		}
		return State{Phase: LoggedOut}, LoginPrompt
	}
	if role == session.RoleUnknown {
		r.logger.Warn("unrecognised stored role, using fallback view", "role", s.Role)
	}

	st := State{Phase: Resolved, Role: role, SubRole: s.ParsedSubRole()}
	return st, r.table.Lookup(Key{Role: st.Role, SubRole: st.SubRole})
}

// Reset returns the resolver to Unresolved.
func (r *Resolver) Reset() {
	r.mu.Lock()
	r.state = State{}
	r.view = ""
	r.mu.Unlock()
}

// Attach resets the resolver on every auth-state event from cache. The
// returned function detaches it.
func (r *Resolver) Attach(cache *session.Cache) (detach func()) {
	return cache.Subscribe(func(ev session.Event) {
		r.logger.Debug("auth state changed, role dispatch reset", "event", ev.Kind)
		r.Reset()
	})
}
