// Package session manages the client-side login session: the durable
// credential store port, the transactional login write and the in-memory
// token cache read by every outgoing request.
package session

import "strings"

// Persisted credential keys.
const (
	KeyToken   = "token"
	KeyRole    = "role"
	KeySubRole = "jabatan"
	KeyActorID = "pegawai_id"
)

// Keys lists every key owned by a session, token first.
var Keys = []string{KeyToken, KeyRole, KeySubRole, KeyActorID}

// Role is the actor kind a session belongs to.
type Role string

const (
	// RoleNone means no role is stored.
	RoleNone Role = ""
	// RoleBuyer is a pembeli.
	RoleBuyer Role = "buyer"
	// RoleConsignor is a penitip.
	RoleConsignor Role = "consignor"
	// RoleStaff is a pegawai; see SubRole for courier/hunter.
	RoleStaff Role = "staff"
	// RoleGuest browses without a token.
	RoleGuest Role = "guest"
	// RoleUnknown is a stored role string this client does not recognise.
	RoleUnknown Role = "unknown"
)

// ParseRole maps a stored or backend role string to a Role. Backend spellings
// (pembeli, penitip, pegawai) and the English names are both accepted.
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return RoleNone
	case "buyer", "pembeli":
		return RoleBuyer
	case "consignor", "penitip":
		return RoleConsignor
	case "staff", "pegawai":
		return RoleStaff
	case "guest", "tamu":
		return RoleGuest
	default:
		return RoleUnknown
	}
}

// SubRole is a staff member's position (jabatan).
type SubRole string

const (
	// SubRoleNone means no sub-role is stored.
	SubRoleNone SubRole = ""
	// SubRoleCourier is a kurir.
	SubRoleCourier SubRole = "courier"
	// SubRoleHunter is a hunter.
	SubRoleHunter SubRole = "hunter"
	// SubRoleOther is any other position.
	SubRoleOther SubRole = "other"
)

// ParseSubRole maps a stored jabatan string to a SubRole.
func ParseSubRole(s string) SubRole {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return SubRoleNone
	case "kurir", "courier":
		return SubRoleCourier
	case "hunter":
		return SubRoleHunter
	default:
		return SubRoleOther
	}
}

// Session is the persisted login state. Every field is optional; an empty
// string means absent. SubRole is meaningful only when Role parses to staff.
type Session struct {
	Token   string
	Role    string
	SubRole string
	ActorID string
}

// Empty reports whether no field is set.
func (s Session) Empty() bool {
	return s.Token == "" && s.Role == "" && s.SubRole == "" && s.ActorID == ""
}

// Authenticated reports whether a bearer token is present.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// ParsedRole returns the Role for the stored role string.
func (s Session) ParsedRole() Role {
	return ParseRole(s.Role)
}

// ParsedSubRole returns the SubRole, or SubRoleNone when the role is not staff.
func (s Session) ParsedSubRole() SubRole {
	if s.ParsedRole() != RoleStaff {
		return SubRoleNone
	}
	sub := ParseSubRole(s.SubRole)
	if sub == SubRoleNone {
		return SubRoleOther
	}
	return sub
}

// values returns the non-empty fields keyed by their persisted key.
func (s Session) values() map[string]string {
	m := make(map[string]string, len(Keys))
	if s.Token != "" {
		m[KeyToken] = s.Token
	}
	if s.Role != "" {
		m[KeyRole] = s.Role
	}
	if s.SubRole != "" {
		m[KeySubRole] = s.SubRole
	}
	if s.ActorID != "" {
		m[KeyActorID] = s.ActorID
	}
	return m
}

// LoginResult is a successful login. Role and SubRole are the backend's raw
// strings (e.g. "pegawai", "Kurir").
type LoginResult struct {
	Token   string `json:"-" yaml:"-" validate:"required"`
	Role    string `json:"role" yaml:"role"`
	SubRole string `json:"jabatan,omitempty" yaml:"jabatan,omitempty"`
	ActorID string `json:"actor_id,omitempty" yaml:"actor_id,omitempty"`
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
}

// Session returns the state to persist for this login.
func (r LoginResult) Session() Session {
	return Session{Token: r.Token, Role: r.Role, SubRole: r.SubRole, ActorID: r.ActorID}
}
