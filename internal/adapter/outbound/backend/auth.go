package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/reusemart/reusemart-mobile/internal/domain/market"
	"github.com/reusemart/reusemart-mobile/internal/domain/session"
)

type loginWire struct {
	Token   text                       `json:"token"`
	Role    text                       `json:"role"`
	Jabatan json.RawMessage            `json:"jabatan"`
	User    map[string]json.RawMessage `json:"user"`
}

// AuthClient calls the login endpoint.
type AuthClient struct {
	*Client
}

// NewAuthClient creates the auth area client.
func NewAuthClient(baseURL string, tokens TokenSource, opts ...Option) *AuthClient {
	return &AuthClient{New(AreaAuth, baseURL, tokens, opts...)}
}

// Login exchanges credentials for a token. A 401 or 422 is
// ErrInvalidCredentials and never invalidates the current session.
// Login does not persist anything; see service.AuthService.
func (a *AuthClient) Login(ctx context.Context, email, password string) (session.LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return session.LoginResult{}, market.Validationf("email", "email is required")
	}
	if password == "" {
		return session.LoginResult{}, market.Validationf("password", "password is required")
	}

	r := request{
		method:    http.MethodPost,
		path:      "/login",
		body:      map[string]string{"email": email, "password": password},
		anonymous: true,
	}
	var w loginWire
	if err := a.call(ctx, r, &w); err != nil {
		var me *market.Error
		if errors.As(err, &me) && (me.Status == http.StatusUnauthorized || me.Status == http.StatusUnprocessableEntity) {
			me.Kind = market.ErrInvalidCredentials
		}
		return session.LoginResult{}, err
	}

	res := session.LoginResult{
		Token:   string(w.Token),
		Role:    firstText(userText(w.User, "role"), w.Role),
		SubRole: firstText(jabatanText(w.Jabatan), userJabatan(w.User)),
		ActorID: firstText(
			userText(w.User, "ID_PEGAWAI"),
			userText(w.User, "id"),
			userText(w.User, "ID_PEMBELI"),
			userText(w.User, "ID_PENITIP"),
		),
		Name: firstText(
			userText(w.User, "name"),
			userText(w.User, "NAMA_PEGAWAI"),
			userText(w.User, "NAMA_PEMBELI"),
			userText(w.User, "NAMA_PENITIP"),
		),
	}
	if err := check(a.Client, r, res); err != nil {
		return session.LoginResult{}, err
	}
	return res, nil
}

func userText(user map[string]json.RawMessage, key string) text {
	var t text
	if raw, ok := user[key]; ok {
		_ = json.Unmarshal(raw, &t)
	}
	return t
}

// jabatanText reads a position sent either as a string or as
// {"NAMA_JABATAN": "..."}.
func jabatanText(raw json.RawMessage) text {
	if len(raw) == 0 {
		return ""
	}
	var t text
	if err := json.Unmarshal(raw, &t); err == nil {
		return t
	}
	var obj struct {
		Name text `json:"NAMA_JABATAN"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Name
	}
	return ""
}

func userJabatan(user map[string]json.RawMessage) text {
	return text(firstText(jabatanText(user["jabatan"]), jabatanText(user["jabatans"])))
}
