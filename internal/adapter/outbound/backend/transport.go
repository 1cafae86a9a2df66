package backend

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// TokenSource returns the current bearer token, or "" when there is none.
// Get is called on every request and must not block on storage.
type TokenSource interface {
	Get() string
}

// Invalidator drops the session after the backend rejected its token.
type Invalidator interface {
	Invalidate()
}

// TokenInvalidator drops the session only while token is still the current
// one, and reports whether it did.
type TokenInvalidator interface {
	InvalidateIf(token string) bool
}

// stampKey carries a *string that receives the token a request was sent with.
type stampKey struct{}

func withTokenStamp(ctx context.Context) (context.Context, *string) {
	stamp := new(string)
	return context.WithValue(ctx, stampKey{}, stamp), stamp
}

// authTransport is the single request interceptor shared by every area.
// It works on a clone, so the caller's request is never mutated, and it only
// adds headers: anything the caller set survives, except Authorization which
// always reflects the cached token.
type authTransport struct {
	base     http.RoundTripper
	tokens   TokenSource
	defaults http.Header
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())

	for key, values := range t.defaults {
		if _, ok := out.Header[key]; !ok {
			out.Header[key] = append([]string(nil), values...)
		}
	}

	token := t.tokens.Get()
	if stamp, ok := req.Context().Value(stampKey{}).(*string); ok {
		*stamp = token
	}
	if token != "" {
		out.Header.Set("Authorization", "Bearer "+token)
		if out.Header.Get("Accept") == "" {
			out.Header.Set("Accept", "application/json")
		}
	}

	if out.Header.Get("X-Request-ID") == "" {
		out.Header.Set("X-Request-ID", uuid.NewString())
	}

	return t.base.RoundTrip(out)
}
