// Package memory provides in-memory implementations of outbound ports.
package memory

import (
	"context"
	"sync"

	"github.com/reusemart/reusemart-mobile/internal/domain/session"
)

// CredentialStore implements session.BatchStore with an in-memory map.
// Thread-safe for concurrent access. Nothing survives the process; used for
// ephemeral runs and tests.
type CredentialStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// Compile-time interface checks.
var (
	_ session.Store      = (*CredentialStore)(nil)
	_ session.BatchStore = (*CredentialStore)(nil)
)

// NewCredentialStore creates an empty in-memory credential store.
func NewCredentialStore() *CredentialStore {
	return &CredentialStore{values: make(map[string]string)}
}

// Get returns the value stored under key.
func (s *CredentialStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

// Set stores value under key.
func (s *CredentialStore) Set(ctx context.Context, key, value string) error {
	return s.Apply(ctx, map[string]string{key: value}, nil)
}

// Remove deletes key.
func (s *CredentialStore) Remove(ctx context.Context, key string) error {
	return s.Apply(ctx, nil, []string{key})
}

// Apply removes then sets keys under a single lock.
func (s *CredentialStore) Apply(ctx context.Context, set map[string]string, remove []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range remove {
		delete(s.values, key)
	}
	for key, value := range set {
		s.values[key] = value
	}
	return nil
}

// snapshot returns a copy of every stored key.
func (s *CredentialStore) snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}
