package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Store provides durable credential persistence that survives restarts.
// This interface is defined in the domain to avoid circular imports.
// Implementations: file (default), SQLite, in-memory (tests, ephemeral mode).
type Store interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}

// BatchStore is a Store that can apply several writes as one composite record.
// Either every change in Apply is durable or none is.
type BatchStore interface {
	Store

	// Apply stores every entry in set and deletes every key in remove atomically.
	Apply(ctx context.Context, set map[string]string, remove []string) error
}

// ErrPartialPersist is matched by a *PartialPersistError.
var ErrPartialPersist = errors.New("partial persist failure")

// PartialPersistError is returned by Persist when the token became durable but
// a later key could not be written. The stored session is inconsistent
// (authenticated but possibly unroutable) until the next login or logout.
type PartialPersistError struct {
	// Persisted lists the keys that were written before the failure.
	Persisted []string
	// Failed is the key whose write failed.
	Failed string
	// Err is the storage error.
	Err error
}

// Error returns a human-readable description of the partial write.
func (e *PartialPersistError) Error() string {
	return fmt.Sprintf("partial persist failure: wrote [%s], failed on %q: %v",
		strings.Join(e.Persisted, ", "), e.Failed, e.Err)
}

// Is reports whether target is ErrPartialPersist.
func (e *PartialPersistError) Is(target error) bool {
	return target == ErrPartialPersist
}

// Unwrap returns the storage error.
func (e *PartialPersistError) Unwrap() error {
	return e.Err
}

// Load reads the whole session from store. A failed read is logged and the
// key treated as absent; Load never fails.
func Load(ctx context.Context, store Store, logger *slog.Logger) Session {
	read := func(key string) string {
		v, ok, err := store.Get(ctx, key)
		if err != nil {
			logger.Warn("failed to read credential, treating as absent", "key", key, "error", err)
			return ""
		}
		if !ok {
			return ""
		}
		return v
	}
	return Session{
		Token:   read(KeyToken),
		Role:    read(KeyRole),
		SubRole: read(KeySubRole),
		ActorID: read(KeyActorID),
	}
}

// Persist writes s as the new session, replacing any previous one. Keys that
// are empty in s are removed so no field survives from an earlier login.
//
// With a BatchStore the write is a single composite record. Otherwise the
// token is written first and every other key is written before Persist
// returns nil; a failure after the token is durable yields a
// *PartialPersistError.
func Persist(ctx context.Context, store Store, s Session) error {
	set := s.values()
	var remove []string
	for _, key := range Keys {
		if _, ok := set[key]; !ok {
			remove = append(remove, key)
		}
	}

	if bs, ok := store.(BatchStore); ok {
		if err := bs.Apply(ctx, set, remove); err != nil {
			return fmt.Errorf("persist session: %w", err)
		}
		return nil
	}

	var persisted []string
	for _, key := range Keys {
		var err error
		if v, ok := set[key]; ok {
			err = store.Set(ctx, key, v)
		} else {
			err = store.Remove(ctx, key)
		}
		if err != nil {
			if _, wroteToken := set[KeyToken]; !wroteToken || len(persisted) == 0 {
				return fmt.Errorf("persist %s: %w", key, err)
			}
			return &PartialPersistError{Persisted: persisted, Failed: key, Err: err}
		}
		persisted = append(persisted, key)
	}
	return nil
}

// Destroy removes every session key from store.
func Destroy(ctx context.Context, store Store) error {
	if bs, ok := store.(BatchStore); ok {
		if err := bs.Apply(ctx, nil, Keys); err != nil {
			return fmt.Errorf("destroy session: %w", err)
		}
		return nil
	}

	var errs []error
	for _, key := range Keys {
		if err := store.Remove(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}
