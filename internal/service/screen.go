package service

import (
	"context"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Phase is the render state of a screen.
type Phase int

const (
	// PhaseIdle is a screen that has not started loading.
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseError
	PhaseLoaded
	PhaseEmpty
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseError:
		return "error"
	case PhaseLoaded:
		return "loaded"
	case PhaseEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// ScreenState is a screen's current state. Key identifies the parameters
// the data was loaded for.
type ScreenState[T any] struct {
	Phase Phase
	Data  T
	Err   error
	Key   uint64
}

// Screen runs a loader and keeps only the answer to the latest request.
// Each Load supersedes the previous one: the previous request's context is
// canceled and its result, if it still arrives, is dropped. After Unmount
// every result is dropped.
type Screen[T any] struct {
	isEmpty  func(T) bool
	onChange func(ScreenState[T])

	mu      sync.Mutex
	gen     uint64
	cancel  context.CancelFunc
	mounted bool
	view    ScreenState[T]
}

// NewScreen creates a mounted screen. isEmpty decides between Loaded and
// Empty; nil means a result is never empty.
func NewScreen[T any](isEmpty func(T) bool) *Screen[T] {
	if isEmpty == nil {
		isEmpty = func(T) bool { return false }
	}
	return &Screen[T]{isEmpty: isEmpty, mounted: true}
}

// NewListScreen creates a screen whose result is empty when it has no rows.
func NewListScreen[E any]() *Screen[[]E] {
	return NewScreen(func(rows []E) bool { return len(rows) == 0 })
}

// OnChange registers fn to be called with every state the screen accepts.
// fn runs outside the screen's lock.
func (s *Screen[T]) OnChange(fn func(ScreenState[T])) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// RequestKey hashes the load parameters into a request identity.
func RequestKey(params ...string) uint64 {
	return xxhash.Sum64String(strings.Join(params, "\x00"))
}

// Load runs fetch for params and returns the resulting state. ok is false
// when the result was dropped because a newer Load started or the screen was
// unmounted; the returned state is then the screen's current one.
func (s *Screen[T]) Load(ctx context.Context, fetch func(ctx context.Context) (T, error), params ...string) (view ScreenState[T], ok bool) {
	key := RequestKey(params...)

	s.mu.Lock()
	if !s.mounted {
		v := s.view
		s.mu.Unlock()
		return v, false
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	gen := s.gen
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.view = ScreenState[T]{Phase: PhaseLoading, Key: key}
	loading := s.view
	notify := s.onChange
	s.mu.Unlock()

	if notify != nil {
		notify(loading)
	}

	data, err := fetch(ctx)
	cancel()

	next := ScreenState[T]{Key: key}
	switch {
	case err != nil:
		next.Phase = PhaseError
		next.Err = err
	case s.isEmpty(data):
		next.Phase = PhaseEmpty
		next.Data = data
	default:
		next.Phase = PhaseLoaded
		next.Data = data
	}

	s.mu.Lock()
	if !s.mounted || gen != s.gen {
		v := s.view
		s.mu.Unlock()
		return v, false
	}
	s.view = next
	s.cancel = nil
	notify = s.onChange
	s.mu.Unlock()

	if notify != nil {
		notify(next)
	}
	return next, true
}

// Current returns the screen's state.
func (s *Screen[T]) Current() ScreenState[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Mounted reports whether results are still accepted.
func (s *Screen[T]) Mounted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mounted
}

// Unmount cancels the in-flight request and drops every later result.
func (s *Screen[T]) Unmount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mounted = false
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
