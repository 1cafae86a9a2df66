package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultWriteTimeout bounds a single write-through to the store.
const DefaultWriteTimeout = 5 * time.Second

// writeQueueSize is the number of write-throughs that may be pending before
// Set and Clear start to block.
const writeQueueSize = 64

// EventKind identifies an auth-state change.
type EventKind int

const (
	// EventLogin is emitted when a new session (token or guest) is adopted.
	EventLogin EventKind = iota + 1
	// EventLogout is emitted when the session is cleared by the user.
	EventLogout
	// EventInvalidated is emitted when the backend rejected the token (401).
	EventInvalidated
)

// String returns the event name used in logs.
func (k EventKind) String() string {
	switch k {
	case EventLogin:
		return "login"
	case EventLogout:
		return "logout"
	case EventInvalidated:
		return "invalidated"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event is delivered to Cache subscribers after the in-memory token changed.
type Event struct {
	Kind EventKind
}

// writeOp is one ordered write-through. A non-nil barrier marks a Flush.
type writeOp struct {
	set     map[string]string
	remove  []string
	barrier chan error
}

// Cache is the process-wide in-memory mirror of the bearer token.
//
// Reads never touch storage: Get returns whatever was last hydrated, set or
// cleared. Set and Clear update memory immediately and hand the durable write
// to a single ordered writer goroutine, so the in-memory value is
// authoritative before the write-through completes.
type Cache struct {
	store        Store
	logger       *slog.Logger
	writeTimeout time.Duration

	// mu is held across a token change and its enqueue, so the writer sees
	// write-throughs in the same order memory saw the changes.
	mu      sync.RWMutex
	token   string
	version uint64 // bumped by every Set/Prime/Clear

	errMu    sync.Mutex
	writeErr error // last write-through failure, reported by Flush

	hydrateOnce sync.Once
	ready       chan struct{}

	wmu        sync.Mutex
	writes     chan writeOp
	started    bool
	closed     bool
	writerDone chan struct{}

	subMu  sync.Mutex
	subs   map[int]func(Event)
	nextID int
}

// NewCache creates a Cache backed by store. The cache is empty until Hydrate
// completes; call Close to stop the write-through goroutine.
func NewCache(store Store, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		store:        store,
		logger:       logger,
		writeTimeout: DefaultWriteTimeout,
		ready:        make(chan struct{}),
		writes:       make(chan writeOp, writeQueueSize),
		writerDone:   make(chan struct{}),
		subs:         make(map[int]func(Event)),
	}
}

// Hydrate loads the token from the store exactly once per Cache. Concurrent
// callers share the single in-flight read and all observe its result; later
// calls return immediately. A store failure is logged and treated as "no
// token". Hydrate only fails when ctx ends before hydration completes; the
// read itself keeps running and still signals Ready.
func (c *Cache) Hydrate(ctx context.Context) error {
	c.hydrateOnce.Do(func() {
		go c.hydrate(context.WithoutCancel(ctx))
	})
	select {
	case <-c.ready:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("hydrate session cache: %w", ctx.Err())
	}
}

func (c *Cache) hydrate(ctx context.Context) {
	defer close(c.ready)

	c.mu.RLock()
	startVersion := c.version
	c.mu.RUnlock()

	token, ok, err := c.store.Get(ctx, KeyToken)
	if err != nil {
		c.logger.Warn("failed to read token from credential store, starting without session", "error", err)
		token, ok = "", false
	}
	if !ok {
		token = ""
	}

	c.mu.Lock()
	// A Set/Prime/Clear that landed while the read was in flight is newer.
	if c.version == startVersion {
		c.token = token
	}
	current := c.token
	c.mu.Unlock()

	if exp, isJWT := TokenExpiry(current); isJWT && time.Now().After(exp) {
		c.logger.Warn("cached token is expired, requests will likely be rejected", "expired_at", exp)
	}
	c.logger.Debug("session cache hydrated", "authenticated", current != "")
}

// Hydrated reports whether hydration has completed.
func (c *Cache) Hydrated() bool {
	select {
	case <-c.ready:
		return true
	default:
		return false
	}
}

// Get returns the current token, or "" when there is none. It never blocks on
// storage.
func (c *Cache) Get() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Set replaces the token in memory and schedules a durable write.
func (c *Cache) Set(token string) {
	c.mu.Lock()
	c.token = token
	c.version++
	if token == "" {
		c.enqueue(writeOp{remove: []string{KeyToken}})
	} else {
		c.enqueue(writeOp{set: map[string]string{KeyToken: token}})
	}
	c.mu.Unlock()

	c.emit(Event{Kind: EventLogin})
}

// Prime adopts a token that is already durable (written by Persist) without
// scheduling another write. An empty token adopts a token-less session such
// as guest browsing.
func (c *Cache) Prime(token string) {
	c.mu.Lock()
	c.token = token
	c.version++
	c.mu.Unlock()

	c.emit(Event{Kind: EventLogin})
}

// Clear drops the token from memory and schedules removal of every session
// key from the store.
func (c *Cache) Clear() {
	c.clear(EventLogout)
}

// Invalidate is Clear for a token the backend rejected.
func (c *Cache) Invalidate() {
	c.clear(EventInvalidated)
}

// InvalidateIf invalidates the session only while token is still the cached
// one. A rejection of a token that was since replaced by a new login is
// ignored. It reports whether the session was cleared.
func (c *Cache) InvalidateIf(token string) bool {
	c.mu.Lock()
	if c.token != token {
		c.mu.Unlock()
		return false
	}
	c.clearLocked()
	c.mu.Unlock()

	c.emit(Event{Kind: EventInvalidated})
	return true
}

func (c *Cache) clear(kind EventKind) {
	c.mu.Lock()
	c.clearLocked()
	c.mu.Unlock()

	c.emit(Event{Kind: kind})
}

func (c *Cache) clearLocked() {
	c.token = ""
	c.version++
	c.enqueue(writeOp{remove: Keys})
}

// Flush waits until every write-through scheduled before the call has been
// applied and returns the most recent write-through error, if any.
func (c *Cache) Flush(ctx context.Context) error {
	barrier := make(chan error, 1)
	if !c.enqueue(writeOp{barrier: barrier}) {
		return c.takeWriteErr()
	}
	select {
	case err := <-barrier:
		return err
	case <-ctx.Done():
		return fmt.Errorf("flush session cache: %w", ctx.Err())
	}
}

// Close drains pending write-throughs and stops the writer goroutine.
// Safe to call multiple times.
func (c *Cache) Close() {
	c.wmu.Lock()
	if !c.closed {
		c.closed = true
		close(c.writes)
	}
	started := c.started
	c.wmu.Unlock()

	if started {
		<-c.writerDone
	}
}

// Subscribe registers fn for auth-state events and returns a function that
// removes it. fn runs synchronously on the goroutine that changed the token.
func (c *Cache) Subscribe(fn func(Event)) (unsubscribe func()) {
	c.subMu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.subMu.Unlock()

	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}

func (c *Cache) emit(ev Event) {
	c.subMu.Lock()
	fns := make([]func(Event), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// enqueue hands op to the writer, starting it on first use. It returns false
// when the cache is closed; a closed cache applies data writes synchronously.
// The writer never takes mu, so enqueue may run while mu is held.
func (c *Cache) enqueue(op writeOp) bool {
	c.wmu.Lock()
	if c.closed {
		c.wmu.Unlock()
		if op.barrier == nil {
			c.apply(op)
		}
		return false
	}
	if !c.started {
		c.started = true
		go c.runWriter()
	}
	c.writes <- op
	c.wmu.Unlock()
	return true
}

func (c *Cache) runWriter() {
	defer close(c.writerDone)
	for op := range c.writes {
		if op.barrier != nil {
			op.barrier <- c.takeWriteErr()
			continue
		}
		c.apply(op)
	}
}

func (c *Cache) apply(op writeOp) {
	ctx, cancel := context.WithTimeout(context.Background(), c.writeTimeout)
	defer cancel()

	var err error
	if bs, ok := c.store.(BatchStore); ok {
		err = bs.Apply(ctx, op.set, op.remove)
	} else {
		var errs []error
		for k, v := range op.set {
			if e := c.store.Set(ctx, k, v); e != nil {
				errs = append(errs, fmt.Errorf("set %s: %w", k, e))
			}
		}
		for _, k := range op.remove {
			if e := c.store.Remove(ctx, k); e != nil {
				errs = append(errs, fmt.Errorf("remove %s: %w", k, e))
			}
		}
		err = errors.Join(errs...)
	}
	if err != nil {
		c.logger.Warn("session write-through failed", "error", err)
		c.errMu.Lock()
		c.writeErr = err
		c.errMu.Unlock()
	}
}

func (c *Cache) takeWriteErr() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	err := c.writeErr
	c.writeErr = nil
	return err
}
