package identity

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/frankincense-labs/cx-management/internal/shared/logger"
)

// Registry owns the stores of all live sessions, keyed by session id, and
// closes stores that have been idle longer than the configured timeout.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*registryEntry
	factory func() *Store
	idle    time.Duration
	now     func() time.Time
	logger  logger.Interface
}

type registryEntry struct {
	store    *Store
	lastSeen time.Time
}

func NewRegistry(factory func() *Store, idleTimeout time.Duration, log logger.Interface) *Registry {
	return &Registry{
		entries: make(map[string]*registryEntry),
		factory: factory,
		idle:    idleTimeout,
		now:     time.Now,
		logger:  log,
	}
}

// Get returns the store of sessionID and marks it as used.
func (r *Registry) Get(sessionID string) (*Store, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[sessionID]
	if !ok {
		return nil, false
	}
	e.lastSeen = r.now()
	return e.store, true
}

// Create starts a new session with a fresh store.
func (r *Registry) Create() (string, *Store) {
	id := uuid.NewString()
	store := r.factory()

	r.mu.Lock()
	r.entries[id] = &registryEntry{store: store, lastSeen: r.now()}
	r.mu.Unlock()

	return id, store
}

// GetOrCreate returns the store of sessionID, creating a new session when the
// id is unknown. The returned id is the one the caller must use from now on.
func (r *Registry) GetOrCreate(sessionID string) (id string, store *Store, created bool) {
	if sessionID != "" {
		if s, ok := r.Get(sessionID); ok {
			return sessionID, s, false
		}
	}
	id, store = r.Create()
	return id, store, true
}

// Remove closes and forgets a session.
func (r *Registry) Remove(sessionID string) {
	r.mu.Lock()
	e, ok := r.entries[sessionID]
	delete(r.entries, sessionID)
	r.mu.Unlock()

	if ok {
		e.store.Close()
	}
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep closes every store idle for longer than the timeout and returns how
// many were evicted. A store with listeners, such as an open live socket,
// counts as in use and is kept.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.idle)

	r.mu.Lock()
	var expired []*Store
	for id, e := range r.entries {
		if e.store.Watched() {
			e.lastSeen = r.now()
			continue
		}
		if e.lastSeen.Before(cutoff) {
			expired = append(expired, e.store)
			delete(r.entries, id)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}
	if len(expired) > 0 {
		r.logger.Infow("evicted idle sessions", "count", len(expired))
	}
	return len(expired)
}

// Close closes every store.
func (r *Registry) Close() {
	r.mu.Lock()
	entries := r.entries
	r.entries = make(map[string]*registryEntry)
	r.mu.Unlock()

	for _, e := range entries {
		e.store.Close()
	}
}
