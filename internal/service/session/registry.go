package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry keeps storefront sessions in memory, keyed by cookie value.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &Registry{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Resolve returns the live session for id on store slug, or a new one when
// id is unknown, expired or bound to another store. created reports the latter.
func (r *Registry) Resolve(slug, id string) (sess *Session, created bool) {
	now := r.now()
	if id != "" {
		r.mu.RLock()
		s, ok := r.sessions[id]
		r.mu.RUnlock()
		if ok && s.StoreSlug == slug && !s.expired(now, r.ttl) {
			s.touch(now)
			return s, false
		}
	}

	s := newSession(uuid.NewString(), slug, now)
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s, true
}

// Get returns a live session without creating one.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok || s.expired(r.now(), r.ttl) {
		return nil, false
	}
	return s, true
}

// Sweep evicts expired sessions and returns how many were removed.
func (r *Registry) Sweep() int {
	now := r.now()
	var evicted []*Session
	r.mu.Lock()
	for id, s := range r.sessions {
		if s.expired(now, r.ttl) {
			delete(r.sessions, id)
			evicted = append(evicted, s)
		}
	}
	r.mu.Unlock()

	for _, s := range evicted {
		s.unmountAll()
	}
	return len(evicted)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) TTL() time.Duration { return r.ttl }
