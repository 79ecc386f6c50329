package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Manager owns all live sessions and evicts the ones that idle past the TTL
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Store
	ttl      time.Duration
}

// NewManager creates a session manager and starts its eviction loop
func NewManager(ttl time.Duration) *Manager {
	m := &Manager{
		sessions: make(map[string]*Store),
		ttl:      ttl,
	}

	go m.evictLoop()

	return m
}

// evictLoop removes expired sessions periodically
func (m *Manager) evictLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-m.ttl)
		evicted := 0

		m.mu.Lock()
		for id, store := range m.sessions {
			if store.LastAccess().Before(cutoff) {
				delete(m.sessions, id)
				evicted++
			}
		}
		remaining := len(m.sessions)
		m.mu.Unlock()

		if evicted > 0 {
			slog.Info("Evicted idle sessions", "evicted", evicted, "remaining", remaining)
		}
	}
}

// Get returns the session with the given ID, if it is still live
func (m *Manager) Get(id string) (*Store, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	store, ok := m.sessions[id]
	return store, ok
}

// Create registers a fresh session under a new UUID
func (m *Manager) Create() *Store {
	store := NewStore(uuid.NewString())

	m.mu.Lock()
	m.sessions[store.ID()] = store
	m.mu.Unlock()

	slog.Info("Session created", "session_id", store.ID())
	return store
}

// GetOrCreate resolves the session for a request. An empty or unknown ID
// (expired session, first visit) yields a fresh session.
func (m *Manager) GetOrCreate(id string) *Store {
	if id != "" {
		if store, ok := m.Get(id); ok {
			return store
		}
	}
	return m.Create()
}

// Count returns the number of live sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Stats returns session manager statistics
func (m *Manager) Stats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"live_sessions": len(m.sessions),
		"ttl_seconds":   m.ttl.Seconds(),
	}
}
