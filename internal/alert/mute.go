package alert

import (
	"sync"
	"time"
)

// MuteRegistry suppresses alert identities for a bounded duration. Entries
// live in process memory only: they do not survive a restart and are never
// shared across instances. Expired entries are evicted lazily on lookup.
type MuteRegistry struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewMuteRegistry constructs a registry. A nil clock defaults to time.Now,
// tests inject their own to control expiry deterministically.
func NewMuteRegistry(clock func() time.Time) *MuteRegistry {
	if clock == nil {
		clock = time.Now
	}
	return &MuteRegistry{
		entries: make(map[string]time.Time),
		now:     clock,
	}
}

// Mute suppresses the given content hash until now+duration. Re-muting an
// already muted hash replaces the previous deadline.
func (m *MuteRegistry) Mute(contentHash string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[contentHash] = m.now().Add(duration)
}

// IsMuted reports whether the hash is currently suppressed, dropping the
// entry when its deadline has passed.
func (m *MuteRegistry) IsMuted(contentHash string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	until, ok := m.entries[contentHash]
	if !ok {
		return false
	}
	if !m.now().Before(until) {
		delete(m.entries, contentHash)
		return false
	}
	return true
}

// Len returns the number of entries currently held, expired or not.
func (m *MuteRegistry) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
