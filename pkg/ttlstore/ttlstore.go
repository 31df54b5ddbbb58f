// Package ttlstore provides an ephemeral keyed store with per-entry expiry,
// used for OTP codes and other short-lived tokens. The interface keeps the
// capability explicit so a shared store (e.g. Redis) can replace the
// in-memory implementation in multi-instance deployments.
package ttlstore

import (
	"sync"
	"time"
)

// Store is an expiring key-value store.
type Store interface {
	// Set stores a value that expires after ttl.
	Set(key, value string, ttl time.Duration)
	// Get returns the value for key. Expired or missing keys report false.
	Get(key string) (string, bool)
	// Delete removes a key.
	Delete(key string)
	// Close releases background resources.
	Close()
}

type entry struct {
	value     string
	expiresAt time.Time
}

// MemoryStore implements Store with a mutex-guarded map and a janitor
// goroutine that evicts expired entries.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	stopCh  chan struct{}
}

// Compile-time check to ensure MemoryStore implements the interface
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a MemoryStore. cleanupPeriod bounds how long an
// expired entry can linger before eviction; reads never see expired values
// regardless.
func NewMemoryStore(cleanupPeriod time.Duration) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]entry),
		stopCh:  make(chan struct{}),
	}
	go s.janitor(cleanupPeriod)
	return s
}

// Set stores a value that expires after ttl.
func (s *MemoryStore) Set(key, value string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
}

// Get returns the value for key, treating expired entries as missing.
func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok || time.Now().After(e.expiresAt) {
		return "", false
	}
	return e.value, true
}

// Delete removes a key.
func (s *MemoryStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Close stops the janitor goroutine.
func (s *MemoryStore) Close() {
	close(s.stopCh)
}

func (s *MemoryStore) janitor(period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.evictExpired()
		case <-s.stopCh:
			return
		}
	}
}

func (s *MemoryStore) evictExpired() {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, key)
		}
	}
}
