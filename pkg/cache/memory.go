package cache

import (
	"context"
	"sync"
	"time"

	"github.com/Flash5127/DU81-Proxy/pkg/gamepass"
)

type memoryEntry struct {
	records   []gamepass.Gamepass
	expiresAt time.Time
}

// Memory is a process-local TTL store backed by a mutex-guarded map.
//
// Expiry is lazy: entries are checked on read and an expired entry is removed
// when encountered. Keys that are never read again linger until overwritten,
// an accepted tradeoff for a short-lived proxy with a small key space; the
// Redis store is the bounded-memory alternative.
type Memory struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]memoryEntry
}

// NewMemory creates an in-memory store with the given TTL.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &Memory{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
	}
}

// Get returns the cached records, or ErrCacheMiss when absent or expired.
func (m *Memory) Get(_ context.Context, key string) ([]gamepass.Gamepass, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		CacheMisses.WithLabelValues("memory").Inc()
		return nil, ErrCacheMiss
	}

	if time.Now().After(e.expiresAt) {
		m.mu.Lock()
		// Re-check under the write lock; a concurrent Put may have refreshed it.
		if cur, ok := m.entries[key]; ok && cur.expiresAt.Equal(e.expiresAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()

		CacheMisses.WithLabelValues("memory").Inc()
		return nil, ErrCacheMiss
	}

	CacheHits.WithLabelValues("memory").Inc()
	return e.records, nil
}

// Put stores the records with a fresh TTL window, replacing any prior entry.
func (m *Memory) Put(_ context.Context, key string, records []gamepass.Gamepass) error {
	m.mu.Lock()
	m.entries[key] = memoryEntry{
		records:   records,
		expiresAt: time.Now().Add(m.ttl),
	}
	m.mu.Unlock()
	return nil
}

// Len returns the number of entries currently held, expired ones included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
