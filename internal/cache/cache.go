// Package cache provides a small key -> (value, expiry) store used for
// short-lived external API credentials such as carrier auth tokens.
package cache

import (
	"context"
	"sync"
	"time"
)

// Cache stores string values with a TTL.
type Cache interface {
	// Get returns the value for key, or false if absent or expired.
	Get(ctx context.Context, key string) (string, bool)
	// Set stores value under key for ttl.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

type entry struct {
	value   string
	expires time.Time
}

// Memory is an in-process Cache.
type Memory struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemory creates new in-process cache
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return "", false
	}
	if m.now().After(e.expires) {
		delete(m.entries, key)
		return "", false
	}

	return e.value, true
}

func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = entry{value: value, expires: m.now().Add(ttl)}
	return nil
}
