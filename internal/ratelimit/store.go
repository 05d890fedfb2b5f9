// Package ratelimit throttles repeat order submissions per client
// fingerprint. The limit is advisory: a client that changes its signals
// is not recognised, so it must not be relied on as a security control.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Store is the key-value backend of the limiter.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore is a process-local Store with per-key expiry.
type MemoryStore struct {
	mu  sync.RWMutex
	m   map[string]entry
	now func() time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: make(map[string]entry), now: time.Now}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.m[key]
	if !ok || !s.now().Before(e.expiresAt) {
		return nil, false, nil
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, true, nil
}

// Put stores value under key for ttl and drops every expired key.
func (s *MemoryStore) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, e := range s.m {
		if !now.Before(e.expiresAt) {
			delete(s.m, k)
		}
	}
	v := make([]byte, len(value))
	copy(v, value)
	s.m[key] = entry{value: v, expiresAt: now.Add(ttl)}
	return nil
}

// Len returns the number of stored keys, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}
