package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

type memoryEntry struct {
	count   int64
	expires time.Time
}

// MemoryStore is the in-process Store used when no Redis address is
// configured. Counters expire with their bucket, so only the current window
// per session stays resident.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*memoryEntry)}
}

func (s *MemoryStore) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	e, ok := s.entries[key]
	if !ok || now.After(e.expires) {
		s.entries[key] = &memoryEntry{count: 1, expires: now.Add(ttl)}
		return 1, nil
	}

	e.count++
	return e.count, nil
}

// Prune drops expired buckets.
func (s *MemoryStore) Prune() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, e := range s.entries {
		if now.After(e.expires) {
			delete(s.entries, key)
		}
	}
}

// StartSweeper schedules Prune every minute and returns the running scheduler
// so the caller can Stop it on shutdown.
func (s *MemoryStore) StartSweeper() *cron.Cron {
	c := cron.New()
	_, _ = c.AddFunc("@every 1m", s.Prune)
	c.Start()
	return c
}
