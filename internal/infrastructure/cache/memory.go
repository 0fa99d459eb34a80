package cache

import (
	"context"
	"sync"
	"time"

	"fxconvert/internal/application"
)

var _ application.RateCache = (*Memory)(nil)

type entry struct {
	rate     float64
	storedAt time.Time
}

// Memory is an in-process rate cache. Entries never expire unless a TTL is set.
type Memory struct {
	mu    sync.RWMutex
	items map[string]entry
	ttl   time.Duration
	now   func() time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{items: make(map[string]entry), ttl: ttl, now: time.Now}
}

func (m *Memory) Get(_ context.Context, key string) (float64, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.items[key]
	if !ok || m.expired(e) {
		return 0, false, nil
	}
	return e.rate, true, nil
}

func (m *Memory) Set(_ context.Context, key string, rate float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = entry{rate: rate, storedAt: m.now()}
	return nil
}

func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = make(map[string]entry)
}

func (m *Memory) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// CleanExpired removes expired entries and reports how many were dropped.
func (m *Memory) CleanExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k, e := range m.items {
		if m.expired(e) {
			delete(m.items, k)
			n++
		}
	}
	return n
}

func (m *Memory) expired(e entry) bool {
	return m.ttl > 0 && m.now().Sub(e.storedAt) > m.ttl
}
