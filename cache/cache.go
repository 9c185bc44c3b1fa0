// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cache

import (
	"context"
	"sync"
	"time"

	"github.com/danielhkuo/ballotbox/models"
)

// Memory keeps results in process. Use it when only one server runs.
type Memory struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	gen     int64
	results []models.PositionResult
	expires time.Time
	valid   bool
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{ttl: ttl, now: time.Now}
}

// Load returns the stored results if they have not expired, along with the
// current generation. Callers must treat the returned slice as read-only.
func (m *Memory) Load(ctx context.Context) ([]models.PositionResult, int64, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.valid || !m.now().Before(m.expires) {
		return nil, m.gen, false, nil
	}
	return m.results, m.gen, true, nil
}

// Store keeps results computed during generation gen. Results from an
// older generation are dropped.
func (m *Memory) Store(ctx context.Context, gen int64, results []models.PositionResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.gen {
		return nil
	}
	m.results = results
	m.expires = m.now().Add(m.ttl)
	m.valid = true
	return nil
}

func (m *Memory) Invalidate(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gen++
	m.results = nil
	m.valid = false
	return nil
}
