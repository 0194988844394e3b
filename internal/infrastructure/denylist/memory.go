// Package denylist holds the in-process token denylist used when no Redis is
// configured.
package denylist

import (
	"context"
	"sync"
	"time"
)

// Memory is a process-local denylist. Expired entries are pruned lazily on
// lookup and in bulk every pruneEvery revocations.
type Memory struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
	writes  int
}

const pruneEvery = 256

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]time.Time), now: time.Now}
}

// Revoke reports false when tokenID is already on the list; the existing
// entry keeps its expiry.
func (m *Memory) Revoke(_ context.Context, tokenID string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if until, ok := m.entries[tokenID]; ok && now.Before(until) {
		return false, nil
	}

	m.entries[tokenID] = now.Add(ttl)
	m.writes++
	if m.writes%pruneEvery == 0 {
		m.pruneLocked()
	}
	return true, nil
}

func (m *Memory) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	until, ok := m.entries[tokenID]
	if !ok {
		return false, nil
	}
	if !m.now().Before(until) {
		delete(m.entries, tokenID)
		return false, nil
	}
	return true, nil
}

// Len reports the number of entries currently held, expired or not.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory) pruneLocked() {
	now := m.now()
	for id, until := range m.entries {
		if !now.Before(until) {
			delete(m.entries, id)
		}
	}
}
