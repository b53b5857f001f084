package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// MemoryStore keeps snapshots in process memory. Snapshots are stored
// encoded, so callers never share state with the store.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
	ttl  time.Duration
}

// NewMemoryStore creates an empty store. A ttl of zero keeps sessions
// forever.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte), ttl: ttl}
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Snapshot, error) {
	m.mu.RLock()
	raw, ok := m.data[id]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if snap.IsExpired() {
		m.mu.Lock()
		delete(m.data, id)
		m.mu.Unlock()
		return nil, nil
	}
	return &snap, nil
}

func (m *MemoryStore) Set(_ context.Context, snap *Snapshot) error {
	stored := *snap
	stored.ExpiresAt = expiry(m.ttl)
	raw, err := json.Marshal(&stored)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	m.mu.Lock()
	m.data[snap.ID] = raw
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.data, id)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored sessions, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

func (m *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
