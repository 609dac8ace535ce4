package repository

import (
	"context"
	"sync"
	"time"
)

// MemoryStore satisfies both the preferences and the session repository
// contracts with process-local maps. Used when no external backend is
// configured and in tests.
type MemoryStore struct {
	mu      sync.Mutex
	data    map[string]map[string]string
	expires map[string]time.Time
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:    map[string]map[string]string{},
		expires: map[string]time.Time{},
		now:     time.Now,
	}
}

// Load returns a copy of scope's entries.
func (m *MemoryStore) Load(ctx context.Context, scope string) (map[string]string, error) {
	return m.Get(ctx, scope)
}

// Save merges entries into scope.
func (m *MemoryStore) Save(ctx context.Context, scope string, entries map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.data[scope]
	if !ok {
		cur = map[string]string{}
		m.data[scope] = cur
	}
	for k, v := range entries {
		cur[k] = v
	}
	return nil
}

// Put replaces key's entries; a positive ttl makes them expire.
func (m *MemoryStore) Put(ctx context.Context, key string, entries map[string]string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make(map[string]string, len(entries))
	for k, v := range entries {
		cp[k] = v
	}
	m.data[key] = cp
	if ttl > 0 {
		m.expires[key] = m.now().Add(ttl)
	} else {
		delete(m.expires, key)
	}
	return nil
}

// Get returns a copy of key's entries, or an empty map when missing or
// expired.
func (m *MemoryStore) Get(ctx context.Context, key string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if exp, ok := m.expires[key]; ok && !m.now().Before(exp) {
		delete(m.data, key)
		delete(m.expires, key)
	}
	out := map[string]string{}
	for k, v := range m.data[key] {
		out[k] = v
	}
	return out, nil
}

// Delete removes key.
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	delete(m.expires, key)
	return nil
}
