package memory

import (
	"context"
	"sync"
	"time"
)

// InMemory keeps memories in a map for the lifetime of the process.
type InMemory struct {
	mu      sync.RWMutex
	entries map[string]Entry
	now     func() time.Time
}

func NewInMemory() *InMemory {
	return &InMemory{entries: make(map[string]Entry), now: time.Now}
}

func (m *InMemory) Name() string { return "memory" }

func (m *InMemory) Store(_ context.Context, key, content string, category Category) error {
	if err := validateEntry(key, content); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	created := now
	if old, ok := m.entries[key]; ok {
		created = old.CreatedAt
	}
	m.entries[key] = Entry{Key: key, Content: content, Category: category, CreatedAt: created, UpdatedAt: now}
	return nil
}

func (m *InMemory) Recall(_ context.Context, query string, limit int) ([]Entry, error) {
	m.mu.RLock()
	entries := make([]Entry, 0, len(m.entries))
	for _, e := range m.entries {
		entries = append(entries, e)
	}
	m.mu.RUnlock()
	return rank(entries, query, limit), nil
}

func (m *InMemory) Get(_ context.Context, key string) (Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[key]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return e, nil
}

func (m *InMemory) Forget(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[key]
	delete(m.entries, key)
	return ok, nil
}

func (m *InMemory) Count(context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries), nil
}

func (m *InMemory) Close() error { return nil }
