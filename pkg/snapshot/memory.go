package snapshot

import (
	"cmp"
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps snapshots in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]*Snapshot
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]*Snapshot)}
}

// Save implements [Store].
func (m *MemoryStore) Save(ctx context.Context, s *Snapshot) error {
	if err := validate(s); err != nil {
		return err
	}
	c, err := s.Clone()
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[c.ID] = c
	return nil
}

// Get implements [Store].
func (m *MemoryStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	m.mu.RLock()
	s, ok := m.items[id]
	m.mu.RUnlock()
	if !ok {
		return nil, notFound(id)
	}
	return s.Clone()
}

// List implements [Store].
func (m *MemoryStore) List(ctx context.Context) ([]Summary, error) {
	m.mu.RLock()
	out := make([]Summary, 0, len(m.items))
	for _, s := range m.items {
		out = append(out, s.Summary())
	}
	m.mu.RUnlock()
	sortSummaries(out)
	return out, nil
}

// Delete implements [Store].
func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return notFound(id)
	}
	delete(m.items, id)
	return nil
}

// Close implements [Store].
func (m *MemoryStore) Close() error { return nil }

// Kind implements [Store].
func (m *MemoryStore) Kind() string { return "memory" }

// sortSummaries orders newest first; equal times fall back to ID order.
func sortSummaries(s []Summary) {
	slices.SortFunc(s, func(a, b Summary) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

var _ Store = (*MemoryStore)(nil)
