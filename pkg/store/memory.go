package store

import (
	"cmp"
	"context"
	"slices"
	"sync"
)

// Memory is an in-process [Store].
type Memory struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewMemory creates an empty memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]*Record)}
}

func (m *Memory) Create(_ context.Context, rec *Record) error {
	prepare(rec)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.ID] = clone(rec)
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, notFound(id)
	}
	return clone(rec), nil
}

func (m *Memory) List(_ context.Context, limit int) ([]*Record, error) {
	m.mu.RLock()
	out := make([]*Record, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, clone(rec))
	}
	m.mu.RUnlock()

	slices.SortFunc(out, func(a, b *Record) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out[:min(len(out), listLimit(limit))], nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return notFound(id)
	}
	delete(m.records, id)
	return nil
}

func (m *Memory) Close(context.Context) error { return nil }

func clone(rec *Record) *Record {
	c := *rec
	c.Cells = slices.Clone(rec.Cells)
	c.Path = slices.Clone(rec.Path)
	return &c
}

var _ Store = (*Memory)(nil)
