package testkit

import (
	"context"
	"sync"

	"leadboard/domain/core"
	"leadboard/domain/leads"
	"leadboard/ports"
)

// MemoryStore is an in-memory ports.DatasetStore for tests
type MemoryStore struct {
	mu    sync.RWMutex
	ds    *leads.Dataset
	saves int
}

var _ ports.DatasetStore = (*MemoryStore)(nil)

// NewMemoryStore creates a store holding ds; nil means no dataset yet
func NewMemoryStore(ds *leads.Dataset) *MemoryStore {
	return &MemoryStore{ds: ds}
}

func (m *MemoryStore) Load(ctx context.Context) (*leads.Dataset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ds == nil {
		return nil, core.ErrDatasetAbsent
	}
	return m.ds, nil
}

func (m *MemoryStore) Save(ctx context.Context, ds *leads.Dataset) error {
	if err := ds.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ds = ds
	m.saves++
	return nil
}

func (m *MemoryStore) Info(ctx context.Context) (*ports.DatasetInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	info := &ports.DatasetInfo{Path: "memory"}
	if m.ds != nil {
		info.Exists = true
		info.Rows = m.ds.Len()
		info.Columns = m.ds.Columns
	}
	return info, nil
}

// Current returns the stored dataset
func (m *MemoryStore) Current() *leads.Dataset {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ds
}

// Saves counts successful saves
func (m *MemoryStore) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}
