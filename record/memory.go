package record

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/ByLCY/certify/apperr"
)

// MemoryStore keeps records in process memory. It backs offline rendering
// and tests; records are keyed by identifier without the cert: prefix.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns a store seeded with records.
func NewMemoryStore(records map[string]Record) *MemoryStore {
	m := &MemoryStore{records: make(map[string]Record, len(records))}
	for id, rec := range records {
		m.Put(id, rec)
	}
	return m
}

// LoadFile reads a JSON object of the form {"<id>": {record}, ...}.
func LoadFile(path string) (*MemoryStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read records %s: %w", path, err)
	}
	var records map[string]Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse records %s: %w", path, err)
	}
	return NewMemoryStore(records), nil
}

// Get implements Store.
func (m *MemoryStore) Get(ctx context.Context, id string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	m.mu.RLock()
	rec, ok := m.records[id]
	m.mu.RUnlock()
	if !ok {
		return Record{}, fmt.Errorf("get %s: %w", Key(id), apperr.ErrNotFound)
	}
	return rec, nil
}

// Put stores or replaces a record.
func (m *MemoryStore) Put(id string, rec Record) {
	m.mu.Lock()
	m.records[id] = rec
	m.mu.Unlock()
}

// Len returns the number of records.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}
