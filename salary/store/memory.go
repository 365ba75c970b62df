// Package store provides in-memory CityTaxTable implementations.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/salary-engine/salary"
)

// =============================================================================
// MEMORY STORE - In-memory city tax table (for testing/dev)
// =============================================================================

type Memory struct {
	mu      sync.RWMutex
	records map[string]salary.CityTaxRecord
}

func NewMemory(records ...salary.CityTaxRecord) *Memory {
	m := &Memory{records: make(map[string]salary.CityTaxRecord, len(records))}
	for _, r := range records {
		m.records[r.City] = r
	}
	return m
}

// LookupCity returns a copy of the stored record, or nil if absent.
func (m *Memory) LookupCity(_ context.Context, city string) (*salary.CityTaxRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.records[city]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

// Put creates or replaces the record for r.City.
func (m *Memory) Put(_ context.Context, r salary.CityTaxRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = time.Now().UTC()
	}
	m.records[r.City] = r
	return nil
}

// Delete removes the record for city. Returns false if there was none.
func (m *Memory) Delete(_ context.Context, city string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[city]; !ok {
		return false
	}
	delete(m.records, city)
	return true
}

// List returns all records ordered by city.
func (m *Memory) List(_ context.Context) []salary.CityTaxRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]salary.CityTaxRecord, 0, len(m.records))
	for _, r := range m.records {
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].City < result[j].City })
	return result
}
