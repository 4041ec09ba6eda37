// Package data provides persistence for the medicine reminder: a
// file-backed JSON blob holding the record sequence and the last reset day,
// and an in-memory container with the same contract.
package data

import (
	"sync/atomic"

	"github.com/giygas/medreminder/interfaces"
	"github.com/giygas/medreminder/medicine"
)

// Compile-time check to ensure MemoryStore implements Store
var _ interfaces.Store = (*MemoryStore)(nil)

// MemoryStore holds the blob in atomic values. Every Save swaps in a fresh
// copy so later mutations by the caller never leak into the store.
type MemoryStore struct {
	medicines atomic.Value // []medicine.Record
	lastReset atomic.Value // string
	saves     atomic.Int64
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	ms := &MemoryStore{}
	ms.medicines.Store(make([]medicine.Record, 0))
	ms.lastReset.Store("")
	return ms
}

// Load returns a copy of the stored records
func (ms *MemoryStore) Load() ([]medicine.Record, error) {
	if v := ms.medicines.Load(); v != nil {
		if records, ok := v.([]medicine.Record); ok {
			return medicine.CloneAll(records), nil
		}
	}
	return []medicine.Record{}, nil
}

// Save replaces the stored records
func (ms *MemoryStore) Save(records []medicine.Record) error {
	ms.medicines.Store(medicine.CloneAll(records))
	ms.saves.Add(1)
	return nil
}

// LastReset returns the last reset day
func (ms *MemoryStore) LastReset() (string, error) {
	if v := ms.lastReset.Load(); v != nil {
		if day, ok := v.(string); ok {
			return day, nil
		}
	}
	return "", nil
}

// SetLastReset stores the last reset day
func (ms *MemoryStore) SetLastReset(day string) error {
	ms.lastReset.Store(day)
	return nil
}

// Saves returns how many times Save was called
func (ms *MemoryStore) Saves() int64 {
	return ms.saves.Load()
}
