package cache

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/cloudshift-ai/cloudshift"
)

// MemoryStore is a thread-safe in-process store. Useful for tests and for
// ephemeral pipelines where a total cache loss on restart is acceptable.
type MemoryStore struct {
	records map[string]*Record
	mu      sync.RWMutex
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

// Lookup returns the record for key, incrementing its hit count.
func (s *MemoryStore) Lookup(ctx context.Context, key string) (*Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok {
		return nil, false
	}
	rec.HitCount++
	return rec.Clone(), true
}

// Put stores a deep copy of the record so later caller mutations cannot
// reach the stored state.
func (s *MemoryStore) Put(ctx context.Context, key string, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = rec.Clone()
	return nil
}

// AppendEdit appends to the record's edit history and marks it user-edited.
func (s *MemoryStore) AppendEdit(ctx context.Context, key string, entry cloudshift.EditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok {
		return &cloudshift.NotFoundError{Key: key}
	}
	entry.Previous = entry.Previous.Clone()
	entry.New = entry.New.Clone()
	rec.EditHistory = append(rec.EditHistory, entry)
	rec.UserEdited = true
	return nil
}

// Stats reports counts and the JSON-encoded size of the stored records.
func (s *MemoryStore) Stats(ctx context.Context) (cloudshift.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats cloudshift.Stats
	stats.TotalRecords = len(s.records)
	for _, rec := range s.records {
		if rec.UserEdited {
			stats.EditedCount++
		}
		if raw, err := json.Marshal(rec); err == nil {
			stats.TotalSizeBytes += int64(len(raw))
		}
	}
	return stats, nil
}

// Clear removes records or resets edit history per scope.
func (s *MemoryStore) Clear(ctx context.Context, scope cloudshift.ClearScope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch scope {
	case cloudshift.ClearAll, cloudshift.ClearTranslations:
		s.records = make(map[string]*Record)
	case cloudshift.ClearEdits:
		for _, rec := range s.records {
			rec.EditHistory = nil
			rec.UserEdited = false
		}
	}
	return nil
}

// Records returns deep copies of every record, keyed by cache key.
func (s *MemoryStore) Records(ctx context.Context) (map[string]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]*Record, len(s.records))
	for key, rec := range s.records {
		out[key] = rec.Clone()
	}
	return out, nil
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Close releases nothing for a memory store.
func (s *MemoryStore) Close() error {
	return nil
}

// Verify MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)
