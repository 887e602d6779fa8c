package record

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemStore is an in-memory Store used by tests and the demo
// application. It keeps insertion order per table so List output is
// deterministic.
type MemStore struct {
	mu      sync.RWMutex
	records map[string]*Record
	order   map[string][]string // tableID -> record IDs in insertion order
	now     func() time.Time
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		records: make(map[string]*Record),
		order:   make(map[string][]string),
		now:     time.Now,
	}
}

// List returns copies of the records of one table in insertion order.
func (s *MemStore) List(tableID string) []*Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.order[tableID]
	out := make([]*Record, 0, len(ids))
	for _, id := range ids {
		if rec, ok := s.records[id]; ok {
			out = append(out, rec.Clone())
		}
	}
	return out
}

// Get returns a copy of the record with the given id, or nil.
func (s *MemStore) Get(id string) *Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil
	}
	return rec.Clone()
}

// Add inserts a record, assigning a fresh ID when empty.
func (s *MemStore) Add(rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if _, exists := s.records[rec.ID]; exists {
		return fmt.Errorf("record %s already exists", rec.ID)
	}

	stored := rec.Clone()
	stored.CreatedAt = s.now()
	stored.UpdatedAt = stored.CreatedAt
	s.records[stored.ID] = stored
	s.order[stored.TableID] = append(s.order[stored.TableID], stored.ID)

	rec.CreatedAt = stored.CreatedAt
	rec.UpdatedAt = stored.UpdatedAt
	return nil
}

// Update replaces an existing record, preserving its creation time.
func (s *MemStore) Update(rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.records[rec.ID]
	if !ok {
		return fmt.Errorf("record %s not found", rec.ID)
	}

	stored := rec.Clone()
	stored.TableID = old.TableID
	stored.CreatedAt = old.CreatedAt
	stored.UpdatedAt = s.now()
	s.records[rec.ID] = stored
	return nil
}

// Delete removes a record.
func (s *MemStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return fmt.Errorf("record %s not found", id)
	}
	delete(s.records, id)

	ids := s.order[rec.TableID]
	for i, rid := range ids {
		if rid == id {
			s.order[rec.TableID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return nil
}
