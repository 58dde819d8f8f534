package records

import (
	"context"
	"sort"
	"sync"

	id "medchain/pkg/domain"
	"medchain/pkg/platform/sentinel"
)

// InMemoryStore keeps records in maps guarded by a RWMutex. It favors clarity
// over performance and mirrors the postgres store's semantics exactly so
// service tests run against it.
type InMemoryStore struct {
	mu      sync.RWMutex
	nextID  uint64
	records map[id.RecordID]Record
	byOwner map[id.Identity][]id.RecordID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		nextID:  1,
		records: make(map[id.RecordID]Record),
		byOwner: make(map[id.Identity][]id.RecordID),
	}
}

func (s *InMemoryStore) Create(_ context.Context, record Record) (id.RecordID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record.ID = id.RecordID(s.nextID)
	s.nextID++
	record.Status = RecordStatusActive

	s.records[record.ID] = record
	s.byOwner[record.Owner] = append(s.byOwner[record.Owner], record.ID)
	return record.ID, nil
}

func (s *InMemoryStore) FindByID(_ context.Context, recordID id.RecordID) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[recordID]
	if !ok {
		return Record{}, sentinel.ErrNotFound
	}
	return record, nil
}

func (s *InMemoryStore) ListByOwner(_ context.Context, owner id.Identity) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.byOwner[owner]
	out := make([]Record, 0, len(ids))
	for _, recordID := range ids {
		out = append(out, s.records[recordID])
	}
	return out, nil
}

func (s *InMemoryStore) ListByIDs(_ context.Context, recordIDs []id.RecordID) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, 0, len(recordIDs))
	for _, recordID := range recordIDs {
		if record, ok := s.records[recordID]; ok {
			out = append(out, record)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemoryStore) ListActive(_ context.Context) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Record
	for _, record := range s.records {
		if !record.Deleted() {
			out = append(out, record)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemoryStore) MarkDeleted(_ context.Context, recordID id.RecordID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[recordID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if record.Deleted() {
		return sentinel.ErrInvalidState
	}
	record.Status = RecordStatusDeleted
	s.records[recordID] = record
	return nil
}
