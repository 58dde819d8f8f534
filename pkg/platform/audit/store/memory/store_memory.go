package memory

import (
	"context"
	"sync"

	id "medchain/pkg/domain"
	audit "medchain/pkg/platform/audit"
)

// InMemoryStore keeps the full event sequence in commit order plus secondary
// indexes by actor and record. Events are value copies; callers cannot mutate
// stored entries.
type InMemoryStore struct {
	mu       sync.RWMutex
	events   []audit.Event
	byActor  map[id.Identity][]int
	byRecord map[id.RecordID][]int
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byActor:  make(map[id.Identity][]int),
		byRecord: make(map[id.RecordID][]int),
	}
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if event.Category == "" {
		event.Category = event.Action.Category()
	}
	idx := len(s.events)
	s.events = append(s.events, event)
	s.byActor[event.Actor] = append(s.byActor[event.Actor], idx)
	if !event.RecordID.IsNil() {
		s.byRecord[event.RecordID] = append(s.byRecord[event.RecordID], idx)
	}
	return nil
}

func (s *InMemoryStore) ListByActor(_ context.Context, actor id.Identity) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(s.byActor[actor]), nil
}

func (s *InMemoryStore) ListByRecord(_ context.Context, recordID id.RecordID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(s.byRecord[recordID]), nil
}

// ListRecent returns the last N events in commit order.
func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := len(s.events) - limit
	if start < 0 {
		start = 0
	}
	return append([]audit.Event{}, s.events[start:]...), nil
}

func (s *InMemoryStore) collect(indexes []int) []audit.Event {
	events := make([]audit.Event, 0, len(indexes))
	for _, idx := range indexes {
		events = append(events, s.events[idx])
	}
	return events
}
