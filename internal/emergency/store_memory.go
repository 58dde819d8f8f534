package emergency

import (
	"context"
	"sort"
	"sync"
	"time"

	id "medchain/pkg/domain"
	"medchain/pkg/platform/sentinel"
)

// InMemoryStore keeps the provider set and owner identity under one RWMutex.
type InMemoryStore struct {
	mu        sync.RWMutex
	providers map[id.Identity]time.Time
	owner     id.Identity
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{providers: make(map[id.Identity]time.Time)}
}

func (s *InMemoryStore) AddProvider(_ context.Context, identity id.Identity, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.providers[identity]; !ok {
		s.providers[identity] = at
	}
	return nil
}

func (s *InMemoryStore) RemoveProvider(_ context.Context, identity id.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.providers, identity)
	return nil
}

func (s *InMemoryStore) IsProvider(_ context.Context, identity id.Identity) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.providers[identity]
	return ok, nil
}

func (s *InMemoryStore) ListProviders(_ context.Context) ([]id.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]id.Identity, 0, len(s.providers))
	for identity := range s.providers {
		out = append(out, identity)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (s *InMemoryStore) Owner(_ context.Context) (id.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.owner.IsNil() {
		return "", sentinel.ErrNotFound
	}
	return s.owner, nil
}

func (s *InMemoryStore) SetOwner(_ context.Context, owner id.Identity, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.owner = owner
	return nil
}
