package access

import (
	"context"
	"sort"
	"sync"
	"time"

	id "medchain/pkg/domain"
)

type pairKey struct {
	recordID id.RecordID
	grantee  id.Identity
}

// InMemoryStore keeps grants in a map keyed by (record, grantee). A per-record
// ordered grantee list preserves grant-insertion order for permission views.
type InMemoryStore struct {
	mu       sync.RWMutex
	grants   map[pairKey]Grant
	byRecord map[id.RecordID][]id.Identity
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		grants:   make(map[pairKey]Grant),
		byRecord: make(map[id.RecordID][]id.Identity),
	}
}

func (s *InMemoryStore) Set(_ context.Context, recordID id.RecordID, grantee id.Identity, granted bool, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey{recordID: recordID, grantee: grantee}
	if _, seen := s.grants[key]; !seen {
		s.byRecord[recordID] = append(s.byRecord[recordID], grantee)
	}
	s.grants[key] = Grant{RecordID: recordID, Grantee: grantee, Granted: granted, UpdatedAt: at}
	return nil
}

func (s *InMemoryStore) HasGrant(_ context.Context, recordID id.RecordID, grantee id.Identity) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	grant, ok := s.grants[pairKey{recordID: recordID, grantee: grantee}]
	return ok && grant.Granted, nil
}

func (s *InMemoryStore) ListGranteesByRecord(_ context.Context, recordID id.RecordID) ([]id.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grantedFor(recordID), nil
}

func (s *InMemoryStore) ListGranteesByRecords(_ context.Context, recordIDs []id.RecordID) (map[id.RecordID][]id.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[id.RecordID][]id.Identity, len(recordIDs))
	for _, recordID := range recordIDs {
		out[recordID] = s.grantedFor(recordID)
	}
	return out, nil
}

func (s *InMemoryStore) ListRecordIDsByGrantee(_ context.Context, grantee id.Identity) ([]id.RecordID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []id.RecordID
	for key, grant := range s.grants {
		if key.grantee == grantee && grant.Granted {
			out = append(out, key.recordID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// grantedFor must be called with the read lock held.
func (s *InMemoryStore) grantedFor(recordID id.RecordID) []id.Identity {
	out := []id.Identity{}
	for _, grantee := range s.byRecord[recordID] {
		if grant := s.grants[pairKey{recordID: recordID, grantee: grantee}]; grant.Granted {
			out = append(out, grantee)
		}
	}
	return out
}
