package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	id "medchain/pkg/domain"
	"medchain/pkg/platform/audit"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
}

func (s *InMemoryStoreSuite) append(action audit.Action, actor id.Identity, recordID id.RecordID) audit.Event {
	event := audit.Event{
		ID:        uuid.New(),
		Action:    action,
		Timestamp: time.Now().UTC(),
		Actor:     actor,
		RecordID:  recordID,
	}
	s.Require().NoError(s.store.Append(s.ctx, event))
	return event
}

func (s *InMemoryStoreSuite) TestAppend() {
	s.Run("derives category from action when unset", func() {
		s.append(audit.ActionUpload, "patient-1", 1)
		events, err := s.store.ListByActor(s.ctx, "patient-1")
		s.Require().NoError(err)
		s.Require().Len(events, 1)
		s.Equal(audit.CategoryCompliance, events[0].Category)
	})

	s.Run("keeps an explicit category", func() {
		event := audit.Event{
			ID:        uuid.New(),
			Action:    audit.ActionRecordViewed,
			Category:  audit.CategoryOperations,
			Timestamp: time.Now().UTC(),
			Actor:     "provider-1",
			RecordID:  1,
		}
		s.Require().NoError(s.store.Append(s.ctx, event))
		events, err := s.store.ListByActor(s.ctx, "provider-1")
		s.Require().NoError(err)
		s.Require().Len(events, 1)
		s.Equal(audit.CategoryOperations, events[0].Category)
	})
}

func (s *InMemoryStoreSuite) TestListByActor() {
	first := s.append(audit.ActionUpload, "patient-1", 1)
	second := s.append(audit.ActionAccessGranted, "patient-1", 1)
	s.append(audit.ActionUpload, "patient-2", 2)

	events, err := s.store.ListByActor(s.ctx, "patient-1")
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(first.ID, events[0].ID)
	s.Equal(second.ID, events[1].ID)
}

func (s *InMemoryStoreSuite) TestListByRecord() {
	first := s.append(audit.ActionUpload, "patient-1", 1)
	s.append(audit.ActionUpload, "patient-2", 2)
	second := s.append(audit.ActionAccessGranted, "patient-1", 1)
	third := s.append(audit.ActionRecordViewed, "provider-1", 1)

	events, err := s.store.ListByRecord(s.ctx, 1)
	s.Require().NoError(err)
	s.Require().Len(events, 3)
	s.Equal(first.ID, events[0].ID)
	s.Equal(second.ID, events[1].ID)
	s.Equal(third.ID, events[2].ID)
}

func (s *InMemoryStoreSuite) TestListRecent() {
	var appended []audit.Event
	for range 5 {
		appended = append(appended, s.append(audit.ActionUpload, "patient-1", 1))
	}

	s.Run("returns the last N in commit order", func() {
		events, err := s.store.ListRecent(s.ctx, 3)
		s.Require().NoError(err)
		s.Require().Len(events, 3)
		s.Equal(appended[2].ID, events[0].ID)
		s.Equal(appended[4].ID, events[2].ID)
	})

	s.Run("limit above length returns everything", func() {
		events, err := s.store.ListRecent(s.ctx, 100)
		s.Require().NoError(err)
		s.Len(events, 5)
	})
}
