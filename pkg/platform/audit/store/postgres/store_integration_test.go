//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	id "medchain/pkg/domain"
	"medchain/pkg/platform/audit"
	auditpostgres "medchain/pkg/platform/audit/store/postgres"
	"medchain/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *auditpostgres.Store
	ctx      context.Context
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = auditpostgres.New(s.postgres.DB)
	s.ctx = context.Background()
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(s.ctx, "audit_events", "audit_outbox"))
}

func (s *PostgresStoreSuite) append(action audit.Action, actor id.Identity, recordID id.RecordID, at time.Time) audit.Event {
	event := audit.Event{
		ID:        uuid.New(),
		Action:    action,
		Timestamp: at,
		Actor:     actor,
		RecordID:  recordID,
	}
	s.Require().NoError(s.store.Append(s.ctx, event))
	return event
}

func (s *PostgresStoreSuite) TestAppendWritesEventAndOutbox() {
	s.append(audit.ActionUpload, "patient-1", 1, time.Now().UTC())

	var eventCount, outboxCount int
	s.Require().NoError(s.postgres.DB.QueryRowContext(s.ctx,
		"SELECT count(*) FROM audit_events").Scan(&eventCount))
	s.Require().NoError(s.postgres.DB.QueryRowContext(s.ctx,
		"SELECT count(*) FROM audit_outbox").Scan(&outboxCount))

	s.Equal(1, eventCount)
	s.Equal(1, outboxCount)
}

func (s *PostgresStoreSuite) TestListByActorAndRecord() {
	base := time.Now().UTC().Truncate(time.Microsecond)
	first := s.append(audit.ActionUpload, "patient-1", 1, base)
	second := s.append(audit.ActionAccessGranted, "patient-1", 1, base.Add(time.Second))
	s.append(audit.ActionUpload, "patient-2", 2, base.Add(2*time.Second))

	byActor, err := s.store.ListByActor(s.ctx, "patient-1")
	s.Require().NoError(err)
	s.Require().Len(byActor, 2)
	s.Equal(first.ID, byActor[0].ID)
	s.Equal(second.ID, byActor[1].ID)

	byRecord, err := s.store.ListByRecord(s.ctx, 1)
	s.Require().NoError(err)
	s.Require().Len(byRecord, 2)
	s.Equal(first.ID, byRecord[0].ID)
}

func (s *PostgresStoreSuite) TestListRecent() {
	base := time.Now().UTC().Truncate(time.Microsecond)
	var appended []audit.Event
	for i := range 5 {
		appended = append(appended, s.append(audit.ActionUpload, "patient-1", 1, base.Add(time.Duration(i)*time.Second)))
	}

	recent, err := s.store.ListRecent(s.ctx, 3)
	s.Require().NoError(err)
	s.Require().Len(recent, 3)
	s.Equal(appended[2].ID, recent[0].ID)
	s.Equal(appended[4].ID, recent[2].ID)
}
