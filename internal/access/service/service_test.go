package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"medchain/internal/access"
	"medchain/internal/emergency"
	"medchain/internal/records"
	id "medchain/pkg/domain"
	dErrors "medchain/pkg/domain-errors"
	"medchain/pkg/platform/audit"
	auditmemory "medchain/pkg/platform/audit/store/memory"
	"medchain/pkg/platform/tx"
)

const (
	patient  = id.Identity("patient-1")
	provider = id.Identity("provider-1")
	emt      = id.Identity("emergency-1")
)

type AccessServiceSuite struct {
	suite.Suite
	svc      *Service
	grants   *access.InMemoryStore
	store    *records.InMemoryStore
	registry *emergency.InMemoryStore
	auditLog *auditmemory.InMemoryStore
	ctx      context.Context
	recID    id.RecordID
}

func TestAccessServiceSuite(t *testing.T) {
	suite.Run(t, new(AccessServiceSuite))
}

func (s *AccessServiceSuite) SetupTest() {
	s.grants = access.NewInMemoryStore()
	s.store = records.NewInMemoryStore()
	s.registry = emergency.NewInMemoryStore()
	s.auditLog = auditmemory.NewInMemoryStore()
	s.ctx = context.Background()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.svc = New(s.grants, s.store, s.registry, s.auditLog, tx.NewSerialRunner(), logger)

	recID, err := s.store.Create(s.ctx, records.Record{
		Owner:     patient,
		IPFSCID:   "QmTestCID123",
		FileName:  "file.pdf",
		FileType:  "pdf",
		FileSize:  1024,
		CreatedAt: time.Now().UTC(),
		Status:    records.RecordStatusActive,
	})
	s.Require().NoError(err)
	s.recID = recID
}

func (s *AccessServiceSuite) TestGrant() {
	s.Run("owner grants access", func() {
		s.Require().NoError(s.svc.Grant(s.ctx, patient, provider, s.recID))
		granted, err := s.svc.HasGrant(s.ctx, s.recID, provider)
		s.Require().NoError(err)
		s.True(granted)
	})

	s.Run("appends a compliance entry with the grantee as subject", func() {
		events, err := s.auditLog.ListByRecord(s.ctx, s.recID)
		s.Require().NoError(err)
		s.Require().Len(events, 1)
		s.Equal(audit.ActionAccessGranted, events[0].Action)
		s.Equal(patient, events[0].Actor)
		s.Equal(provider, events[0].Subject)
	})

	s.Run("repeated grant is a no-op but still audited", func() {
		s.Require().NoError(s.svc.Grant(s.ctx, patient, provider, s.recID))
		events, err := s.auditLog.ListByRecord(s.ctx, s.recID)
		s.Require().NoError(err)
		s.Len(events, 2)
	})

	s.Run("non-owner cannot grant", func() {
		err := s.svc.Grant(s.ctx, provider, "provider-2", s.recID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
		s.Contains(err.Error(), "Only record owner can perform this action")
	})

	s.Run("empty grantee is rejected", func() {
		err := s.svc.Grant(s.ctx, patient, "", s.recID)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown record yields not found", func() {
		err := s.svc.Grant(s.ctx, patient, provider, id.RecordID(999))
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *AccessServiceSuite) TestRevoke() {
	s.Require().NoError(s.svc.Grant(s.ctx, patient, provider, s.recID))

	s.Run("owner revokes access", func() {
		s.Require().NoError(s.svc.Revoke(s.ctx, patient, provider, s.recID))
		granted, err := s.svc.HasGrant(s.ctx, s.recID, provider)
		s.Require().NoError(err)
		s.False(granted)
	})

	s.Run("revoking a never-granted pair is a valid no-op", func() {
		s.Require().NoError(s.svc.Revoke(s.ctx, patient, "provider-2", s.recID))
		events, err := s.auditLog.ListByRecord(s.ctx, s.recID)
		s.Require().NoError(err)
		s.Equal(audit.ActionAccessRevoked, events[len(events)-1].Action)
		s.Equal(id.Identity("provider-2"), events[len(events)-1].Subject)
	})

	s.Run("non-owner cannot revoke", func() {
		err := s.svc.Revoke(s.ctx, provider, provider, s.recID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

func (s *AccessServiceSuite) TestCheck() {
	s.Run("mismatched owner argument always fails", func() {
		allowed, err := s.svc.Check(s.ctx, "someone-else", patient, s.recID)
		s.Require().NoError(err)
		s.False(allowed)
	})

	s.Run("owner always reads their own record", func() {
		allowed, err := s.svc.Check(s.ctx, patient, patient, s.recID)
		s.Require().NoError(err)
		s.True(allowed)
	})

	s.Run("emergency provider bypasses grants", func() {
		s.Require().NoError(s.registry.AddProvider(s.ctx, emt, time.Now()))
		allowed, err := s.svc.Check(s.ctx, patient, emt, s.recID)
		s.Require().NoError(err)
		s.True(allowed)
	})

	s.Run("absent grant defaults to false", func() {
		allowed, err := s.svc.Check(s.ctx, patient, provider, s.recID)
		s.Require().NoError(err)
		s.False(allowed)
	})

	s.Run("stored grant decides", func() {
		s.Require().NoError(s.svc.Grant(s.ctx, patient, provider, s.recID))
		allowed, err := s.svc.Check(s.ctx, patient, provider, s.recID)
		s.Require().NoError(err)
		s.True(allowed)

		s.Require().NoError(s.svc.Revoke(s.ctx, patient, provider, s.recID))
		allowed, err = s.svc.Check(s.ctx, patient, provider, s.recID)
		s.Require().NoError(err)
		s.False(allowed)
	})

	s.Run("deleted record still answers from the grant table", func() {
		s.Require().NoError(s.svc.Grant(s.ctx, patient, provider, s.recID))
		s.Require().NoError(s.store.MarkDeleted(s.ctx, s.recID))
		allowed, err := s.svc.Check(s.ctx, patient, provider, s.recID)
		s.Require().NoError(err)
		s.True(allowed)
	})

	s.Run("unknown record yields not found", func() {
		_, err := s.svc.Check(s.ctx, patient, provider, id.RecordID(999))
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *AccessServiceSuite) TestPermissions() {
	secondID, err := s.store.Create(s.ctx, records.Record{
		Owner:     patient,
		IPFSCID:   "QmSecond",
		FileName:  "scan.png",
		FileType:  "png",
		FileSize:  2048,
		CreatedAt: time.Now().UTC(),
		Status:    records.RecordStatusActive,
	})
	s.Require().NoError(err)

	s.Require().NoError(s.svc.Grant(s.ctx, patient, provider, s.recID))
	s.Require().NoError(s.svc.Grant(s.ctx, patient, "provider-2", s.recID))

	perms, err := s.svc.Permissions(s.ctx, patient)
	s.Require().NoError(err)
	s.Require().Len(perms, 2)
	s.Equal([]id.Identity{provider, "provider-2"}, perms[s.recID])
	s.Empty(perms[secondID])
}
