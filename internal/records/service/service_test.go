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

type RecordServiceSuite struct {
	suite.Suite
	svc      *Service
	store    *records.InMemoryStore
	grants   *access.InMemoryStore
	registry *emergency.InMemoryStore
	auditLog *auditmemory.InMemoryStore
	ctx      context.Context
}

func TestRecordServiceSuite(t *testing.T) {
	suite.Run(t, new(RecordServiceSuite))
}

func (s *RecordServiceSuite) SetupTest() {
	s.store = records.NewInMemoryStore()
	s.grants = access.NewInMemoryStore()
	s.registry = emergency.NewInMemoryStore()
	s.auditLog = auditmemory.NewInMemoryStore()
	s.ctx = context.Background()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.svc = New(s.store, s.grants, s.registry, s.auditLog, tx.NewSerialRunner(), logger)
}

func (s *RecordServiceSuite) upload(caller id.Identity) records.Record {
	rec, err := s.svc.Upload(s.ctx, caller, records.UploadInput{
		IPFSCID:     "QmTestCID123",
		FileName:    "file.pdf",
		FileType:    "pdf",
		FileSize:    1024,
		RecordHash:  "hash123",
		Description: "Test medical record",
	})
	s.Require().NoError(err)
	return rec
}

func (s *RecordServiceSuite) TestUpload() {
	s.Run("registers record with caller as owner", func() {
		rec := s.upload(patient)
		s.Equal(id.RecordID(1), rec.ID)
		s.Equal(patient, rec.Owner)
		s.Equal("QmTestCID123", rec.IPFSCID)
		s.Equal(records.RecordStatusActive, rec.Status)
	})

	s.Run("appends a compliance audit entry", func() {
		events, err := s.auditLog.ListByActor(s.ctx, patient)
		s.Require().NoError(err)
		s.Require().Len(events, 1)
		s.Equal(audit.ActionUpload, events[0].Action)
		s.Equal(audit.CategoryCompliance, events[0].Category)
		s.Equal("file.pdf", events[0].Detail)
	})

	s.Run("rejects an empty content identifier", func() {
		_, err := s.svc.Upload(s.ctx, patient, records.UploadInput{FileSize: 1024})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Contains(err.Error(), "IPFS CID cannot be empty")
	})

	s.Run("rejects a missing caller identity", func() {
		_, err := s.svc.Upload(s.ctx, "", records.UploadInput{IPFSCID: "QmX", FileSize: 1})
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func (s *RecordServiceSuite) TestPatientRecords() {
	first := s.upload(patient)
	second := s.upload(patient)
	s.upload(provider)
	s.Require().NoError(s.svc.Delete(s.ctx, patient, first.ID))

	list, err := s.svc.PatientRecords(s.ctx, patient)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(first.ID, list[0].ID)
	s.True(list[0].Deleted())
	s.Equal(second.ID, list[1].ID)
}

func (s *RecordServiceSuite) TestDetails() {
	rec := s.upload(patient)

	s.Run("owner reads own record", func() {
		got, err := s.svc.Details(s.ctx, patient, rec.ID)
		s.Require().NoError(err)
		s.Equal(rec.ID, got.ID)
	})

	s.Run("successful read appends an operations entry", func() {
		events, err := s.auditLog.ListByRecord(s.ctx, rec.ID)
		s.Require().NoError(err)
		s.Require().Len(events, 2)
		s.Equal(audit.ActionRecordViewed, events[1].Action)
		s.Equal(audit.CategoryOperations, events[1].Category)
	})

	s.Run("stranger without a grant is denied", func() {
		_, err := s.svc.Details(s.ctx, provider, rec.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
		s.Contains(err.Error(), "access denied")
	})

	s.Run("grantee reads the record", func() {
		s.Require().NoError(s.grants.Set(s.ctx, rec.ID, provider, true, time.Now()))
		got, err := s.svc.Details(s.ctx, provider, rec.ID)
		s.Require().NoError(err)
		s.Equal(rec.ID, got.ID)
	})

	s.Run("revoked grantee is denied again", func() {
		s.Require().NoError(s.grants.Set(s.ctx, rec.ID, provider, false, time.Now()))
		_, err := s.svc.Details(s.ctx, provider, rec.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("emergency provider bypasses grants", func() {
		s.Require().NoError(s.registry.AddProvider(s.ctx, emt, time.Now()))
		got, err := s.svc.Details(s.ctx, emt, rec.ID)
		s.Require().NoError(err)
		s.Equal(rec.ID, got.ID)
	})

	s.Run("unknown record yields not found", func() {
		_, err := s.svc.Details(s.ctx, patient, id.RecordID(999))
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *RecordServiceSuite) TestCID() {
	rec := s.upload(patient)

	cid, err := s.svc.CID(s.ctx, patient, rec.ID)
	s.Require().NoError(err)
	s.Equal("QmTestCID123", cid)

	events, err := s.auditLog.ListByRecord(s.ctx, rec.ID)
	s.Require().NoError(err)
	s.Equal(audit.ActionCIDAccessed, events[len(events)-1].Action)
}

func (s *RecordServiceSuite) TestDelete() {
	rec := s.upload(patient)

	s.Run("non-owner cannot delete", func() {
		err := s.svc.Delete(s.ctx, provider, rec.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
		s.Contains(err.Error(), "Only record owner can perform this action")
	})

	s.Run("owner deletes and an audit entry is appended", func() {
		s.Require().NoError(s.svc.Delete(s.ctx, patient, rec.ID))
		events, err := s.auditLog.ListByRecord(s.ctx, rec.ID)
		s.Require().NoError(err)
		s.Equal(audit.ActionDelete, events[len(events)-1].Action)
	})

	s.Run("deletion blocks every subsequent read", func() {
		_, err := s.svc.Details(s.ctx, patient, rec.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeRecordDeleted))
		s.Contains(err.Error(), "Record has been deleted")

		s.Require().NoError(s.registry.AddProvider(s.ctx, emt, time.Now()))
		_, err = s.svc.Details(s.ctx, emt, rec.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeRecordDeleted))
	})

	s.Run("second delete surfaces the terminal state", func() {
		err := s.svc.Delete(s.ctx, patient, rec.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeRecordDeleted))
	})

	s.Run("unknown record yields not found", func() {
		err := s.svc.Delete(s.ctx, patient, id.RecordID(999))
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *RecordServiceSuite) TestSharedWithProvider() {
	first := s.upload(patient)
	second := s.upload(patient)
	third := s.upload("patient-2")

	s.Require().NoError(s.grants.Set(s.ctx, first.ID, provider, true, time.Now()))
	s.Require().NoError(s.grants.Set(s.ctx, second.ID, provider, true, time.Now()))
	s.Require().NoError(s.svc.Delete(s.ctx, patient, second.ID))

	s.Run("grantee sees granted non-deleted records", func() {
		list, err := s.svc.SharedWithProvider(s.ctx, provider)
		s.Require().NoError(err)
		s.Require().Len(list, 1)
		s.Equal(first.ID, list[0].ID)
	})

	s.Run("emergency provider sees every active record", func() {
		s.Require().NoError(s.registry.AddProvider(s.ctx, emt, time.Now()))
		list, err := s.svc.SharedWithProvider(s.ctx, emt)
		s.Require().NoError(err)
		s.Require().Len(list, 2)
		s.Equal(first.ID, list[0].ID)
		s.Equal(third.ID, list[1].ID)
	})

	s.Run("identity with no grants sees nothing", func() {
		list, err := s.svc.SharedWithProvider(s.ctx, "provider-2")
		s.Require().NoError(err)
		s.Empty(list)
	})
}
