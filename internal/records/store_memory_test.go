package records

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "medchain/pkg/domain"
	"medchain/pkg/platform/sentinel"
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

func (s *InMemoryStoreSuite) newRecord(owner id.Identity, cid string) Record {
	return Record{
		Owner:     owner,
		IPFSCID:   cid,
		FileName:  "file.pdf",
		FileType:  "pdf",
		FileSize:  1024,
		CreatedAt: time.Now().UTC(),
		Status:    RecordStatusActive,
	}
}

func (s *InMemoryStoreSuite) TestCreate() {
	s.Run("assigns sequential ids starting at one", func() {
		first, err := s.store.Create(s.ctx, s.newRecord("patient-1", "QmTestCID123"))
		s.Require().NoError(err)
		s.Equal(id.RecordID(1), first)

		second, err := s.store.Create(s.ctx, s.newRecord("patient-1", "QmOther"))
		s.Require().NoError(err)
		s.Equal(id.RecordID(2), second)
	})

	s.Run("ids are not reused after deletion", func() {
		recID, err := s.store.Create(s.ctx, s.newRecord("patient-2", "QmA"))
		s.Require().NoError(err)
		s.Require().NoError(s.store.MarkDeleted(s.ctx, recID))

		next, err := s.store.Create(s.ctx, s.newRecord("patient-2", "QmB"))
		s.Require().NoError(err)
		s.Greater(uint64(next), uint64(recID))
	})
}

func (s *InMemoryStoreSuite) TestFindByID() {
	recID, err := s.store.Create(s.ctx, s.newRecord("patient-1", "QmTestCID123"))
	s.Require().NoError(err)

	s.Run("returns stored record", func() {
		rec, err := s.store.FindByID(s.ctx, recID)
		s.Require().NoError(err)
		s.Equal("QmTestCID123", rec.IPFSCID)
		s.Equal(id.Identity("patient-1"), rec.Owner)
	})

	s.Run("returns deleted records too", func() {
		s.Require().NoError(s.store.MarkDeleted(s.ctx, recID))
		rec, err := s.store.FindByID(s.ctx, recID)
		s.Require().NoError(err)
		s.True(rec.Deleted())
	})

	s.Run("unknown id yields ErrNotFound", func() {
		_, err := s.store.FindByID(s.ctx, id.RecordID(999))
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *InMemoryStoreSuite) TestListByOwner() {
	s.Run("returns records in upload order including deleted", func() {
		first, err := s.store.Create(s.ctx, s.newRecord("patient-1", "QmFirst"))
		s.Require().NoError(err)
		second, err := s.store.Create(s.ctx, s.newRecord("patient-1", "QmSecond"))
		s.Require().NoError(err)
		_, err = s.store.Create(s.ctx, s.newRecord("patient-2", "QmOther"))
		s.Require().NoError(err)
		s.Require().NoError(s.store.MarkDeleted(s.ctx, first))

		recs, err := s.store.ListByOwner(s.ctx, "patient-1")
		s.Require().NoError(err)
		s.Require().Len(recs, 2)
		s.Equal(first, recs[0].ID)
		s.True(recs[0].Deleted())
		s.Equal(second, recs[1].ID)
	})

	s.Run("unknown owner yields empty slice", func() {
		recs, err := s.store.ListByOwner(s.ctx, "nobody")
		s.Require().NoError(err)
		s.Empty(recs)
	})
}

func (s *InMemoryStoreSuite) TestListByIDs() {
	first, err := s.store.Create(s.ctx, s.newRecord("patient-1", "QmA"))
	s.Require().NoError(err)
	second, err := s.store.Create(s.ctx, s.newRecord("patient-2", "QmB"))
	s.Require().NoError(err)

	s.Run("returns named records ascending and skips unknown ids", func() {
		recs, err := s.store.ListByIDs(s.ctx, []id.RecordID{second, id.RecordID(42), first})
		s.Require().NoError(err)
		s.Require().Len(recs, 2)
		s.Equal(first, recs[0].ID)
		s.Equal(second, recs[1].ID)
	})

	s.Run("empty input yields empty slice", func() {
		recs, err := s.store.ListByIDs(s.ctx, nil)
		s.Require().NoError(err)
		s.Empty(recs)
	})
}

func (s *InMemoryStoreSuite) TestListActive() {
	first, err := s.store.Create(s.ctx, s.newRecord("patient-1", "QmA"))
	s.Require().NoError(err)
	second, err := s.store.Create(s.ctx, s.newRecord("patient-2", "QmB"))
	s.Require().NoError(err)
	s.Require().NoError(s.store.MarkDeleted(s.ctx, first))

	recs, err := s.store.ListActive(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(recs, 1)
	s.Equal(second, recs[0].ID)
}

func (s *InMemoryStoreSuite) TestMarkDeleted() {
	recID, err := s.store.Create(s.ctx, s.newRecord("patient-1", "QmA"))
	s.Require().NoError(err)

	s.Run("transitions record to deleted", func() {
		s.Require().NoError(s.store.MarkDeleted(s.ctx, recID))
		rec, err := s.store.FindByID(s.ctx, recID)
		s.Require().NoError(err)
		s.Equal(RecordStatusDeleted, rec.Status)
	})

	s.Run("second delete yields ErrInvalidState", func() {
		s.ErrorIs(s.store.MarkDeleted(s.ctx, recID), sentinel.ErrInvalidState)
	})

	s.Run("unknown id yields ErrNotFound", func() {
		s.ErrorIs(s.store.MarkDeleted(s.ctx, id.RecordID(999)), sentinel.ErrNotFound)
	})
}
