//go:build integration

package emergency_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"medchain/internal/emergency"
	id "medchain/pkg/domain"
	"medchain/pkg/platform/sentinel"
	"medchain/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *emergency.PostgresStore
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
	s.store = emergency.NewPostgresStore(s.postgres.DB)
	s.ctx = context.Background()
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(s.ctx, "emergency_providers", "admin_owner"))
}

func (s *PostgresStoreSuite) TestProviderSet() {
	now := time.Now().UTC()

	isProvider, err := s.store.IsProvider(s.ctx, "provider-1")
	s.Require().NoError(err)
	s.False(isProvider)

	s.Require().NoError(s.store.AddProvider(s.ctx, "provider-1", now))
	s.Require().NoError(s.store.AddProvider(s.ctx, "provider-1", now))

	isProvider, err = s.store.IsProvider(s.ctx, "provider-1")
	s.Require().NoError(err)
	s.True(isProvider)

	providers, err := s.store.ListProviders(s.ctx)
	s.Require().NoError(err)
	s.Equal([]id.Identity{"provider-1"}, providers)

	s.Require().NoError(s.store.RemoveProvider(s.ctx, "provider-1"))
	isProvider, err = s.store.IsProvider(s.ctx, "provider-1")
	s.Require().NoError(err)
	s.False(isProvider)
}

func (s *PostgresStoreSuite) TestOwnerSingleton() {
	_, err := s.store.Owner(s.ctx)
	s.ErrorIs(err, sentinel.ErrNotFound)

	now := time.Now().UTC()
	s.Require().NoError(s.store.SetOwner(s.ctx, "admin", now))
	owner, err := s.store.Owner(s.ctx)
	s.Require().NoError(err)
	s.Equal(id.Identity("admin"), owner)

	s.Require().NoError(s.store.SetOwner(s.ctx, "successor", now.Add(time.Second)))
	owner, err = s.store.Owner(s.ctx)
	s.Require().NoError(err)
	s.Equal(id.Identity("successor"), owner)
}
