// Package emergency owns the global override set and the administrative
// owner identity that governs it.
package emergency

import (
	"context"
	"time"

	id "medchain/pkg/domain"
)

// Store persists the emergency-provider set and the single administrative
// owner. Implementations return sentinel errors for infrastructure facts;
// role checks happen in the service.
type Store interface {
	AddProvider(ctx context.Context, identity id.Identity, at time.Time) error
	RemoveProvider(ctx context.Context, identity id.Identity) error
	IsProvider(ctx context.Context, identity id.Identity) (bool, error)
	ListProviders(ctx context.Context) ([]id.Identity, error)

	// Owner returns the current administrative owner, or sentinel.ErrNotFound
	// before the registry is seeded.
	Owner(ctx context.Context) (id.Identity, error)
	SetOwner(ctx context.Context, owner id.Identity, at time.Time) error
}
