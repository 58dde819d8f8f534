// Package service implements emergency-registry management and operator
// succession.
package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"medchain/internal/emergency"
	id "medchain/pkg/domain"
	dErrors "medchain/pkg/domain-errors"
	audit "medchain/pkg/platform/audit"
	"medchain/pkg/platform/sentinel"
	"medchain/pkg/platform/tx"
	"medchain/pkg/requestcontext"
)

const msgNotAdminOwner = "only administrative owner can perform this action"

// Service guards every mutation behind the administrative-owner check. The
// administrative owner is a distinct role from any record's owner; the two
// are never conflated.
type Service struct {
	store    emergency.Store
	auditLog audit.Store
	runner   tx.Runner
	logger   *slog.Logger
	tracer   trace.Tracer
}

func New(store emergency.Store, auditLog audit.Store, runner tx.Runner, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		auditLog: auditLog,
		runner:   runner,
		logger:   logger,
		tracer:   otel.Tracer("medchain/emergency"),
	}
}

// Seed installs the initial administrative owner if none exists yet. Called
// once at startup; succession afterwards goes through TransferOwnership only.
func (s *Service) Seed(ctx context.Context, owner id.Identity) error {
	if owner.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "initial owner cannot be empty")
	}
	return s.runner.RunInTx(ctx, func(txCtx context.Context) error {
		_, err := s.store.Owner(txCtx)
		if err == nil {
			return nil
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "owner lookup failed")
		}
		if err := s.store.SetOwner(txCtx, owner, requestcontext.Now(txCtx)); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to seed owner")
		}
		return nil
	})
}

// AddProvider adds an identity to the global override set. Idempotent: adding
// a member again is a no-op transition that still produces an audit entry.
func (s *Service) AddProvider(ctx context.Context, caller, identity id.Identity) error {
	ctx, span := s.tracer.Start(ctx, "emergency.AddProvider")
	defer span.End()

	if identity.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "provider identity cannot be empty")
	}

	return s.runner.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.requireAdminOwner(txCtx, caller); err != nil {
			return err
		}
		if err := s.store.AddProvider(txCtx, identity, requestcontext.Now(txCtx)); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to add emergency provider")
		}
		return s.appendAudit(txCtx, audit.ActionEmergencyProviderAdded, caller, identity)
	})
}

// RemoveProvider removes an identity from the override set. Idempotent.
func (s *Service) RemoveProvider(ctx context.Context, caller, identity id.Identity) error {
	ctx, span := s.tracer.Start(ctx, "emergency.RemoveProvider")
	defer span.End()

	if identity.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "provider identity cannot be empty")
	}

	return s.runner.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.requireAdminOwner(txCtx, caller); err != nil {
			return err
		}
		if err := s.store.RemoveProvider(txCtx, identity); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove emergency provider")
		}
		return s.appendAudit(txCtx, audit.ActionEmergencyProviderRemoved, caller, identity)
	})
}

// IsProvider is a pure membership query.
func (s *Service) IsProvider(ctx context.Context, identity id.Identity) (bool, error) {
	isProvider, err := s.store.IsProvider(ctx, identity)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to query emergency registry")
	}
	return isProvider, nil
}

// ListProviders returns the current override set for the admin view.
func (s *Service) ListProviders(ctx context.Context) ([]id.Identity, error) {
	providers, err := s.store.ListProviders(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list emergency providers")
	}
	return providers, nil
}

// Owner returns the current administrative owner identity.
func (s *Service) Owner(ctx context.Context) (id.Identity, error) {
	owner, err := s.store.Owner(ctx)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", dErrors.New(dErrors.CodeNotFound, "administrative owner not set")
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "owner lookup failed")
	}
	return owner, nil
}

// TransferOwnership hands operator control to a new identity. The empty
// identity is rejected so control can never be transferred into the void.
func (s *Service) TransferOwnership(ctx context.Context, caller, newOwner id.Identity) error {
	ctx, span := s.tracer.Start(ctx, "emergency.TransferOwnership")
	defer span.End()

	if newOwner.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "new owner cannot be empty")
	}

	return s.runner.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.requireAdminOwner(txCtx, caller); err != nil {
			return err
		}
		if err := s.store.SetOwner(txCtx, newOwner, requestcontext.Now(txCtx)); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to transfer ownership")
		}
		return s.appendAudit(txCtx, audit.ActionOwnershipTransferred, caller, newOwner)
	})
}

func (s *Service) requireAdminOwner(ctx context.Context, caller id.Identity) error {
	owner, err := s.store.Owner(ctx)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeForbidden, msgNotAdminOwner)
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "owner lookup failed")
	}
	if caller != owner {
		return dErrors.New(dErrors.CodeForbidden, msgNotAdminOwner)
	}
	return nil
}

func (s *Service) appendAudit(ctx context.Context, action audit.Action, actor, subject id.Identity) error {
	event := audit.Event{
		Action:    action,
		Category:  action.Category(),
		Timestamp: requestcontext.Now(ctx),
		Actor:     actor,
		Subject:   subject,
		RequestID: requestcontext.RequestID(ctx),
	}
	if err := s.auditLog.Append(ctx, event); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to append audit entry")
	}
	return nil
}
