// Package service implements grant management and the fixed-precedence access
// check.
package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"medchain/internal/access"
	accessmetrics "medchain/internal/access/metrics"
	"medchain/internal/records"
	id "medchain/pkg/domain"
	dErrors "medchain/pkg/domain-errors"
	audit "medchain/pkg/platform/audit"
	"medchain/pkg/platform/sentinel"
	"medchain/pkg/platform/tx"
	"medchain/pkg/requestcontext"
)

const (
	msgNotOwner      = "Only record owner can perform this action"
	msgRecordUnknown = "record not found"
)

// RecordFinder exposes the record rows the ACL needs: ownership for guards,
// per-owner listing for permission views.
type RecordFinder interface {
	FindByID(ctx context.Context, recordID id.RecordID) (records.Record, error)
	ListByOwner(ctx context.Context, owner id.Identity) ([]records.Record, error)
}

// EmergencyRegistry answers override-membership queries for Check.
type EmergencyRegistry interface {
	IsProvider(ctx context.Context, identity id.Identity) (bool, error)
}

// Service owns the grant relation. Grant and Revoke are idempotent: repeating
// a transition is a no-op on state but still produces an audit entry, so the
// log preserves the full request sequence.
type Service struct {
	grants    access.Store
	rec       RecordFinder
	emergency EmergencyRegistry
	auditLog  audit.Store
	runner    tx.Runner
	logger    *slog.Logger
	metrics   *accessmetrics.Metrics
	tracer    trace.Tracer
}

// Option configures the service.
type Option func(*Service)

// WithMetrics attaches the module's prometheus metrics.
func WithMetrics(m *accessmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(grants access.Store, rec RecordFinder, emergency EmergencyRegistry, auditLog audit.Store, runner tx.Runner, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		grants:    grants,
		rec:       rec,
		emergency: emergency,
		auditLog:  auditLog,
		runner:    runner,
		logger:    logger,
		tracer:    otel.Tracer("medchain/access"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Grant gives the grantee read access to the record. Owner-only.
func (s *Service) Grant(ctx context.Context, caller, grantee id.Identity, recordID id.RecordID) error {
	if err := s.setGrant(ctx, caller, grantee, recordID, true, audit.ActionAccessGranted); err != nil {
		return err
	}
	s.metrics.IncrementGranted()
	return nil
}

// Revoke removes the grantee's access to the record. Owner-only. Revoking a
// pair that was never granted is a valid no-op transition.
func (s *Service) Revoke(ctx context.Context, caller, grantee id.Identity, recordID id.RecordID) error {
	if err := s.setGrant(ctx, caller, grantee, recordID, false, audit.ActionAccessRevoked); err != nil {
		return err
	}
	s.metrics.IncrementRevoked()
	return nil
}

func (s *Service) setGrant(ctx context.Context, caller, grantee id.Identity, recordID id.RecordID, granted bool, action audit.Action) error {
	ctx, span := s.tracer.Start(ctx, "access."+string(action))
	defer span.End()

	if grantee.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "grantee identity cannot be empty")
	}

	return s.runner.RunInTx(ctx, func(txCtx context.Context) error {
		record, err := s.rec.FindByID(txCtx, recordID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, msgRecordUnknown)
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "record lookup failed")
		}
		if record.Owner != caller {
			return dErrors.New(dErrors.CodeForbidden, msgNotOwner)
		}

		if err := s.grants.Set(txCtx, recordID, grantee, granted, requestcontext.Now(txCtx)); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store grant")
		}

		event := audit.Event{
			Action:    action,
			Category:  action.Category(),
			Timestamp: requestcontext.Now(txCtx),
			Actor:     caller,
			Subject:   grantee,
			RecordID:  recordID,
			RequestID: requestcontext.RequestID(txCtx),
		}
		if err := s.auditLog.Append(txCtx, event); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to append audit entry")
		}
		return nil
	})
}

// Check is a pure query with no side effects, evaluated in strict precedence
// order:
//  1. the supplied owner must match the record's actual owner, guarding
//     against stale owner arguments from callers;
//  2. the owner always reads their own record;
//  3. emergency providers bypass explicit grants;
//  4. otherwise the stored grant decides, defaulting to false when absent.
//
// Deletion state is deliberately not consulted here: the registry's read path
// performs that pre-check before authorization.
func (s *Service) Check(ctx context.Context, owner, grantee id.Identity, recordID id.RecordID) (bool, error) {
	record, err := s.rec.FindByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, dErrors.New(dErrors.CodeNotFound, msgRecordUnknown)
		}
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "record lookup failed")
	}

	if record.Owner != owner {
		return false, nil
	}
	if grantee == record.Owner {
		return true, nil
	}

	isEmergency, err := s.emergency.IsProvider(ctx, grantee)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check emergency registry")
	}
	if isEmergency {
		return true, nil
	}

	return s.hasGrant(ctx, recordID, grantee)
}

// HasGrant exposes the raw grant relation to the registry's read path.
func (s *Service) HasGrant(ctx context.Context, recordID id.RecordID, grantee id.Identity) (bool, error) {
	return s.hasGrant(ctx, recordID, grantee)
}

// ListRecordIDsByGrantee exposes the grantee's records to the registry's
// shared-records listing.
func (s *Service) ListRecordIDsByGrantee(ctx context.Context, grantee id.Identity) ([]id.RecordID, error) {
	ids, err := s.grants.ListRecordIDsByGrantee(ctx, grantee)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list granted records")
	}
	return ids, nil
}

// Permissions returns the caller's records mapped to their current grantees,
// for the sharing-management view. Records with no active grants map to an
// empty list; deleted records stay visible here for audit continuity.
func (s *Service) Permissions(ctx context.Context, caller id.Identity) (map[id.RecordID][]id.Identity, error) {
	owned, err := s.rec.ListByOwner(ctx, caller)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list records")
	}
	ids := make([]id.RecordID, len(owned))
	for i, record := range owned {
		ids[i] = record.ID
	}

	permissions, err := s.grants.ListGranteesByRecords(ctx, ids)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list grantees")
	}
	return permissions, nil
}

func (s *Service) hasGrant(ctx context.Context, recordID id.RecordID, grantee id.Identity) (bool, error) {
	granted, err := s.grants.HasGrant(ctx, recordID, grantee)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check grant")
	}
	return granted, nil
}
