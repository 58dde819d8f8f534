// Package service implements the record registry operations: upload, listing,
// access-checked reads, and irreversible soft deletion.
package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"medchain/internal/records"
	recordmetrics "medchain/internal/records/metrics"
	id "medchain/pkg/domain"
	dErrors "medchain/pkg/domain-errors"
	audit "medchain/pkg/platform/audit"
	"medchain/pkg/platform/sentinel"
	"medchain/pkg/platform/tx"
	"medchain/pkg/requestcontext"
)

// Stable caller-facing messages. Existing integrations match on these.
const (
	msgEmptyCID      = "IPFS CID cannot be empty"
	msgNotOwner      = "Only record owner can perform this action"
	msgRecordDeleted = "Record has been deleted"
	msgRecordUnknown = "record not found"
	msgAccessDenied  = "access denied"
)

// GrantReader exposes the stored grant relation to the read path.
type GrantReader interface {
	HasGrant(ctx context.Context, recordID id.RecordID, grantee id.Identity) (bool, error)
	ListRecordIDsByGrantee(ctx context.Context, grantee id.Identity) ([]id.RecordID, error)
}

// EmergencyRegistry answers override-membership queries.
type EmergencyRegistry interface {
	IsProvider(ctx context.Context, identity id.Identity) (bool, error)
}

// Service orchestrates record lifecycle and read authorization. Mutations run
// inside the shared transaction runner so the state change and its audit
// entry commit together.
type Service struct {
	store     records.Store
	grants    GrantReader
	emergency EmergencyRegistry
	auditLog  audit.Store
	runner    tx.Runner
	logger    *slog.Logger
	metrics   *recordmetrics.Metrics
	tracer    trace.Tracer
}

// Option configures the service.
type Option func(*Service)

// WithMetrics attaches the module's prometheus metrics.
func WithMetrics(m *recordmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(store records.Store, grants GrantReader, emergency EmergencyRegistry, auditLog audit.Store, runner tx.Runner, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:     store,
		grants:    grants,
		emergency: emergency,
		auditLog:  auditLog,
		runner:    runner,
		logger:    logger,
		tracer:    otel.Tracer("medchain/records"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upload registers a new record pointer for the caller and returns it with
// its assigned ID. The caller becomes the record's owner.
func (s *Service) Upload(ctx context.Context, caller id.Identity, input records.UploadInput) (records.Record, error) {
	ctx, span := s.tracer.Start(ctx, "records.Upload")
	defer span.End()

	if caller.IsNil() {
		return records.Record{}, dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}
	if err := input.Validate(); err != nil {
		return records.Record{}, err
	}

	record := records.Record{
		Owner:       caller,
		IPFSCID:     input.IPFSCID,
		FileName:    input.FileName,
		FileType:    input.FileType,
		FileSize:    input.FileSize,
		RecordHash:  input.RecordHash,
		Description: input.Description,
		CreatedAt:   requestcontext.Now(ctx),
		Status:      records.RecordStatusActive,
	}

	err := s.runner.RunInTx(ctx, func(txCtx context.Context) error {
		assigned, err := s.store.Create(txCtx, record)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create record")
		}
		record.ID = assigned

		return s.appendAudit(txCtx, audit.Event{
			Action:   audit.ActionUpload,
			Actor:    caller,
			RecordID: record.ID,
			Detail:   record.FileName,
		})
	})
	if err != nil {
		return records.Record{}, err
	}

	s.metrics.IncrementUploaded()
	return record, nil
}

// PatientRecords returns the owner's records in upload order, deleted ones
// included; the caller decides whether to surface them.
func (s *Service) PatientRecords(ctx context.Context, owner id.Identity) ([]records.Record, error) {
	list, err := s.store.ListByOwner(ctx, owner)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list records")
	}
	return list, nil
}

// Details returns the full record after the deletion pre-check and the access
// check. Successful reads emit an operations audit entry.
func (s *Service) Details(ctx context.Context, caller id.Identity, recordID id.RecordID) (records.Record, error) {
	record, err := s.readableRecord(ctx, caller, recordID)
	if err != nil {
		return records.Record{}, err
	}
	s.auditRead(ctx, audit.ActionRecordViewed, caller, record)
	return record, nil
}

// CID returns only the record's content identifier, under the same checks as
// Details.
func (s *Service) CID(ctx context.Context, caller id.Identity, recordID id.RecordID) (string, error) {
	record, err := s.readableRecord(ctx, caller, recordID)
	if err != nil {
		return "", err
	}
	s.auditRead(ctx, audit.ActionCIDAccessed, caller, record)
	return record.IPFSCID, nil
}

// Delete transitions the record to its terminal state. Owner-only and
// irreversible: every subsequent read by anyone fails.
func (s *Service) Delete(ctx context.Context, caller id.Identity, recordID id.RecordID) error {
	ctx, span := s.tracer.Start(ctx, "records.Delete")
	defer span.End()

	err := s.runner.RunInTx(ctx, func(txCtx context.Context) error {
		record, err := s.store.FindByID(txCtx, recordID)
		if err != nil {
			return translateStoreErr(err)
		}
		if record.Owner != caller {
			return dErrors.New(dErrors.CodeForbidden, msgNotOwner)
		}

		if err := s.store.MarkDeleted(txCtx, recordID); err != nil {
			return translateStoreErr(err)
		}

		return s.appendAudit(txCtx, audit.Event{
			Action:   audit.ActionDelete,
			Actor:    caller,
			RecordID: recordID,
			Detail:   record.FileName,
		})
	})
	if err != nil {
		return err
	}

	s.metrics.IncrementDeleted()
	return nil
}

// SharedWithProvider lists the non-deleted records the provider can read:
// all active records for emergency providers, granted ones otherwise.
func (s *Service) SharedWithProvider(ctx context.Context, provider id.Identity) ([]records.Record, error) {
	isEmergency, err := s.emergency.IsProvider(ctx, provider)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check emergency registry")
	}

	var list []records.Record
	if isEmergency {
		list, err = s.store.ListActive(ctx)
	} else {
		var ids []id.RecordID
		ids, err = s.grants.ListRecordIDsByGrantee(ctx, provider)
		if err == nil {
			list, err = s.store.ListByIDs(ctx, ids)
		}
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list shared records")
	}

	out := make([]records.Record, 0, len(list))
	for _, record := range list {
		if !record.Deleted() {
			out = append(out, record)
		}
	}
	return out, nil
}

// readableRecord runs the fixed check order for reads: unknown ID first, then
// the deletion state, then authorization. The deletion check applies uniformly
// to the owner, grantees, and emergency providers.
func (s *Service) readableRecord(ctx context.Context, caller id.Identity, recordID id.RecordID) (records.Record, error) {
	record, err := s.store.FindByID(ctx, recordID)
	if err != nil {
		return records.Record{}, translateStoreErr(err)
	}
	if record.Deleted() {
		return records.Record{}, dErrors.New(dErrors.CodeRecordDeleted, msgRecordDeleted)
	}

	authorized, err := s.canRead(ctx, caller, record)
	if err != nil {
		return records.Record{}, err
	}
	if !authorized {
		return records.Record{}, dErrors.New(dErrors.CodeForbidden, msgAccessDenied)
	}
	return record, nil
}

// canRead evaluates authorization in fixed precedence order: owner, then
// emergency override, then the stored grant (absent means false).
func (s *Service) canRead(ctx context.Context, caller id.Identity, record records.Record) (bool, error) {
	if caller == record.Owner {
		return true, nil
	}

	isEmergency, err := s.emergency.IsProvider(ctx, caller)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check emergency registry")
	}
	if isEmergency {
		return true, nil
	}

	granted, err := s.grants.HasGrant(ctx, record.ID, caller)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check access grant")
	}
	return granted, nil
}

// appendAudit stamps the event from the request context and appends it.
// Fail-closed: the enclosing transaction aborts when the append fails.
func (s *Service) appendAudit(ctx context.Context, event audit.Event) error {
	event.Timestamp = requestcontext.Now(ctx)
	event.RequestID = requestcontext.RequestID(ctx)
	event.Category = event.Action.Category()
	if err := s.auditLog.Append(ctx, event); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to append audit entry")
	}
	return nil
}

// auditRead records a successful access read. Best-effort: reads are pure
// queries, so a failed feed entry is logged but does not fail the read.
func (s *Service) auditRead(ctx context.Context, action audit.Action, caller id.Identity, record records.Record) {
	event := audit.Event{
		Action:    action,
		Category:  action.Category(),
		Timestamp: requestcontext.Now(ctx),
		Actor:     caller,
		Subject:   record.Owner,
		RecordID:  record.ID,
		Detail:    record.FileName,
		RequestID: requestcontext.RequestID(ctx),
		ClientUA:  requestcontext.UserAgent(ctx),
	}
	if err := s.auditLog.Append(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to append read audit entry",
			"action", string(action),
			"record_id", record.ID.String(),
			"error", err,
		)
	}
}

func translateStoreErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, msgRecordUnknown)
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.New(dErrors.CodeRecordDeleted, msgRecordDeleted)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "record store failure")
	}
}
