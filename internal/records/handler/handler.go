// Package handler exposes the record registry over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"medchain/internal/platform/middleware"
	"medchain/internal/records"
	"medchain/internal/transport/http/shared"
	id "medchain/pkg/domain"
	dErrors "medchain/pkg/domain-errors"
	"medchain/pkg/requestcontext"
)

// Service defines the record operations the transport layer needs.
type Service interface {
	Upload(ctx context.Context, caller id.Identity, input records.UploadInput) (records.Record, error)
	PatientRecords(ctx context.Context, owner id.Identity) ([]records.Record, error)
	Details(ctx context.Context, caller id.Identity, recordID id.RecordID) (records.Record, error)
	CID(ctx context.Context, caller id.Identity, recordID id.RecordID) (string, error)
	Delete(ctx context.Context, caller id.Identity, recordID id.RecordID) error
	SharedWithProvider(ctx context.Context, provider id.Identity) ([]records.Record, error)
}

// Handler handles record endpoints.
type Handler struct {
	logger  *slog.Logger
	records Service
}

// New creates a new records Handler.
func New(records Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		records: records,
	}
}

// Register registers the record routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/records", h.handleUpload)
	r.Get("/records/shared", h.handleShared)
	r.Get("/records/{id}", h.handleDetails)
	r.Get("/records/{id}/cid", h.handleCID)
	r.Delete("/records/{id}", h.handleDelete)
	r.Get("/patients/{identity}/records", h.handlePatientRecords)
}

type uploadRequest struct {
	IPFSCID     string `json:"ipfs_cid"`
	FileName    string `json:"file_name"`
	FileType    string `json:"file_type"`
	FileSize    int64  `json:"file_size"`
	RecordHash  string `json:"record_hash"`
	Description string `json:"description"`
}

type recordResponse struct {
	ID          string    `json:"id"`
	Owner       string    `json:"owner"`
	IPFSCID     string    `json:"ipfs_cid"`
	FileName    string    `json:"file_name"`
	FileType    string    `json:"file_type"`
	FileSize    int64     `json:"file_size"`
	RecordHash  string    `json:"record_hash"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	Status      string    `json:"status"`
}

func toRecordResponse(rec records.Record) recordResponse {
	return recordResponse{
		ID:          rec.ID.String(),
		Owner:       rec.Owner.String(),
		IPFSCID:     rec.IPFSCID,
		FileName:    rec.FileName,
		FileType:    rec.FileType,
		FileSize:    rec.FileSize,
		RecordHash:  rec.RecordHash,
		Description: rec.Description,
		CreatedAt:   rec.CreatedAt,
		Status:      string(rec.Status),
	}
}

func toRecordResponses(recs []records.Record) []recordResponse {
	out := make([]recordResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toRecordResponse(rec))
	}
	return out
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := requestcontext.Caller(ctx)

	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid upload request",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	rec, err := h.records.Upload(ctx, caller, records.UploadInput{
		IPFSCID:     req.IPFSCID,
		FileName:    req.FileName,
		FileType:    req.FileType,
		FileSize:    req.FileSize,
		RecordHash:  req.RecordHash,
		Description: req.Description,
	})
	if err != nil {
		h.writeServiceError(ctx, w, "failed to upload record", err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, toRecordResponse(rec))
}

func (h *Handler) handlePatientRecords(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner := id.Identity(chi.URLParam(r, "identity"))

	recs, err := h.records.PatientRecords(ctx, owner)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to list patient records", err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, toRecordResponses(recs))
}

func (h *Handler) handleDetails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	recordID, err := shared.RecordIDParam(r, "id")
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	rec, err := h.records.Details(ctx, requestcontext.Caller(ctx), recordID)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to read record", err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, toRecordResponse(rec))
}

func (h *Handler) handleCID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	recordID, err := shared.RecordIDParam(r, "id")
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	cid, err := h.records.CID(ctx, requestcontext.Caller(ctx), recordID)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to read record CID", err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, map[string]string{"ipfs_cid": cid})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	recordID, err := shared.RecordIDParam(r, "id")
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.records.Delete(ctx, requestcontext.Caller(ctx), recordID); err != nil {
		h.writeServiceError(ctx, w, "failed to delete record", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleShared(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	recs, err := h.records.SharedWithProvider(ctx, requestcontext.Caller(ctx))
	if err != nil {
		h.writeServiceError(ctx, w, "failed to list shared records", err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, toRecordResponses(recs))
}

// writeServiceError logs unexpected failures and passes domain errors through
// unchanged so the client sees the stable message.
func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg,
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
	}
	shared.WriteError(w, err)
}
