// Package handler exposes the audit feed over HTTP. The feed is read-only;
// events are appended exclusively by the domain services.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"medchain/internal/platform/middleware"
	"medchain/internal/transport/http/shared"
	id "medchain/pkg/domain"
	dErrors "medchain/pkg/domain-errors"
	"medchain/pkg/platform/audit"
)

const defaultRecentLimit = 50

// Feed defines the audit queries the transport layer needs.
type Feed interface {
	ListByActor(ctx context.Context, actor id.Identity) ([]audit.Event, error)
	ListByRecord(ctx context.Context, recordID id.RecordID) ([]audit.Event, error)
	ListRecent(ctx context.Context, limit int) ([]audit.Event, error)
}

// Handler handles audit-feed endpoints.
type Handler struct {
	logger *slog.Logger
	feed   Feed
}

// New creates a new audit Handler.
func New(feed Feed, logger *slog.Logger) *Handler {
	return &Handler{
		logger: logger,
		feed:   feed,
	}
}

// Register registers the audit routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/audit/actors/{identity}", h.handleByActor)
	r.Get("/audit/records/{id}", h.handleByRecord)
	r.Get("/audit/recent", h.handleRecent)
}

type eventResponse struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Category  string    `json:"category"`
	Timestamp time.Time `json:"timestamp"`
	Actor     string    `json:"actor"`
	Subject   string    `json:"subject,omitempty"`
	RecordID  string    `json:"record_id,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

func toEventResponses(events []audit.Event) []eventResponse {
	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		resp := eventResponse{
			ID:        e.ID.String(),
			Action:    string(e.Action),
			Category:  string(e.Category),
			Timestamp: e.Timestamp,
			Actor:     e.Actor.String(),
			Subject:   e.Subject.String(),
			Detail:    e.Detail,
		}
		if !e.RecordID.IsNil() {
			resp.RecordID = e.RecordID.String()
		}
		out = append(out, resp)
	}
	return out
}

func (h *Handler) handleByActor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := id.Identity(chi.URLParam(r, "identity"))

	events, err := h.feed.ListByActor(ctx, actor)
	if err != nil {
		h.writeFeedError(ctx, w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, toEventResponses(events))
}

func (h *Handler) handleByRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	recordID, err := shared.RecordIDParam(r, "id")
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	events, err := h.feed.ListByRecord(ctx, recordID)
	if err != nil {
		h.writeFeedError(ctx, w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, toEventResponses(events))
}

func (h *Handler) handleRecent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := defaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	events, err := h.feed.ListRecent(ctx, limit)
	if err != nil {
		h.writeFeedError(ctx, w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, toEventResponses(events))
}

func (h *Handler) writeFeedError(ctx context.Context, w http.ResponseWriter, err error) {
	h.logger.ErrorContext(ctx, "failed to read audit feed",
		"request_id", middleware.GetRequestID(ctx),
		"error", err.Error(),
	)
	shared.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read audit feed"))
}
