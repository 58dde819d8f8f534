// Package handler exposes access-grant management over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"medchain/internal/platform/middleware"
	"medchain/internal/transport/http/shared"
	id "medchain/pkg/domain"
	dErrors "medchain/pkg/domain-errors"
	"medchain/pkg/requestcontext"
)

// Service defines the grant operations the transport layer needs.
type Service interface {
	Grant(ctx context.Context, caller, grantee id.Identity, recordID id.RecordID) error
	Revoke(ctx context.Context, caller, grantee id.Identity, recordID id.RecordID) error
	Check(ctx context.Context, owner, grantee id.Identity, recordID id.RecordID) (bool, error)
	Permissions(ctx context.Context, caller id.Identity) (map[id.RecordID][]id.Identity, error)
}

// Handler handles access-grant endpoints.
type Handler struct {
	logger *slog.Logger
	access Service
}

// New creates a new access Handler.
func New(access Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger: logger,
		access: access,
	}
}

// Register registers the access routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/records/{id}/access/{identity}", h.handleGrant)
	r.Delete("/records/{id}/access/{identity}", h.handleRevoke)
	r.Get("/access/check", h.handleCheck)
	r.Get("/access/permissions", h.handlePermissions)
}

func (h *Handler) handleGrant(w http.ResponseWriter, r *http.Request) {
	h.handleSetGrant(w, r, h.access.Grant, "failed to grant access")
}

func (h *Handler) handleRevoke(w http.ResponseWriter, r *http.Request) {
	h.handleSetGrant(w, r, h.access.Revoke, "failed to revoke access")
}

func (h *Handler) handleSetGrant(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, caller, grantee id.Identity, recordID id.RecordID) error,
	failMsg string,
) {
	ctx := r.Context()

	recordID, err := shared.RecordIDParam(r, "id")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	grantee := id.Identity(chi.URLParam(r, "identity"))

	if err := op(ctx, requestcontext.Caller(ctx), grantee, recordID); err != nil {
		h.writeServiceError(ctx, w, failMsg, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	recordID, err := shared.RecordIDQuery(r, "record")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	owner := id.Identity(q.Get("owner"))
	grantee := id.Identity(q.Get("grantee"))

	allowed, err := h.access.Check(ctx, owner, grantee, recordID)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to check access", err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, map[string]bool{"allowed": allowed})
}

func (h *Handler) handlePermissions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	perms, err := h.access.Permissions(ctx, requestcontext.Caller(ctx))
	if err != nil {
		h.writeServiceError(ctx, w, "failed to list permissions", err)
		return
	}

	// Keyed by the record's string form so the JSON shape is stable.
	out := make(map[string][]string, len(perms))
	for recordID, grantees := range perms {
		list := make([]string, 0, len(grantees))
		for _, g := range grantees {
			list = append(list, g.String())
		}
		out[recordID.String()] = list
	}

	shared.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg,
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
	}
	shared.WriteError(w, err)
}
