// Package handler exposes the emergency-provider registry and the
// administrative owner over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"medchain/internal/platform/middleware"
	"medchain/internal/transport/http/shared"
	id "medchain/pkg/domain"
	dErrors "medchain/pkg/domain-errors"
	"medchain/pkg/requestcontext"
)

// Service defines the registry operations the transport layer needs.
type Service interface {
	AddProvider(ctx context.Context, caller, identity id.Identity) error
	RemoveProvider(ctx context.Context, caller, identity id.Identity) error
	IsProvider(ctx context.Context, identity id.Identity) (bool, error)
	ListProviders(ctx context.Context) ([]id.Identity, error)
	Owner(ctx context.Context) (id.Identity, error)
	TransferOwnership(ctx context.Context, caller, newOwner id.Identity) error
}

// Handler handles emergency-registry and admin endpoints.
type Handler struct {
	logger   *slog.Logger
	registry Service
}

// New creates a new emergency Handler.
func New(registry Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:   logger,
		registry: registry,
	}
}

// Register registers the emergency and admin routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/emergency/providers", h.handleListProviders)
	r.Post("/emergency/providers", h.handleAddProvider)
	r.Get("/emergency/providers/{identity}", h.handleIsProvider)
	r.Delete("/emergency/providers/{identity}", h.handleRemoveProvider)
	r.Get("/admin/owner", h.handleOwner)
	r.Post("/admin/owner/transfer", h.handleTransfer)
}

type identityRequest struct {
	Identity string `json:"identity"`
}

func (h *Handler) handleAddProvider(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req identityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.registry.AddProvider(ctx, requestcontext.Caller(ctx), id.Identity(req.Identity)); err != nil {
		h.writeServiceError(ctx, w, "failed to add emergency provider", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRemoveProvider(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := id.Identity(chi.URLParam(r, "identity"))

	if err := h.registry.RemoveProvider(ctx, requestcontext.Caller(ctx), identity); err != nil {
		h.writeServiceError(ctx, w, "failed to remove emergency provider", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleIsProvider(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := id.Identity(chi.URLParam(r, "identity"))

	isProvider, err := h.registry.IsProvider(ctx, identity)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to check emergency provider", err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, map[string]bool{"emergency_provider": isProvider})
}

func (h *Handler) handleListProviders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	providers, err := h.registry.ListProviders(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to list emergency providers", err)
		return
	}

	out := make([]string, 0, len(providers))
	for _, p := range providers {
		out = append(out, p.String())
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleOwner(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	owner, err := h.registry.Owner(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to read administrative owner", err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, map[string]string{"owner": owner.String()})
}

func (h *Handler) handleTransfer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req identityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.registry.TransferOwnership(ctx, requestcontext.Caller(ctx), id.Identity(req.Identity)); err != nil {
		h.writeServiceError(ctx, w, "failed to transfer ownership", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
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
