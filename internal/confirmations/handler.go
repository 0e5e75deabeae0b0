package confirmations

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/privata-io/privata/pkg/handlers"
	"github.com/privata-io/privata/pkg/pagination"
	"github.com/privata-io/privata/pkg/routes"
)

// Handler provides HTTP endpoints for the confirmation workflow.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "confirmations"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for confirmation endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/confirmations",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/pending", Handler: h.Pending},
			{Method: "GET", Pattern: "/resolved", Handler: h.Resolved},
			{Method: "GET", Pattern: "/discarded", Handler: h.Discarded},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "POST", Pattern: "/{id}/resolution", Handler: h.Resolve},
			{Method: "POST", Pattern: "/{id}/override", Handler: h.Override},
		},
	}
}

// List returns a paginated list of all confirmation requests.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, h.sys.List)
}

// Pending returns the open review queue.
func (h *Handler) Pending(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, h.sys.Pending)
}

// Resolved returns requests a reviewer has settled.
func (h *Handler) Resolved(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, h.sys.Resolved)
}

// Discarded returns audit rows for below-threshold classifications.
func (h *Handler) Discarded(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, h.sys.Discarded)
}

// Find returns a single request by id path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("invalid request id: %w", err))
		return
	}

	req, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, req)
}

// Resolve applies a reviewer decision to a pending request.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("invalid request id: %w", err))
		return
	}

	var res Resolution
	if err := json.NewDecoder(r.Body).Decode(&res); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("invalid resolution payload: %w", err))
		return
	}

	req, err := h.sys.Resolve(r.Context(), id, res)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, req)
}

// Override reverses a settled decision, chaining a new decision row.
func (h *Handler) Override(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("invalid request id: %w", err))
		return
	}

	var ov Override
	if err := json.NewDecoder(r.Body).Decode(&ov); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("invalid override payload: %w", err))
		return
	}

	req, err := h.sys.Override(r.Context(), id, ov)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, req)
}

func (h *Handler) page(
	w http.ResponseWriter,
	r *http.Request,
	list func(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[Request], error),
) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)

	result, err := list(r.Context(), page)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
