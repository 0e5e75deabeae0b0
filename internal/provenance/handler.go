package provenance

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/privata-io/privata/pkg/handlers"
	"github.com/privata-io/privata/pkg/routes"
)

// Handler provides HTTP endpoints for asset and link operations.
type Handler struct {
	writer *Writer
	logger *slog.Logger
}

// NewHandler creates a Handler over the provenance writer.
func NewHandler(writer *Writer, logger *slog.Logger) *Handler {
	return &Handler{
		writer: writer,
		logger: logger.With("handler", "provenance"),
	}
}

// Routes returns the route group definition for provenance endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/assets",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.UpsertAsset},
			{Method: "POST", Pattern: "/{id}/links", Handler: h.Link},
		},
	}
}

// UpsertAsset registers or updates a governed data asset.
func (h *Handler) UpsertAsset(w http.ResponseWriter, r *http.Request) {
	var asset Asset
	if err := json.NewDecoder(r.Body).Decode(&asset); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("invalid asset payload: %w", err))
		return
	}

	if err := h.writer.UpsertAsset(r.Context(), asset); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, asset)
}

type linkRequest struct {
	Locator string `json:"locator"`
}

// Link confirms an entity-to-asset mapping, displacing provisional links.
func (h *Handler) Link(w http.ResponseWriter, r *http.Request) {
	var req linkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("invalid link payload: %w", err))
		return
	}
	if req.Locator == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("locator required"))
		return
	}

	assetID := r.PathValue("id")
	if err := h.writer.LinkEntityToAsset(r.Context(), req.Locator, assetID); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]string{
		"locator":  req.Locator,
		"asset_id": assetID,
		"status":   "linked",
	})
}
