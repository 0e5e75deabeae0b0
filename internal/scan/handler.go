package scan

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/privata-io/privata/internal/sources"
	"github.com/privata-io/privata/pkg/handlers"
	"github.com/privata-io/privata/pkg/routes"
)

// Handler provides HTTP endpoints for scan operations.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "scan"),
	}
}

// Routes returns the route group definition for scan endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/scans",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Run},
			{Method: "POST", Pattern: "/text", Handler: h.DetectText},
		},
	}
}

type scanRequest struct {
	SourceName string                 `json:"source_name"`
	Entities   []sources.StaticEntity `json:"entities"`
}

// Run scans inline entities through the full pipeline and returns a report.
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("invalid scan payload: %w", err))
		return
	}
	if len(req.Entities) == 0 {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("at least one entity required"))
		return
	}

	source := sources.NewStatic(req.SourceName, req.Entities)

	report, err := h.sys.RunPass(r.Context(), source)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, report)
}

type textRequest struct {
	Text string `json:"text"`
}

// DetectText sweeps free text for PII occurrences.
func (h *Handler) DetectText(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("invalid text payload: %w", err))
		return
	}
	if req.Text == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("text required"))
		return
	}

	findings := h.sys.DetectText(r.Context(), req.Text)
	handlers.RespondJSON(w, http.StatusOK, map[string]any{
		"findings": findings,
		"count":    len(findings),
	})
}
