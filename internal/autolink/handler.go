package autolink

import (
	"log/slog"
	"net/http"

	"github.com/privata-io/privata/pkg/handlers"
	"github.com/privata-io/privata/pkg/routes"
)

// Handler exposes an on-demand trigger for resolver passes.
type Handler struct {
	resolver *Resolver
	logger   *slog.Logger
}

// NewHandler creates a Handler over the resolver.
func NewHandler(resolver *Resolver, logger *slog.Logger) *Handler {
	return &Handler{
		resolver: resolver,
		logger:   logger.With("handler", "autolink"),
	}
}

// Routes returns the route group definition for autolink endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/autolink",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/runs", Handler: h.Run},
		},
	}
}

// Run executes a single resolver pass and returns its report.
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	report, err := h.resolver.RunPass(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, report)
}
