package api

import (
	"github.com/privata-io/privata/internal/config"
	"github.com/privata-io/privata/internal/infrastructure"
	"github.com/privata-io/privata/internal/llm"
	"github.com/privata-io/privata/internal/scan"
	"github.com/privata-io/privata/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
	Classifier llm.Config
	Pipeline   scan.Config
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
			Graph:     infra.Graph,
		},
		Pagination: cfg.API.Pagination,
		Classifier: cfg.Classifier,
		Pipeline:   cfg.Pipeline,
	}
}
