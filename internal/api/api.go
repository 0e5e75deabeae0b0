// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/privata-io/privata/internal/autolink"
	"github.com/privata-io/privata/internal/config"
	"github.com/privata-io/privata/internal/infrastructure"
	"github.com/privata-io/privata/pkg/middleware"
	"github.com/privata-io/privata/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// When the periodic autolink resolver is enabled, its runner is registered
// with the lifecycle coordinator.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)

	domain, err := NewDomain(runtime)
	if err != nil {
		return nil, err
	}

	if cfg.AutoLink.Enabled {
		runner := autolink.NewRunner(domain.AutoLink, cfg.AutoLink.IntervalDuration(), runtime.Logger)
		runner.Start(runtime.Lifecycle)
	}

	mux := http.NewServeMux()
	registerRoutes(mux, domain, runtime)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))

	return m, nil
}
