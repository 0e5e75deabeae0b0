// Package infrastructure provides core service initialization for application
// startup. It assembles the dependencies every domain system requires:
// lifecycle coordination, logging, the PostgreSQL system of record, and the
// embedded provenance graph store.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/privata-io/privata/internal/config"
	"github.com/privata-io/privata/internal/graph"
	"github.com/privata-io/privata/pkg/database"
	"github.com/privata-io/privata/pkg/lifecycle"
)

// Infrastructure holds the core systems required by all domain modules.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Graph     *graph.Store
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	store, err := graph.New(&cfg.Graph, logger)
	if err != nil {
		return nil, fmt.Errorf("graph store init failed: %w", err)
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Graph:     store,
	}, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if err := i.Graph.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("graph store start failed: %w", err)
	}
	return nil
}
