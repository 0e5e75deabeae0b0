package autolink

import (
	"context"
	"log/slog"
	"time"

	"github.com/privata-io/privata/pkg/lifecycle"
)

// Runner executes resolver passes on a fixed interval until shutdown.
type Runner struct {
	resolver *Resolver
	interval time.Duration
	logger   *slog.Logger
}

// NewRunner creates a Runner executing passes every interval.
func NewRunner(resolver *Resolver, interval time.Duration, logger *slog.Logger) *Runner {
	return &Runner{
		resolver: resolver,
		interval: interval,
		logger:   logger.With("system", "autolink-runner"),
	}
}

// Start registers the periodic pass loop with the lifecycle coordinator.
func (r *Runner) Start(lc *lifecycle.Coordinator) {
	lc.OnShutdown(func() {
		r.run(lc.Context())
	})
}

func (r *Runner) run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("periodic autolink started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("periodic autolink stopped")
			return
		case <-ticker.C:
			if _, err := r.resolver.RunPass(ctx); err != nil {
				r.logger.Error("autolink pass failed", "error", err)
			}
		}
	}
}
