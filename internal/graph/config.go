package graph

import (
	"fmt"
	"os"
)

// Config holds the embedded graph store settings.
type Config struct {
	Path        string `toml:"path"`
	BusyTimeout int    `toml:"busy_timeout_ms"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Path        string
	BusyTimeout string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	if c.Path == "" {
		return fmt.Errorf("graph path required")
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Path != "" {
		c.Path = overlay.Path
	}
	if overlay.BusyTimeout != 0 {
		c.BusyTimeout = overlay.BusyTimeout
	}
}

func (c *Config) loadDefaults() {
	if c.Path == "" {
		c.Path = "privata-graph.db"
	}
	if c.BusyTimeout == 0 {
		c.BusyTimeout = 5000
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Path != "" {
		if v := os.Getenv(env.Path); v != "" {
			c.Path = v
		}
	}
	if env.BusyTimeout != "" {
		if v := os.Getenv(env.BusyTimeout); v != "" {
			var timeout int
			if _, err := fmt.Sscanf(v, "%d", &timeout); err == nil {
				c.BusyTimeout = timeout
			}
		}
	}
}
