package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvAutoLinkEnabled  = "PRIVATA_AUTOLINK_ENABLED"
	EnvAutoLinkInterval = "PRIVATA_AUTOLINK_INTERVAL"
)

// AutoLinkConfig controls the periodic asset link resolver.
type AutoLinkConfig struct {
	Enabled  bool   `toml:"enabled"`
	Interval string `toml:"interval"`
}

// IntervalDuration returns Interval as a time.Duration.
func (c *AutoLinkConfig) IntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.Interval)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *AutoLinkConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *AutoLinkConfig) Merge(overlay *AutoLinkConfig) {
	if overlay.Enabled {
		c.Enabled = true
	}
	if overlay.Interval != "" {
		c.Interval = overlay.Interval
	}
}

func (c *AutoLinkConfig) loadDefaults() {
	if c.Interval == "" {
		c.Interval = "5m"
	}
}

func (c *AutoLinkConfig) loadEnv() {
	if v := os.Getenv(EnvAutoLinkEnabled); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Enabled = enabled
		}
	}
	if v := os.Getenv(EnvAutoLinkInterval); v != "" {
		c.Interval = v
	}
}

func (c *AutoLinkConfig) validate() error {
	d, err := time.ParseDuration(c.Interval)
	if err != nil {
		return fmt.Errorf("invalid interval: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("interval must be positive: %s", c.Interval)
	}
	return nil
}
