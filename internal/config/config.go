package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/privata-io/privata/internal/graph"
	"github.com/privata-io/privata/internal/llm"
	"github.com/privata-io/privata/internal/scan"
	"github.com/privata-io/privata/pkg/database"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvPrivataEnv             = "PRIVATA_ENV"
	EnvPrivataShutdownTimeout = "PRIVATA_SHUTDOWN_TIMEOUT"
	EnvPrivataVersion         = "PRIVATA_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "PRIVATA_DB_HOST",
	Port:            "PRIVATA_DB_PORT",
	Name:            "PRIVATA_DB_NAME",
	User:            "PRIVATA_DB_USER",
	Password:        "PRIVATA_DB_PASSWORD",
	SSLMode:         "PRIVATA_DB_SSL_MODE",
	MaxOpenConns:    "PRIVATA_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "PRIVATA_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "PRIVATA_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "PRIVATA_DB_CONN_TIMEOUT",
}

var graphEnv = &graph.Env{
	Path:        "PRIVATA_GRAPH_PATH",
	BusyTimeout: "PRIVATA_GRAPH_BUSY_TIMEOUT_MS",
}

// Config is the root configuration for the Privata service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Graph           graph.Config    `toml:"graph"`
	Classifier      llm.Config      `toml:"classifier"`
	Pipeline        scan.Config     `toml:"pipeline"`
	AutoLink        AutoLinkConfig  `toml:"autolink"`
	API             APIConfig       `toml:"api"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the PRIVATA_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvPrivataEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Graph.Merge(&overlay.Graph)
	MergeClassifier(&c.Classifier, &overlay.Classifier)
	c.Pipeline.Merge(&overlay.Pipeline)
	c.AutoLink.Merge(&overlay.AutoLink)
	c.API.Merge(&overlay.API)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Graph.Finalize(graphEnv); err != nil {
		return fmt.Errorf("graph: %w", err)
	}
	if err := FinalizeClassifier(&c.Classifier); err != nil {
		return fmt.Errorf("classifier: %w", err)
	}
	if err := FinalizePipeline(&c.Pipeline); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	if err := c.AutoLink.Finalize(); err != nil {
		return fmt.Errorf("autolink: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvPrivataShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvPrivataVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvPrivataEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
