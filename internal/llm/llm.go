// Package llm abstracts the external text-classification capability the
// probabilistic classifier depends on. Providers are treated as
// untrustworthy: they return raw text that callers must validate.
package llm

import (
	"context"
	"fmt"
)

// Provider is the contract for an external text-classification capability.
type Provider interface {
	// Classify sends a system instruction and user text, returning the raw
	// model output. Callers must not assume the output is well-formed.
	Classify(ctx context.Context, system, user string) (string, error)
	// Name identifies the provider for logging and provenance.
	Name() string
}

// Config selects and configures a provider implementation.
type Config struct {
	Provider  string `toml:"provider"`
	Model     string `toml:"model"`
	MaxTokens int64  `toml:"max_tokens"`
	APIKey    string `toml:"api_key"`
}

// New constructs the provider named by the config.
func New(cfg *Config) (Provider, error) {
	switch cfg.Provider {
	case "anthropic":
		return NewAnthropic(cfg)
	case "static":
		return &Static{}, nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}
