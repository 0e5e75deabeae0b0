package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/privata-io/privata/internal/llm"
)

const (
	EnvClassifierProvider  = "PRIVATA_CLASSIFIER_PROVIDER"
	EnvClassifierModel     = "PRIVATA_CLASSIFIER_MODEL"
	EnvClassifierMaxTokens = "PRIVATA_CLASSIFIER_MAX_TOKENS"
	EnvClassifierAPIKey    = "PRIVATA_CLASSIFIER_API_KEY"
)

// FinalizeClassifier applies the three-phase finalize pattern to the llm
// provider config: defaults, environment variable overrides, validation.
// The API key may also come from the provider's own environment (the
// anthropic provider falls back to ANTHROPIC_API_KEY).
func FinalizeClassifier(c *llm.Config) error {
	loadClassifierDefaults(c)
	loadClassifierEnv(c)
	return validateClassifier(c)
}

// MergeClassifier overwrites non-zero fields from overlay.
func MergeClassifier(c, overlay *llm.Config) {
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.MaxTokens != 0 {
		c.MaxTokens = overlay.MaxTokens
	}
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
}

func loadClassifierDefaults(c *llm.Config) {
	if c.Provider == "" {
		c.Provider = "anthropic"
	}
}

func loadClassifierEnv(c *llm.Config) {
	if v := os.Getenv(EnvClassifierProvider); v != "" {
		c.Provider = v
	}
	if v := os.Getenv(EnvClassifierModel); v != "" {
		c.Model = v
	}
	if v := os.Getenv(EnvClassifierMaxTokens); v != "" {
		if tokens, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.MaxTokens = tokens
		}
	}
	if v := os.Getenv(EnvClassifierAPIKey); v != "" {
		c.APIKey = v
	}
}

func validateClassifier(c *llm.Config) error {
	if c.Provider == "" {
		return fmt.Errorf("provider required")
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("invalid max_tokens: %d", c.MaxTokens)
	}
	return nil
}
