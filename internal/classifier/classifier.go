// Package classifier implements the probabilistic stage of the pipeline.
// It delegates to an external text-classification provider under a fixed
// prompt contract, validates the response defensively, and applies the
// uniform confidence-to-status mapping. A deterministic keyword fallback
// guarantees the pipeline never blocks on a misbehaving provider.
package classifier

import (
	"context"
	"log/slog"
	"strings"

	"github.com/privata-io/privata/internal/llm"
	"github.com/privata-io/privata/internal/pii"
	"github.com/privata-io/privata/pkg/formatting"
)

// response is the JSON contract the provider is instructed to return.
type response struct {
	Type       string   `json:"type"`
	Confidence *float64 `json:"confidence"`
	Reason     string   `json:"reason"`
}

// Classifier wraps an llm.Provider with validation and fallback.
type Classifier struct {
	provider llm.Provider
	logger   *slog.Logger
}

// New creates a Classifier over the given provider.
func New(provider llm.Provider, logger *slog.Logger) *Classifier {
	return &Classifier{
		provider: provider,
		logger:   logger.With("system", "classifier"),
	}
}

// Classify produces an outcome for one sampled value. It never returns an
// error: provider failures and malformed responses recover through the
// deterministic fallback.
func (c *Classifier) Classify(ctx context.Context, sampleValue, fieldName string) pii.Outcome {
	raw, err := c.provider.Classify(ctx, systemInstruction, userText(sampleValue, fieldName))
	if err != nil {
		c.logger.Warn("provider call failed, using fallback",
			"provider", c.provider.Name(),
			"field", fieldName,
			"error", err,
		)
		return Fallback(fieldName)
	}

	parsed, err := formatting.Parse[response](raw)
	if err != nil {
		c.logger.Warn("malformed provider response, using fallback",
			"provider", c.provider.Name(),
			"field", fieldName,
		)
		return Fallback(fieldName)
	}

	if parsed.Confidence == nil || *parsed.Confidence < 0 || *parsed.Confidence > 1 {
		c.logger.Warn("provider confidence missing or out of range, using fallback",
			"provider", c.provider.Name(),
			"field", fieldName,
		)
		return Fallback(fieldName)
	}

	return normalize(parsed)
}

// normalize maps a validated provider response onto an Outcome, deriving
// status, category, and risk.
func normalize(r response) pii.Outcome {
	piiType := strings.ToLower(strings.TrimSpace(r.Type))
	if piiType == "" {
		piiType = pii.TypeNone
	}

	reason := r.Reason
	if reason == "" {
		reason = "probabilistic classification"
	}

	confidence := *r.Confidence
	status := pii.StatusForConfidence(confidence)

	out := pii.Outcome{
		Type:       piiType,
		Source:     pii.SourceProbabilistic,
		Confidence: confidence,
		Status:     status,
		Reason:     reason,
	}

	if piiType != pii.TypeNone && status != pii.StatusDiscarded {
		out.Category = pii.CategoryForType(piiType)
		out.Risk = pii.RiskForCategory(out.Category)
	}

	return out
}
