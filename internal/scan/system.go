package scan

import (
	"context"

	"github.com/privata-io/privata/internal/detect"
	"github.com/privata-io/privata/internal/sources"
)

// System defines the public contract for scan operations.
type System interface {
	Handler() *Handler

	// RunPass scans every entity in the source through the three-stage
	// pipeline: learned rules, pattern matching, then probabilistic
	// classification. Field failures are isolated; the pass continues.
	RunPass(ctx context.Context, source sources.Source) (*Report, error)

	// DetectText sweeps free text for PII occurrences without touching
	// the graph or the review queue.
	DetectText(ctx context.Context, text string) []detect.TextFinding
}
