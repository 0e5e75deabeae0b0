package classifier

import (
	"strings"

	"github.com/privata-io/privata/internal/pii"
)

// fallbackRule pairs a field-name keyword with a fixed classification.
type fallbackRule struct {
	keyword    string
	piiType    string
	confidence float64
}

// fallbackRules are evaluated in order; first keyword hit wins. Confidences
// are fixed so fallback behavior is fully deterministic and still flows
// through the uniform confidence-to-status mapping.
var fallbackRules = []fallbackRule{
	{"aadhaar", "aadhaar", 0.95},
	{"pan", "pan", 0.95},
	{"email", "email", 0.90},
	{"phone", "phone", 0.90},
	{"mobile", "phone", 0.90},
	{"salary", "salary", 0.90},
	{"address", "address", 0.75},
	{"dob", "dob", 0.85},
	{"birth", "dob", 0.85},
}

// Fallback is the deterministic keyword classifier used whenever the
// external provider is unavailable or returns something unusable.
func Fallback(fieldName string) pii.Outcome {
	lower := strings.ToLower(fieldName)

	for _, rule := range fallbackRules {
		if !strings.Contains(lower, rule.keyword) {
			continue
		}

		category := pii.CategoryForType(rule.piiType)
		return pii.Outcome{
			Type:       rule.piiType,
			Category:   category,
			Risk:       pii.RiskForCategory(category),
			Source:     pii.SourceProbabilistic,
			Confidence: rule.confidence,
			Status:     pii.StatusForConfidence(rule.confidence),
			Reason:     "fallback keyword match",
		}
	}

	return pii.Outcome{
		Type:       pii.TypeNone,
		Source:     pii.SourceProbabilistic,
		Confidence: 0,
		Status:     pii.StatusDiscarded,
		Reason:     "fallback: no PII indicators",
	}
}
