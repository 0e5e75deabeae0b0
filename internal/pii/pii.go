// Package pii defines the shared vocabulary for PII classification:
// the statutory taxonomy, outcome types, and the confidence-to-status
// mapping applied uniformly across every classification path.
package pii

// Category is a coarse statutory grouping of personal data types.
type Category string

const (
	CategoryIdentity     Category = "IDENTITY"
	CategoryContact      Category = "CONTACT"
	CategoryGovernmentID Category = "GOVERNMENT_ID"
	CategoryFinancial    Category = "FINANCIAL"
	CategoryLocation     Category = "LOCATION"
	CategoryHealth       Category = "HEALTH"
	CategoryChildren     Category = "CHILDREN"
	CategoryEmployee     Category = "EMPLOYEE"
	CategoryDigital      Category = "DIGITAL"
	CategoryBehavioral   Category = "BEHAVIORAL"
	CategoryOther        Category = "OTHER"
)

// Risk is the derived risk level for a classification.
type Risk string

const (
	RiskHigh   Risk = "High"
	RiskMedium Risk = "Medium"
	RiskLow    Risk = "Low"
)

// Source records which stage of the pipeline produced a classification.
type Source string

const (
	SourcePattern       Source = "pattern"
	SourceLearnedRule   Source = "learned_rule"
	SourceProbabilistic Source = "probabilistic"
)

// Status is the terminal state of a classification outcome.
type Status string

const (
	StatusAutoClassified    Status = "auto_classified"
	StatusNeedsConfirmation Status = "needs_confirmation"
	StatusDiscarded         Status = "discarded"
	StatusConfirmed         Status = "confirmed"
	StatusRejected          Status = "rejected"
	StatusOverridden        Status = "overridden"
)

// TypeNone marks a field as containing no personal data.
const TypeNone = "none"

// Confidence thresholds for probabilistic classifications.
const (
	AutoClassifyThreshold = 0.80
	ConfirmationThreshold = 0.50
)

// StatusForConfidence maps a probabilistic confidence to its terminal status.
// Pattern and learned-rule results bypass this mapping entirely; they are
// always auto_classified at confidence 1.0.
func StatusForConfidence(confidence float64) Status {
	switch {
	case confidence >= AutoClassifyThreshold:
		return StatusAutoClassified
	case confidence >= ConfirmationThreshold:
		return StatusNeedsConfirmation
	default:
		return StatusDiscarded
	}
}

// FieldIdentity is the natural key for a scanned field: where it came from
// and what it is called. Immutable once observed.
type FieldIdentity struct {
	SourceType    string `json:"source_type"`
	SourceSubtype string `json:"source_subtype"`
	Locator       string `json:"locator"`
	FieldName     string `json:"field_name"`
}

// Outcome is the result of classifying a single field during one scan pass.
type Outcome struct {
	Type       string   `json:"type"`
	Category   Category `json:"category"`
	Risk       Risk     `json:"risk"`
	Source     Source   `json:"source"`
	Confidence float64  `json:"confidence"`
	Status     Status   `json:"status"`
	Reason     string   `json:"reason"`
}

// IsPII reports whether the outcome counts as personal data anywhere in the
// provenance graph. A needs_confirmation result is explicitly not yet PII.
func (o Outcome) IsPII() bool {
	if o.Type == TypeNone || o.Type == "" {
		return false
	}
	return o.Status == StatusAutoClassified || o.Status == StatusConfirmed
}
