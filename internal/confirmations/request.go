// Package confirmations implements the human review workflow for uncertain
// classifications. Requests are append-only: resolving or overriding never
// rewrites history, it closes the current row and (for overrides) chains a
// new decision row to it through previous_decision_id.
package confirmations

import (
	"time"

	"github.com/google/uuid"

	"github.com/privata-io/privata/internal/pii"
)

// Status is the workflow state of a confirmation request.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusConfirmed  Status = "CONFIRMED"
	StatusRejected   Status = "REJECTED"
	StatusSkipped    Status = "SKIPPED"
	StatusOverridden Status = "OVERRIDDEN"
	StatusDiscarded  Status = "DISCARDED"
)

// Decision is a reviewer's answer to a pending request.
type Decision string

const (
	DecisionYes     Decision = "YES"
	DecisionNo      Decision = "NO"
	DecisionNotSure Decision = "NOT_SURE"
)

// Valid reports whether the decision is one of the accepted values.
func (d Decision) Valid() bool {
	return d == DecisionYes || d == DecisionNo || d == DecisionNotSure
}

// Request is one row in the confirmation audit trail.
type Request struct {
	ID                 uuid.UUID    `json:"id"`
	SourceType         string       `json:"source_type"`
	SourceSubtype      string       `json:"source_subtype"`
	Locator            string       `json:"locator"`
	FieldName          string       `json:"field_name"`
	SuggestedType      string       `json:"suggested_type"`
	Category           pii.Category `json:"category"`
	Risk               pii.Risk     `json:"risk"`
	Confidence         float64      `json:"confidence"`
	Reason             string       `json:"reason"`
	Status             Status       `json:"status"`
	CreatedAt          time.Time    `json:"created_at"`
	ResolvedAt         *time.Time   `json:"resolved_at,omitempty"`
	ResolvedBy         *string      `json:"resolved_by,omitempty"`
	OverrideReason     *string      `json:"override_reason,omitempty"`
	OverriddenBy       *string      `json:"overridden_by,omitempty"`
	OverriddenAt       *time.Time   `json:"overridden_at,omitempty"`
	PreviousDecisionID *uuid.UUID   `json:"previous_decision_id,omitempty"`
}

// Identity returns the field identity the request was raised for.
func (r *Request) Identity() pii.FieldIdentity {
	return pii.FieldIdentity{
		SourceType:    r.SourceType,
		SourceSubtype: r.SourceSubtype,
		Locator:       r.Locator,
		FieldName:     r.FieldName,
	}
}

// Resolution carries a reviewer's answer to a pending request.
type Resolution struct {
	Decision      Decision `json:"decision"`
	ConfirmedType string   `json:"confirmed_type,omitempty"`
	ResolvedBy    string   `json:"resolved_by"`
}

// Override carries a supervisor's reversal of a settled decision.
// Reason is mandatory; overrides without justification are rejected.
type Override struct {
	Decision     Decision `json:"decision"`
	Type         string   `json:"type,omitempty"`
	Reason       string   `json:"reason"`
	OverriddenBy string   `json:"overridden_by"`
}
