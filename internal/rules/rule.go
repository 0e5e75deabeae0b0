// Package rules implements the learned rule store: durable, user-curated
// classifications keyed by lowercased field name. Rules generalize by name
// across all sources, are consulted before any probabilistic step, and are
// last-write-wins. The audit trail lives on confirmation requests, not here.
package rules

import "time"

// Rule fixes the classification of every field sharing a name.
type Rule struct {
	FieldName string    `json:"field_name"`
	IsPII     bool      `json:"is_pii"`
	Type      string    `json:"type"`
	UpdatedAt time.Time `json:"updated_at"`
}
