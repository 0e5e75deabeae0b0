package confirmations

import (
	"github.com/privata-io/privata/pkg/query"
	"github.com/privata-io/privata/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "confirmation_requests", "c").
	Project("id", "ID").
	Project("source_type", "SourceType").
	Project("source_subtype", "SourceSubtype").
	Project("locator", "Locator").
	Project("field_name", "FieldName").
	Project("suggested_type", "SuggestedType").
	Project("category", "Category").
	Project("risk", "Risk").
	Project("confidence", "Confidence").
	Project("reason", "Reason").
	Project("status", "Status").
	Project("created_at", "CreatedAt").
	Project("resolved_at", "ResolvedAt").
	Project("resolved_by", "ResolvedBy").
	Project("override_reason", "OverrideReason").
	Project("overridden_by", "OverriddenBy").
	Project("overridden_at", "OverriddenAt").
	Project("previous_decision_id", "PreviousDecisionID")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// The review queue surfaces the strongest suggestions first.
var pendingSort = []query.SortField{
	{Field: "Confidence", Descending: true},
	{Field: "CreatedAt", Descending: true},
}

func scanRequest(s repository.Scanner) (Request, error) {
	var req Request
	err := s.Scan(
		&req.ID,
		&req.SourceType,
		&req.SourceSubtype,
		&req.Locator,
		&req.FieldName,
		&req.SuggestedType,
		&req.Category,
		&req.Risk,
		&req.Confidence,
		&req.Reason,
		&req.Status,
		&req.CreatedAt,
		&req.ResolvedAt,
		&req.ResolvedBy,
		&req.OverrideReason,
		&req.OverriddenBy,
		&req.OverriddenAt,
		&req.PreviousDecisionID,
	)
	return req, err
}
