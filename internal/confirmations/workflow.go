package confirmations

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/privata-io/privata/internal/pii"
)

// ruleChange is the learned-rule write a reviewer decision implies.
type ruleChange struct {
	fieldName string
	isPII     bool
	piiType   string
}

// applyResolution applies a reviewer decision to a pending request in place
// and returns the learned-rule write it implies, nil when the decision
// teaches nothing.
func applyResolution(req *Request, res Resolution, now time.Time) (*ruleChange, error) {
	if !res.Decision.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDecision, res.Decision)
	}
	if req.Status != StatusPending {
		return nil, fmt.Errorf("%w: status is %s", ErrAlreadyResolved, req.Status)
	}

	req.ResolvedAt = &now
	req.ResolvedBy = &res.ResolvedBy

	switch res.Decision {
	case DecisionYes:
		req.Status = StatusConfirmed
		if res.ConfirmedType != "" {
			req.SuggestedType = res.ConfirmedType
		}
		req.Category = pii.CategoryForType(req.SuggestedType)
		req.Risk = pii.RiskForCategory(req.Category)
		return &ruleChange{fieldName: req.FieldName, isPII: true, piiType: req.SuggestedType}, nil
	case DecisionNo:
		req.Status = StatusRejected
		return &ruleChange{fieldName: req.FieldName, isPII: false, piiType: pii.TypeNone}, nil
	default:
		req.Status = StatusSkipped
		return nil, nil
	}
}

// buildOverride validates that prev is a settled decision and produces the
// replacement row chained to it through PreviousDecisionID. Override metadata
// lives on the replacement row; prev itself is never modified here, the only
// change it takes is its status flipping to OVERRIDDEN at write time.
func buildOverride(prev *Request, ov Override, now time.Time) (*Request, *ruleChange, error) {
	if ov.Decision != DecisionYes && ov.Decision != DecisionNo {
		return nil, nil, fmt.Errorf("%w: %q", ErrInvalidDecision, ov.Decision)
	}
	if ov.Reason == "" {
		return nil, nil, ErrReasonRequired
	}

	switch prev.Status {
	case StatusPending:
		return nil, nil, ErrPendingOverride
	case StatusConfirmed, StatusRejected:
	default:
		return nil, nil, fmt.Errorf("%w: status is %s", ErrNotOverridable, prev.Status)
	}

	next := &Request{
		ID:                 uuid.New(),
		SourceType:         prev.SourceType,
		SourceSubtype:      prev.SourceSubtype,
		Locator:            prev.Locator,
		FieldName:          prev.FieldName,
		SuggestedType:      prev.SuggestedType,
		Confidence:         1.0,
		Reason:             "Override: " + ov.Reason,
		CreatedAt:          now,
		ResolvedAt:         &now,
		ResolvedBy:         &ov.OverriddenBy,
		OverrideReason:     &ov.Reason,
		OverriddenBy:       &ov.OverriddenBy,
		OverriddenAt:       &now,
		PreviousDecisionID: &prev.ID,
	}

	var change *ruleChange
	switch ov.Decision {
	case DecisionYes:
		next.Status = StatusConfirmed
		if ov.Type != "" {
			next.SuggestedType = ov.Type
		}
		next.Category = pii.CategoryForType(next.SuggestedType)
		next.Risk = pii.RiskForCategory(next.Category)
		change = &ruleChange{fieldName: next.FieldName, isPII: true, piiType: next.SuggestedType}
	case DecisionNo:
		next.Status = StatusRejected
		next.Category = prev.Category
		next.Risk = prev.Risk
		change = &ruleChange{fieldName: next.FieldName, isPII: false, piiType: pii.TypeNone}
	}

	return next, change, nil
}
