package rules

import (
	"context"

	"github.com/privata-io/privata/pkg/pagination"
)

// System defines the public contract for learned rule operations.
type System interface {
	Handler() *Handler

	// Lookup returns the rule for a field name, or ErrNotFound.
	// Matching is case-insensitive.
	Lookup(ctx context.Context, fieldName string) (*Rule, error)

	// Upsert records the latest human judgment for a field name.
	Upsert(ctx context.Context, fieldName string, isPII bool, piiType string) error

	List(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[Rule], error)
	Delete(ctx context.Context, fieldName string) error
}
