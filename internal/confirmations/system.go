package confirmations

import (
	"context"

	"github.com/google/uuid"

	"github.com/privata-io/privata/internal/pii"
	"github.com/privata-io/privata/pkg/pagination"
)

// System defines the public contract for the confirmation workflow.
type System interface {
	Handler() *Handler

	// Create raises a pending request for an uncertain classification.
	// At most one pending request exists per field; if one is already
	// open for the same locator and field name, it is returned unchanged.
	Create(ctx context.Context, ident pii.FieldIdentity, out pii.Outcome) (*Request, error)

	// RecordDiscard writes an audit row for a classification that fell
	// below the confirmation threshold. Discard rows never enter the
	// review queue.
	RecordDiscard(ctx context.Context, ident pii.FieldIdentity, out pii.Outcome) error

	Find(ctx context.Context, id uuid.UUID) (*Request, error)
	List(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[Request], error)
	Pending(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[Request], error)
	Resolved(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[Request], error)
	Discarded(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[Request], error)

	// Resolve applies a reviewer decision to a pending request. YES and NO
	// update the learned rule store in the same transaction; the provenance
	// graph is updated after commit on a best-effort basis.
	Resolve(ctx context.Context, id uuid.UUID, res Resolution) (*Request, error)

	// Override reverses a settled CONFIRMED or REJECTED decision. The old
	// row is marked OVERRIDDEN and a new decision row is chained to it.
	Override(ctx context.Context, id uuid.UUID, ov Override) (*Request, error)
}
