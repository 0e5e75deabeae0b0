package confirmations

import (
	"errors"
	"net/http"
)

var (
	// ErrNotFound indicates no confirmation request with the given id.
	ErrNotFound = errors.New("confirmation request not found")

	// ErrDuplicate indicates a pending request already exists for the field.
	ErrDuplicate = errors.New("pending request already exists for field")

	// ErrAlreadyResolved indicates a resolve attempt on a non-pending request.
	ErrAlreadyResolved = errors.New("confirmation request already resolved")

	// ErrPendingOverride indicates an override attempt on a pending request.
	// Pending requests must go through resolution first.
	ErrPendingOverride = errors.New("cannot override a pending request")

	// ErrNotOverridable indicates an override attempt on a request whose
	// status is neither CONFIRMED nor REJECTED.
	ErrNotOverridable = errors.New("only confirmed or rejected decisions can be overridden")

	// ErrInvalidDecision indicates a decision outside YES, NO, NOT_SURE.
	ErrInvalidDecision = errors.New("invalid decision")

	// ErrReasonRequired indicates an override without a justification.
	ErrReasonRequired = errors.New("override reason required")
)

// MapHTTPStatus converts confirmation errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrAlreadyResolved):
		return http.StatusConflict
	case errors.Is(err, ErrPendingOverride),
		errors.Is(err, ErrNotOverridable),
		errors.Is(err, ErrInvalidDecision),
		errors.Is(err, ErrReasonRequired):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
