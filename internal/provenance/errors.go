package provenance

import (
	"errors"
	"net/http"

	"github.com/privata-io/privata/internal/graph"
)

var (
	// ErrNotClassifiable indicates an outcome that must not reach the graph.
	ErrNotClassifiable = errors.New("outcome is not an active PII classification")

	// ErrAssetIDRequired indicates an asset upsert without an identifier.
	ErrAssetIDRequired = errors.New("asset id required")
)

// MapHTTPStatus converts provenance errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, graph.ErrNodeNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAssetIDRequired), errors.Is(err, ErrNotClassifiable):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
