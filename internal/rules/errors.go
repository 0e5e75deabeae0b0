package rules

import (
	"errors"
	"net/http"
)

// Domain errors for learned rule operations.
var (
	ErrNotFound  = errors.New("rule not found")
	ErrDuplicate = errors.New("rule already exists")
)

// MapHTTPStatus maps rule domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
