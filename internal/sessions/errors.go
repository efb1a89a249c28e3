package sessions

import (
	"errors"
	"net/http"
)

var (
	ErrActive   = errors.New("verification already active for submission")
	ErrNotFound = errors.New("session not found")
)

// MapHTTPStatus maps session errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrActive):
		return http.StatusConflict
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
