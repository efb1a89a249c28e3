package submissions

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/warden/internal/verification"
)

var (
	ErrNotFound     = errors.New("submission not found")
	ErrDuplicate    = errors.New("submission already recorded")
	ErrFileTooLarge = errors.New("file exceeds maximum upload size")
	ErrInvalidFile  = errors.New("invalid file")
	ErrMissingUser  = errors.New("user id required")
	ErrRejected     = errors.New("submission rejected by moderation")
)

// MapHTTPStatus maps submission and verification errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate), errors.Is(err, verification.ErrActive):
		return http.StatusConflict
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrInvalidFile),
		errors.Is(err, ErrMissingUser),
		errors.Is(err, verification.ErrUnsupportedContent):
		return http.StatusBadRequest
	case errors.Is(err, ErrRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, verification.ErrModerationFailed),
		errors.Is(err, verification.ErrInvalidDecision):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
