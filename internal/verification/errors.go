package verification

import (
	"errors"

	"github.com/JaimeStill/warden/internal/moderation"
	"github.com/JaimeStill/warden/internal/sessions"
)

var (
	// ErrUnsupportedContent indicates a declared content type with no
	// extraction path.
	ErrUnsupportedContent = errors.New("unsupported content type")
	// ErrGraphFailed indicates the pipeline graph could not run.
	ErrGraphFailed = errors.New("verification graph failed")

	ErrModerationFailed = moderation.ErrModerationFailed
	ErrInvalidDecision  = moderation.ErrInvalidDecision
	ErrActive           = sessions.ErrActive
)
