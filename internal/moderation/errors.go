package moderation

import "errors"

var (
	// ErrModerationFailed indicates the engine returned no decision.
	ErrModerationFailed = errors.New("moderation failed")
	// ErrInvalidDecision indicates the engine broke the decision contract.
	ErrInvalidDecision = errors.New("invalid moderation decision")
	// ErrUnknownEngine indicates an unsupported engine was configured.
	ErrUnknownEngine = errors.New("unknown moderation engine")
)
