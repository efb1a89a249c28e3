package submissions

import (
	"context"

	"github.com/JaimeStill/warden/internal/verification"
)

// Verifier runs the verification pipeline for one submission.
type Verifier interface {
	Verify(ctx context.Context, sub verification.Submission) (*verification.Result, error)
}

// System defines the submission domain operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	// Submit verifies cmd and records it when the result permits
	// publication. A returned Outcome may accompany a non-nil error so
	// callers can surface the terminal Result.
	Submit(ctx context.Context, cmd SubmitCommand) (*Outcome, error)
	Find(ctx context.Context, submissionID string) (*Submission, error)
}
