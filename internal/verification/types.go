package verification

import (
	"context"
	"time"

	"github.com/JaimeStill/warden/internal/extraction"
	"github.com/JaimeStill/warden/internal/moderation"
	"github.com/JaimeStill/warden/internal/progress"
)

// Submission is one verification request. SubmissionID is generated when empty.
type Submission struct {
	Data         []byte
	MimeType     string
	ContentType  extraction.ContentType
	Title        string
	Description  string
	SubmissionID string
	UserID       string
}

// Result is the terminal outcome of Verify.
type Result struct {
	SubmissionID string               `json:"submission_id"`
	Stage        progress.Stage       `json:"stage"`
	Variant      string               `json:"variant"`
	Progress     int                  `json:"progress"`
	Approved     bool                 `json:"approved"`
	Verified     bool                 `json:"verified"`
	Decision     *moderation.Decision `json:"decision,omitempty"`
	CompletedAt  time.Time            `json:"completed_at"`
}

// Observer reacts to a terminal result after the session has been cleared.
// Notification fan-out hangs off observers, never off the pipeline itself.
type Observer func(ctx context.Context, result Result)

// Extractor builds a signal bundle for a resolved variant.
type Extractor interface {
	Extract(ctx context.Context, variant extraction.Variant, in extraction.Input, notify extraction.Notify) extraction.Bundle
}

// Decider turns a bundle into a validated decision.
type Decider interface {
	Decide(ctx context.Context, bundle extraction.Bundle) (moderation.Decision, error)
}

// Reporter delivers progress to the submitting user.
type Reporter interface {
	Report(ctx context.Context, userID, submissionID string, stage progress.Stage, pct int, message string)
}
