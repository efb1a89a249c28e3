// Package submissions accepts content uploads, gates them through
// verification, and records the assets that were cleared for publication.
package submissions

import (
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/warden/internal/extraction"
	"github.com/JaimeStill/warden/internal/progress"
	"github.com/JaimeStill/warden/internal/verification"
)

// Status is the publication state of a recorded submission.
type Status string

const (
	StatusPublished Status = "published"
	StatusReview    Status = "review"
	StatusLive      Status = "live"
)

// StatusFor maps a terminal verification result to a publication status.
// The second return is false when the result must not be recorded.
func StatusFor(r *verification.Result) (Status, bool) {
	if r == nil {
		return "", false
	}
	switch r.Stage {
	case progress.Complete:
		if !r.Verified {
			return StatusLive, true
		}
		return StatusPublished, true
	case progress.ReviewRequired:
		return StatusReview, true
	default:
		return "", false
	}
}

// Submission is a recorded asset that passed, or is pending, moderation.
type Submission struct {
	ID           uuid.UUID `json:"id"`
	SubmissionID string    `json:"submission_id"`
	UserID       string    `json:"user_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	ContentType  string    `json:"content_type"`
	MimeType     string    `json:"mime_type"`
	Variant      string    `json:"variant"`
	Filename     string    `json:"filename"`
	SizeBytes    int64     `json:"size_bytes"`
	PageCount    *int      `json:"page_count"`
	StorageKey   *string   `json:"storage_key"`
	URL          string    `json:"url,omitempty"`
	Status       Status    `json:"status"`
	Verified     bool      `json:"verified"`
	Confidence   *float64  `json:"confidence"`
	Reason       string    `json:"reason"`
	Flags        []string  `json:"flags"`
	CreatedAt    time.Time `json:"created_at"`
}

// SubmitCommand carries an upload into verification. Data may be empty
// for live content.
type SubmitCommand struct {
	Data         []byte
	Filename     string
	MimeType     string
	ContentType  extraction.ContentType
	Title        string
	Description  string
	SubmissionID string
	UserID       string
	PageCount    *int
}

// Outcome pairs the verification result with the stored record, if any.
type Outcome struct {
	Result     *verification.Result `json:"result,omitempty"`
	Submission *Submission          `json:"submission,omitempty"`
	Error      string               `json:"error,omitempty"`
}
