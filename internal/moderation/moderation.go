// Package moderation wraps the external decision engine behind a client
// that validates every decision before it reaches the pipeline.
package moderation

import "context"

// Decision is a validated moderation verdict. Approved and RequiresReview
// are never both true; neither true means rejected.
type Decision struct {
	Approved       bool     `json:"approved"`
	RequiresReview bool     `json:"requires_review"`
	Confidence     float64  `json:"confidence"`
	Reason         string   `json:"reason"`
	Flags          []string `json:"flags"`
}

// Rejected reports whether the decision disallows the content outright.
func (d Decision) Rejected() bool {
	return !d.Approved && !d.RequiresReview
}

// Request is the engine input. Document text travels in Transcript.
type Request struct {
	Transcript  string   `json:"transcript,omitempty"`
	VideoFrames []string `json:"video_frames,omitempty"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ContentType string   `json:"content_type"`
}

// Response is the raw engine output before validation.
type Response struct {
	IsApproved     bool     `json:"is_approved"`
	RequiresReview bool     `json:"requires_review"`
	Confidence     float64  `json:"confidence"`
	Reason         string   `json:"reason"`
	Flags          []string `json:"flags"`
}

// Engine computes a moderation verdict.
type Engine interface {
	Moderate(ctx context.Context, req Request) (Response, error)
}

// EngineFunc adapts a function to Engine.
type EngineFunc func(ctx context.Context, req Request) (Response, error)

func (f EngineFunc) Moderate(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}
