package moderation

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/JaimeStill/warden/internal/extraction"
)

// Client makes one blocking call to an Engine per bundle. It does not retry.
type Client struct {
	engine Engine
	logger *slog.Logger
}

// NewClient creates a Client for engine.
func NewClient(engine Engine, logger *slog.Logger) *Client {
	return &Client{
		engine: engine,
		logger: logger.With("system", "moderation"),
	}
}

// Decide moderates bundle. Engine errors wrap ErrModerationFailed and
// contract violations wrap ErrInvalidDecision.
func (c *Client) Decide(ctx context.Context, bundle extraction.Bundle) (Decision, error) {
	req := NewRequest(bundle)

	resp, err := c.engine.Moderate(ctx, req)
	if err != nil {
		return Decision{}, fmt.Errorf("%w: %w", ErrModerationFailed, err)
	}

	d, err := validate(resp)
	if err != nil {
		c.logger.WarnContext(ctx, "engine broke decision contract", "error", err)
		return Decision{}, err
	}

	c.logger.InfoContext(ctx, "moderation decided",
		"approved", d.Approved,
		"requires_review", d.RequiresReview,
		"confidence", d.Confidence,
		"flags", d.Flags,
	)
	return d, nil
}

// NewRequest maps a bundle to an engine request.
func NewRequest(b extraction.Bundle) Request {
	transcript := b.Transcript
	if transcript == "" {
		transcript = b.DocumentText
	}

	return Request{
		Transcript:  transcript,
		VideoFrames: b.Frames,
		Title:       b.Title,
		Description: b.Description,
		ContentType: string(b.ContentType),
	}
}

func validate(r Response) (Decision, error) {
	if r.IsApproved && r.RequiresReview {
		return Decision{}, fmt.Errorf("%w: approved and requires review", ErrInvalidDecision)
	}
	if math.IsNaN(r.Confidence) || r.Confidence < 0 || r.Confidence > 1 {
		return Decision{}, fmt.Errorf("%w: confidence %v outside [0, 1]", ErrInvalidDecision, r.Confidence)
	}

	flags := r.Flags
	if flags == nil {
		flags = []string{}
	}

	return Decision{
		Approved:       r.IsApproved,
		RequiresReview: r.RequiresReview,
		Confidence:     r.Confidence,
		Reason:         r.Reason,
		Flags:          flags,
	}, nil
}
