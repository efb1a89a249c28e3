package progress

import (
	"context"
	"time"
)

// Event is a single progress notification addressed to one user.
type Event struct {
	SubmissionID string    `json:"submission_id"`
	Progress     int       `json:"progress"`
	Stage        Stage     `json:"stage"`
	Message      string    `json:"message,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// Channel delivers events to a user. Implementations must not block.
type Channel interface {
	Send(ctx context.Context, event Event, userID string) error
}

// ChannelFunc adapts a function to Channel.
type ChannelFunc func(ctx context.Context, event Event, userID string) error

func (f ChannelFunc) Send(ctx context.Context, event Event, userID string) error {
	return f(ctx, event, userID)
}
