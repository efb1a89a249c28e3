package progress

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Reporter stamps and sends events. Delivery failures are logged and dropped.
type Reporter struct {
	channel Channel
	logger  *slog.Logger
	now     func() time.Time
}

// NewReporter creates a Reporter. A nil channel makes Report a log-only no-op.
func NewReporter(channel Channel, logger *slog.Logger) *Reporter {
	return &Reporter{
		channel: channel,
		logger:  logger.With("system", "progress"),
		now:     time.Now,
	}
}

// Report sends stage and progress for a submission to userID.
func (r *Reporter) Report(ctx context.Context, userID, submissionID string, stage Stage, progress int, message string) {
	if r.channel == nil {
		return
	}

	event := Event{
		SubmissionID: submissionID,
		Progress:     progress,
		Stage:        stage,
		Message:      message,
		Timestamp:    r.now().UTC(),
	}

	err := r.channel.Send(ctx, event, userID)
	switch {
	case err == nil:
	case errors.Is(err, ErrNoSubscriber):
		r.logger.DebugContext(ctx, "progress dropped", "submission_id", submissionID, "stage", stage, "error", err)
	default:
		r.logger.WarnContext(ctx, "progress delivery failed", "submission_id", submissionID, "stage", stage, "error", err)
	}
}
