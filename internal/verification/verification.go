// Package verification gates publication on moderation. Verify resolves
// the extraction variant, drives the session through the stage machine,
// and returns a terminal Result that the caller alone acts upon.
package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/warden/internal/extraction"
	"github.com/JaimeStill/warden/internal/moderation"
	"github.com/JaimeStill/warden/internal/progress"
	"github.com/JaimeStill/warden/internal/sessions"
)

// Deps are the collaborators an Orchestrator drives.
type Deps struct {
	Registry  sessions.Registry
	Reporter  Reporter
	Extractor Extractor
	Decider   Decider
	Observers []Observer
}

// Orchestrator runs verification. It is safe for concurrent use across
// distinct submission ids.
type Orchestrator struct {
	registry  sessions.Registry
	reporter  Reporter
	extractor Extractor
	decider   Decider
	observers []Observer
	logger    *slog.Logger
	now       func() time.Time
}

// New creates an Orchestrator.
func New(deps Deps, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		registry:  deps.Registry,
		reporter:  deps.Reporter,
		extractor: deps.Extractor,
		decider:   deps.Decider,
		observers: deps.Observers,
		logger:    logger.With("system", "verification"),
		now:       time.Now,
	}
}

// Verify runs the pipeline for sub and blocks until a terminal stage.
// Rejection and review are Results, not errors. A non-nil error always
// comes with an error-stage Result, except ErrActive, which returns no
// Result because the session belongs to another call.
func (o *Orchestrator) Verify(ctx context.Context, sub Submission) (*Result, error) {
	if sub.SubmissionID == "" {
		sub.SubmissionID = uuid.NewString()
	}

	r := &run{
		sub:     sub,
		variant: extraction.Resolve(sub.ContentType, sub.MimeType),
	}

	if _, err := o.registry.Register(sub.SubmissionID, sub.UserID); err != nil {
		return nil, err
	}
	defer o.registry.Clear(sub.SubmissionID)

	defer func() {
		if p := recover(); p != nil {
			o.fail(ctx, r, fmt.Errorf("panic: %v", p))
			panic(p)
		}
	}()

	o.logger.InfoContext(ctx, "verification started",
		"submission_id", sub.SubmissionID,
		"variant", r.variant,
		"content_type", sub.ContentType,
		"mime_type", sub.MimeType,
	)

	var (
		result *Result
		err    error
	)

	switch r.variant {
	case extraction.Live:
		result = o.result(r, progress.Complete, 100, nil)
		result.Approved = true
		result.Verified = false
	case extraction.Unsupported:
		o.advance(ctx, r, progress.Queued, "")
		result, err = o.fail(ctx, r, fmt.Errorf("%w: %q", ErrUnsupportedContent, sub.ContentType))
	case extraction.Video, extraction.Audio, extraction.PDF, extraction.EPUB, extraction.MetadataOnly:
		o.advance(ctx, r, progress.Queued, "")
		result, err = o.execute(ctx, r)
	}

	for _, observe := range o.observers {
		observe(ctx, *result)
	}
	return result, err
}

func (o *Orchestrator) execute(ctx context.Context, r *run) (*Result, error) {
	graph, err := o.buildGraph(r)
	if err != nil {
		return o.fail(ctx, r, fmt.Errorf("%w: build: %w", ErrGraphFailed, err))
	}

	final, err := graph.Execute(ctx, state.New(nil))
	if err != nil {
		if r.fault != nil {
			return o.fail(ctx, r, r.fault)
		}
		return o.fail(ctx, r, fmt.Errorf("%w: %w", ErrGraphFailed, err))
	}

	decision, err := decisionFrom(final)
	if err != nil {
		return o.fail(ctx, r, err)
	}

	stage := terminalStage(decision)
	pct := o.advance(ctx, r, stage, stageMessage(stage, decision.Reason))

	o.logger.InfoContext(ctx, "verification finished",
		"submission_id", r.sub.SubmissionID,
		"variant", r.variant,
		"stage", stage,
		"confidence", decision.Confidence,
	)

	result := o.result(r, stage, pct, &decision)
	result.Approved = decision.Approved
	result.Verified = true
	return result, nil
}

// fail moves the session to the error stage, keeping its last progress.
func (o *Orchestrator) fail(ctx context.Context, r *run, err error) (*Result, error) {
	pct := o.advance(ctx, r, progress.Error, failureMessage(err))

	o.logger.ErrorContext(ctx, "verification failed",
		"submission_id", r.sub.SubmissionID,
		"variant", r.variant,
		"stage", progress.Error,
		"error", err,
	)

	return o.result(r, progress.Error, pct, nil), err
}

// advance records stage in the registry and reports the clamped progress.
func (o *Orchestrator) advance(ctx context.Context, r *run, stage progress.Stage, message string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	pct, err := o.registry.Advance(r.sub.SubmissionID, stage, stage.Percent())
	if err != nil {
		o.logger.WarnContext(ctx, "session advance failed", "submission_id", r.sub.SubmissionID, "stage", stage, "error", err)
		pct = stage.Percent()
	}

	if message == "" {
		message = stageMessage(stage, "")
	}
	if o.reporter != nil {
		o.reporter.Report(ctx, r.sub.UserID, r.sub.SubmissionID, stage, pct, message)
	}
	return pct
}

func (o *Orchestrator) result(r *run, stage progress.Stage, pct int, d *moderation.Decision) *Result {
	return &Result{
		SubmissionID: r.sub.SubmissionID,
		Stage:        stage,
		Variant:      r.variant.String(),
		Progress:     pct,
		Decision:     d,
		CompletedAt:  o.now().UTC(),
	}
}

func terminalStage(d moderation.Decision) progress.Stage {
	switch {
	case d.Approved:
		return progress.Complete
	case d.RequiresReview:
		return progress.ReviewRequired
	default:
		return progress.Rejected
	}
}

func stageMessage(stage progress.Stage, reason string) string {
	switch stage {
	case progress.Queued:
		return "submission queued for verification"
	case progress.Extracting:
		return "extracting content"
	case progress.Transcribing:
		return "transcribing audio"
	case progress.AnalyzingFrames:
		return "analyzing video frames"
	case progress.ExtractingText:
		return "extracting document text"
	case progress.Moderating:
		return "reviewing content"
	case progress.Complete:
		return "content approved"
	case progress.ReviewRequired:
		return "content held for manual review"
	case progress.Rejected:
		if reason != "" {
			return "content rejected: " + reason
		}
		return "content rejected"
	default:
		return "verification failed"
	}
}

func failureMessage(err error) string {
	switch {
	case errors.Is(err, ErrUnsupportedContent):
		return "unsupported content type"
	case errors.Is(err, ErrModerationFailed), errors.Is(err, ErrInvalidDecision):
		return "moderation unavailable, please try again"
	default:
		return "verification failed, please try again"
	}
}
