package api

import (
	"context"

	"github.com/JaimeStill/warden/internal/config"
	"github.com/JaimeStill/warden/internal/progress"
	"github.com/JaimeStill/warden/internal/sessions"
	"github.com/JaimeStill/warden/internal/submissions"
	"github.com/JaimeStill/warden/internal/verification"
	"github.com/JaimeStill/warden/internal/workflow"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Sessions    sessions.Registry
	Verifier    *verification.Orchestrator
	Submissions submissions.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(cfg *config.Config, runtime *Runtime, opts workflow.Options) (*Domain, error) {
	rt, err := workflow.NewRuntime(cfg, opts, runtime.Logger)
	if err != nil {
		return nil, err
	}

	verifier := rt.Orchestrator(
		progress.NewReporter(runtime.Hub, runtime.Logger),
		logOutcome(runtime),
	)

	return &Domain{
		Sessions: rt.Registry,
		Verifier: verifier,
		Submissions: submissions.New(
			runtime.Database.Connection(),
			runtime.Storage,
			verifier,
			runtime.Logger,
		),
	}, nil
}

func logOutcome(runtime *Runtime) verification.Observer {
	logger := runtime.Logger.With("observer", "outcome")
	return func(ctx context.Context, r verification.Result) {
		logger.InfoContext(ctx, "verification outcome",
			"submission_id", r.SubmissionID,
			"stage", r.Stage,
			"variant", r.Variant,
			"approved", r.Approved,
			"verified", r.Verified,
		)
	}
}
