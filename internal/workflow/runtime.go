// Package workflow assembles the verification pipeline from configuration.
// The server and the CLI share one Runtime construction path.
package workflow

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/warden/internal/config"
	"github.com/JaimeStill/warden/internal/extraction"
	"github.com/JaimeStill/warden/internal/media"
	"github.com/JaimeStill/warden/internal/moderation"
	"github.com/JaimeStill/warden/internal/sessions"
	"github.com/JaimeStill/warden/internal/verification"
)

// Runtime bundles the collaborators an Orchestrator drives.
type Runtime struct {
	Registry  sessions.Registry
	Extractor *extraction.Extractor
	Decider   *moderation.Client
	Logger    *slog.Logger
}

// Options overrides collaborators built from configuration. Zero fields
// fall back to the configured defaults.
type Options struct {
	Collaborators *extraction.Collaborators
	Engine        moderation.Engine
	HTTPClient    *http.Client
}

// NewRuntime builds the extraction and moderation collaborators described
// by cfg. cfg must already be finalized.
func NewRuntime(cfg *config.Config, opts Options, logger *slog.Logger) (*Runtime, error) {
	collab := defaultCollaborators(&cfg.Verification.Media, opts.HTTPClient, logger)
	if opts.Collaborators != nil {
		collab = *opts.Collaborators
	}

	engine := opts.Engine
	if engine == nil {
		var err error
		engine, err = moderation.NewEngine(&cfg.Moderation, cfg.Agent, logger)
		if err != nil {
			return nil, fmt.Errorf("moderation engine: %w", err)
		}
	}

	return &Runtime{
		Registry:  sessions.New(),
		Extractor: extraction.New(&cfg.Verification.Extraction, collab, logger),
		Decider:   moderation.NewClient(engine, logger),
		Logger:    logger,
	}, nil
}

// Orchestrator creates an Orchestrator reporting through reporter. A nil
// reporter disables progress delivery.
func (rt *Runtime) Orchestrator(reporter verification.Reporter, observers ...verification.Observer) *verification.Orchestrator {
	return verification.New(verification.Deps{
		Registry:  rt.Registry,
		Reporter:  reporter,
		Extractor: rt.Extractor,
		Decider:   rt.Decider,
		Observers: observers,
	}, rt.Logger)
}

func defaultCollaborators(cfg *media.Config, client *http.Client, logger *slog.Logger) extraction.Collaborators {
	ff := media.NewFFmpeg(cfg, nil, logger)
	collab := extraction.Collaborators{
		Frames:  ff,
		Demuxer: ff,
	}
	if tc := media.NewTranscriptionClient(cfg, client); tc != nil {
		collab.Transcriber = tc
	} else {
		logger.Warn("no transcription endpoint configured, transcripts will be empty")
	}
	return collab
}
