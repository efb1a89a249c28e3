package api

import (
	"github.com/JaimeStill/warden/internal/config"
	"github.com/JaimeStill/warden/internal/infrastructure"
	"github.com/JaimeStill/warden/internal/progress"
)

// Runtime extends Infrastructure with the API-scoped push channel.
type Runtime struct {
	*infrastructure.Infrastructure
	Hub *progress.Hub
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	logger := infra.Logger.With("module", "api")
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    logger,
			Database:  infra.Database,
			Storage:   infra.Storage,
		},
		Hub: progress.NewHub(&cfg.Progress, logger),
	}
}
