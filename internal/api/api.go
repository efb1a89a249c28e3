// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/warden/internal/config"
	"github.com/JaimeStill/warden/internal/infrastructure"
	"github.com/JaimeStill/warden/internal/workflow"
	"github.com/JaimeStill/warden/pkg/middleware"
	"github.com/JaimeStill/warden/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// The progress hub is registered with the lifecycle so streams close on shutdown.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure, opts workflow.Options) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)

	domain, err := NewDomain(cfg, runtime, opts)
	if err != nil {
		return nil, fmt.Errorf("api domain: %w", err)
	}

	if err := runtime.Hub.Start(runtime.Lifecycle); err != nil {
		return nil, fmt.Errorf("progress hub: %w", err)
	}

	mux := http.NewServeMux()
	registerRoutes(mux, domain, cfg, runtime)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))

	return m, nil
}
