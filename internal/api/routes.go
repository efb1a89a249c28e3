package api

import (
	"net/http"

	"github.com/JaimeStill/warden/internal/config"
	"github.com/JaimeStill/warden/internal/progress"
	"github.com/JaimeStill/warden/internal/sessions"
	"github.com/JaimeStill/warden/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) {
	routes.Register(
		mux,
		domain.Submissions.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
		progress.NewHandler(runtime.Hub, runtime.Logger).Routes(),
		sessions.NewHandler(domain.Sessions, runtime.Logger).Routes(),
		newStorageHandler(runtime.Storage, runtime.Logger).routes(),
	)
}
