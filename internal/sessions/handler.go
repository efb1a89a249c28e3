package sessions

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/warden/pkg/handlers"
	"github.com/JaimeStill/warden/pkg/routes"
)

// Handler exposes read-only session lookups.
type Handler struct {
	registry Registry
	logger   *slog.Logger
}

func NewHandler(registry Registry, logger *slog.Logger) *Handler {
	return &Handler{
		registry: registry,
		logger:   logger.With("handler", "sessions"),
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/sessions",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
		},
	}
}

func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	s, err := h.registry.Find(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, s)
}
