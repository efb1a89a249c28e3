package api

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/warden/pkg/handlers"
	"github.com/JaimeStill/warden/pkg/routes"
	"github.com/JaimeStill/warden/pkg/storage"
)

// assetInfo reports whether a stored asset exists and where to fetch it.
type assetInfo struct {
	Key    string `json:"key"`
	Exists bool   `json:"exists"`
	URL    string `json:"url"`
}

type storageHandler struct {
	store  storage.System
	logger *slog.Logger
}

func newStorageHandler(store storage.System, logger *slog.Logger) *storageHandler {
	return &storageHandler{
		store:  store,
		logger: logger.With("handler", "storage"),
	}
}

func (h *storageHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/storage",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{key...}", Handler: h.find},
		},
	}
}

func (h *storageHandler) find(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	exists, err := h.store.Exists(r.Context(), key)
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}
	if !exists {
		handlers.RespondError(w, h.logger, http.StatusNotFound, storage.ErrNotFound)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, assetInfo{
		Key:    key,
		Exists: true,
		URL:    h.store.URL(key),
	})
}
