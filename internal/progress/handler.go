package progress

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/JaimeStill/warden/pkg/handlers"
	"github.com/JaimeStill/warden/pkg/routes"
)

// UserHeader carries the caller's user id.
const UserHeader = "X-User-ID"

// Handler streams a user's progress events as Server-Sent Events.
type Handler struct {
	hub    *Hub
	logger *slog.Logger
}

// NewHandler creates a Handler for hub.
func NewHandler(hub *Hub, logger *slog.Logger) *Handler {
	return &Handler{
		hub:    hub,
		logger: logger.With("handler", "progress"),
	}
}

// Routes returns the route group for the progress stream.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/progress",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.Stream},
		},
	}
}

// Stream holds the connection open and writes each event as a "progress"
// SSE message. Browsers cannot set headers on EventSource, so the user id
// may also arrive as the user_id query parameter.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(UserHeader)
	if userID == "" {
		userID = r.URL.Query().Get("user_id")
	}

	events, cancel, err := h.hub.Subscribe(userID)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, ErrClosed) {
			status = http.StatusServiceUnavailable
		}
		handlers.RespondError(w, h.logger, status, err)
		return
	}
	defer cancel()

	rc := http.NewResponseController(w)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		h.logger.Warn("stream flush unsupported", "error", err)
		return
	}

	ticker := time.NewTicker(h.hub.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				h.logger.Error("encode progress event", "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: progress\ndata: %s\n\n", data); err != nil {
				return
			}
			rc.Flush()
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": heartbeat\n\n"); err != nil {
				return
			}
			rc.Flush()
		}
	}
}
