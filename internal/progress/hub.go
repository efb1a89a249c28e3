package progress

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/JaimeStill/warden/pkg/lifecycle"
)

type subscriber struct {
	events chan Event
}

// Hub is an in-memory Channel that fans events out to each user's open
// streams. Every stream has its own bounded buffer and Send never blocks.
type Hub struct {
	mu        sync.RWMutex
	subs      map[string]map[*subscriber]struct{}
	closed    bool
	buffer    int
	heartbeat time.Duration
	logger    *slog.Logger
}

// NewHub creates a Hub from a finalized Config.
func NewHub(cfg *Config, logger *slog.Logger) *Hub {
	return &Hub{
		subs:      make(map[string]map[*subscriber]struct{}),
		buffer:    cfg.BufferSize,
		heartbeat: cfg.HeartbeatDuration(),
		logger:    logger.With("system", "progress-hub"),
	}
}

// Start closes every subscriber when the coordinator shuts down.
func (h *Hub) Start(lc *lifecycle.Coordinator) error {
	lc.OnShutdown(func() {
		h.Close()
		h.logger.Info("progress hub closed")
	})
	return nil
}

// Subscribe opens a stream for userID. The returned cancel func releases it
// and is safe to call after Close.
func (h *Hub) Subscribe(userID string) (<-chan Event, func(), error) {
	if userID == "" {
		return nil, nil, ErrMissingUser
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, nil, ErrClosed
	}

	sub := &subscriber{events: make(chan Event, h.buffer)}
	set, ok := h.subs[userID]
	if !ok {
		set = make(map[*subscriber]struct{})
		h.subs[userID] = set
	}
	set[sub] = struct{}{}

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if set, ok := h.subs[userID]; ok {
			if _, live := set[sub]; live {
				delete(set, sub)
				close(sub.events)
				if len(set) == 0 {
					delete(h.subs, userID)
				}
			}
		}
	}

	return sub.events, cancel, nil
}

// Subscribers returns the number of open streams for userID.
func (h *Hub) Subscribers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}

// Send delivers event to every stream of userID without blocking. Streams
// with a full buffer miss the event and ErrBufferFull is returned.
func (h *Hub) Send(ctx context.Context, event Event, userID string) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return ErrClosed
	}

	set := h.subs[userID]
	if len(set) == 0 {
		return ErrNoSubscriber
	}

	dropped := 0
	for sub := range set {
		select {
		case sub.events <- event:
		default:
			dropped++
		}
	}

	if dropped > 0 {
		return ErrBufferFull
	}
	return nil
}

// Close ends every stream. Later Subscribe and Send calls return ErrClosed.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	for userID, set := range h.subs {
		for sub := range set {
			close(sub.events)
		}
		delete(h.subs, userID)
	}
}
