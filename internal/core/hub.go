package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/olegsm/talkie-server/internal/replyengine"
	"github.com/olegsm/talkie-server/internal/store"
)

// Hub owns the connection registry and coordinates real-time relay between
// clients. Registration and eviction go through the hub's run loop; commands
// from each client are processed in arrival order by a per-client goroutine,
// so one connection's storage round-trips never stall another's.
type Hub struct {
	registry     *Registry
	presence     *PresenceOracle
	store        store.Store
	replies      replyengine.Engine
	replyTimeout time.Duration
	log          zerolog.Logger

	register   chan *Client
	unregister chan *Client
}

// NewHub constructs a hub. st and replies may be nil, which disables
// persistence and generated replies respectively. A replyTimeout of zero
// falls back to the default bound.
func NewHub(registry *Registry, st store.Store, replies replyengine.Engine, replyTimeout time.Duration, logger *zerolog.Logger) *Hub {
	if registry == nil {
		registry = NewRegistry()
	}
	if replyTimeout <= 0 {
		replyTimeout = defaultReplyTimeout
	}
	lg := zerolog.Nop()
	if logger != nil {
		lg = *logger
	}

	return &Hub{
		registry:     registry,
		presence:     NewPresenceOracle(st),
		store:        st,
		replies:      replies,
		replyTimeout: replyTimeout,
		log:          lg,
		register:     make(chan *Client),
		unregister:   make(chan *Client),
	}
}

// Registry exposes the hub's connection registry.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// RegisterClient admits a client once the hub run loop picks it up.
func (h *Hub) RegisterClient(c *Client) {
	h.register <- c
}

// UnregisterClient evicts a client; the updated online set is broadcast to
// the remaining connections.
func (h *Hub) UnregisterClient(c *Client) {
	h.unregister <- c
}

// Run processes registrations until the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case c := <-h.register:
			if replaced := h.registry.Admit(c); replaced != nil {
				h.log.Debug().
					Int64("user_id", c.UserID).
					Str("stale_conn", replaced.ID).
					Msg("replaced stale connection")
			}
			go h.pump(ctx, c)

		case c := <-h.unregister:
			if h.registry.Evict(c) {
				c.Close()
				h.broadcastOnline()
				h.log.Debug().Int64("user_id", c.UserID).Msg("client evicted")
			}

		case <-ctx.Done():
			return
		}
	}
}

// pump drains one client's commands in order.
func (h *Hub) pump(ctx context.Context, c *Client) {
	for {
		select {
		case cmd := <-c.Commands:
			if cmd != nil {
				h.handle(ctx, c, cmd)
			}
		case <-c.Done():
			return
		case <-ctx.Done():
			return
		}
	}
}
