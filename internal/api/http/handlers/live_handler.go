package handlers

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/live"
)

const livePingInterval = 30 * time.Second

// LiveHandler streams ticket change events over a websocket.
type LiveHandler struct {
	hub    *live.Hub
	logger *zap.Logger
}

// NewLiveHandler constructs handler.
func NewLiveHandler(hub *live.Hub, logger *zap.Logger) *LiveHandler {
	return &LiveHandler{hub: hub, logger: logger}
}

// Upgrade rejects plain HTTP requests to the feed.
func (h *LiveHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	if principal, ok := auth.PrincipalFromContext(c); ok {
		c.Locals("live_user", principal.User.Username)
	}
	return c.Next()
}

// Stream GET /api/live.
func (h *LiveHandler) Stream() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		sub := h.hub.Subscribe()
		defer h.hub.Unsubscribe(sub)
		user, _ := conn.Locals("live_user").(string)
		defer func() {
			if n := sub.Dropped(); n > 0 {
				h.logger.Info("live client missed messages", zap.String("user", user), zap.Int64("dropped", n))
			}
		}()
		h.logger.Debug("live client connected", zap.String("user", user), zap.Int("clients", h.hub.Count()))

		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ping := time.NewTicker(livePingInterval)
		defer ping.Stop()
		for {
			select {
			case <-closed:
				h.logger.Debug("live client disconnected", zap.String("user", user))
				return
			case msg, ok := <-sub.C:
				if !ok {
					return
				}
				if err := conn.WriteJSON(msg); err != nil {
					return
				}
			case <-ping.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
					return
				}
			}
		}
	})
}
