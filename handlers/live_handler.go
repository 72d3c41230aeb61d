package handlers

import (
	"context"
	"log"
	"time"

	"github.com/anjiri1684/tutor_hunt/services"
	"github.com/anjiri1684/tutor_hunt/websocket"
	websocketcontrib "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// LiveHandler streams stats snapshots over a websocket.
type LiveHandler struct {
	hub     *websocket.Hub
	stats   *services.StatsService
	timeout time.Duration
}

func NewLiveHandler(hub *websocket.Hub, stats *services.StatsService, timeout time.Duration) *LiveHandler {
	return &LiveHandler{hub: hub, stats: stats, timeout: timeout}
}

// RequireUpgrade rejects plain HTTP requests to websocket routes.
func RequireUpgrade(c *fiber.Ctx) error {
	if !websocketcontrib.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return c.Next()
}

// ServeStats sends the current snapshot, then keeps the socket registered
// with the hub until the client goes away.
func (h *LiveHandler) ServeStats(c *websocketcontrib.Conn) {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	stats, err := h.stats.Compute(ctx)
	cancel()
	if err != nil {
		log.Printf("live stats: initial snapshot: %v", err)
	} else if err := c.WriteJSON(websocket.StatsMessage{Type: "stats", Stats: stats}); err != nil {
		c.Close()
		return
	}

	client := websocket.NewClient(c)
	if !h.hub.Join(client) {
		c.Close()
		return
	}
	defer h.hub.Leave(client)

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			if !websocketcontrib.IsCloseError(err, websocketcontrib.CloseGoingAway, websocketcontrib.CloseNormalClosure) {
				log.Printf("live stats: read error for client %s: %v", client.ID, err)
			}
			return
		}
	}
}
