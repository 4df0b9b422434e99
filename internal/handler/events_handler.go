package handler

import (
	"context"
	"strings"

	"legal-chatbot-be/internal/pkg/logger"
	"legal-chatbot-be/internal/pkg/serverutils"
	internalWS "legal-chatbot-be/internal/websocket"
	"legal-chatbot-be/pkg/events"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// EventsHandler streams session and ingestion events to browsers.
type EventsHandler struct {
	hub       *internalWS.Hub
	jwtSecret string
	logger    logger.ILogger
}

func NewEventsHandler(hub *internalWS.Hub, jwtSecret string, log logger.ILogger) *EventsHandler {
	return &EventsHandler{hub: hub, jwtSecret: jwtSecret, logger: log}
}

// ServeWs authenticates the handshake, then hands the connection to the hub.
// Browsers pass the token as ?token=, other clients may use the Authorization header.
func (h *EventsHandler) ServeWs(c *fiber.Ctx) error {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		if auth := c.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			tokenStr = auth[len("Bearer "):]
		}
	}
	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Missing token"))
	}

	userID, _, err := serverutils.ParseToken(h.jwtSecret, tokenStr)
	if err != nil {
		h.logger.Warn("EventsHandler", "Invalid token in WS handshake", map[string]interface{}{"error": err.Error()})
		return c.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("EventsHandler", "Starting WebSocket session", map[string]interface{}{"user_id": userID})
		internalWS.ServeWs(h.hub, conn, userID)
		h.logger.Info("EventsHandler", "WebSocket session ended", map[string]interface{}{"user_id": userID})
	})(c)
}

// ForwardToHub relays an event received from the bus to connected clients.
// It is used as a NATS subscription handler.
func (h *EventsHandler) ForwardToHub(ctx context.Context, event events.Event) error {
	return h.hub.Publish(ctx, event)
}

func (h *EventsHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws", h.ServeWs)
}
