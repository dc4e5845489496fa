package websocket

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"taskboard/domain/services"
	wsmanager "taskboard/infrastructure/websocket"
	"taskboard/pkg/logger"
	"taskboard/pkg/utils"
)

type WebSocketHandler struct {
	manager *wsmanager.WebSocketManager
}

func NewWebSocketHandler(manager *wsmanager.WebSocketManager) *WebSocketHandler {
	return &WebSocketHandler{manager: manager}
}

// WebSocketUpgrade ต้องวางหลัง middleware.QueryToken
func (h *WebSocketHandler) WebSocketUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return c.Next()
}

func (h *WebSocketHandler) HandleWebSocket(c *websocket.Conn) {
	actor, ok := c.Locals(utils.LocalsActorKey).(*services.Actor)
	if !ok || actor == nil {
		logger.Warn("WebSocket connection without identity")
		_ = c.Close()
		return
	}

	h.manager.RegisterClient(c, actor.ID)
	defer h.manager.UnregisterClient(c)

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			logger.Debug("WebSocket read ended", "user_id", actor.ID, "error", err)
			break
		}

		if messageType == websocket.TextMessage {
			h.manager.HandleMessage(c, message)
		}
	}
}
