package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"taskboard/domain/services"
	wsmanager "taskboard/infrastructure/websocket"
	"taskboard/interfaces/api/middleware"
	websocketHandler "taskboard/interfaces/api/websocket"
)

func SetupWebSocketRoutes(app *fiber.App, userService services.UserService, manager *wsmanager.WebSocketManager) {
	if manager == nil {
		return
	}

	wsHandler := websocketHandler.NewWebSocketHandler(manager)

	app.Use("/ws", middleware.QueryToken(userService), wsHandler.WebSocketUpgrade)
	app.Get("/ws", websocket.New(wsHandler.HandleWebSocket))
}
