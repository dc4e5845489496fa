package routes

import (
	"github.com/gofiber/fiber/v2"

	"taskboard/domain/services"
	wsmanager "taskboard/infrastructure/websocket"
	"taskboard/interfaces/api/handlers"
)

// Options ค่าที่ route ต้องใช้นอกเหนือจาก handlers
type Options struct {
	UserService      services.UserService
	WebSocketManager *wsmanager.WebSocketManager
	UploadsRoot      string // โฟลเดอร์ของ local storage; ว่าง = ไม่ serve static
	UploadsPrefix    string // เช่น /uploads
}

func SetupRoutes(app *fiber.App, h *handlers.Handlers, opts Options) {
	SetupHealthRoutes(app, h)

	api := app.Group("/api")

	SetupAuthRoutes(api, h, opts.UserService)
	SetupUserRoutes(api, h, opts.UserService)
	SetupTaskRoutes(api, h, opts.UserService)
	SetupMonitoringRoutes(api, h, opts.UserService)

	SetupUploadRoutes(app, opts.UploadsPrefix, opts.UploadsRoot)

	// WebSocket อยู่นอก /api (auth ผ่าน ?token=)
	SetupWebSocketRoutes(app, opts.UserService, opts.WebSocketManager)
}
