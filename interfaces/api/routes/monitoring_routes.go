package routes

import (
	"github.com/gofiber/fiber/v2"

	"taskboard/domain/services"
	"taskboard/interfaces/api/handlers"
	"taskboard/interfaces/api/middleware"
)

// SetupMonitoringRoutes sets up the monitoring routes
// GET /api/monitoring/events - JetStream stream status (admin)
func SetupMonitoringRoutes(api fiber.Router, h *handlers.Handlers, userService services.UserService) {
	monitoring := api.Group("/monitoring", middleware.Protected(userService), middleware.AdminOnly())

	monitoring.Get("/events", h.MonitoringHandler.GetEventStreamStatus)
}
