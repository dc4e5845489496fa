package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	natspkg "taskboard/infrastructure/nats"
	wsmanager "taskboard/infrastructure/websocket"
	"taskboard/pkg/logger"
	"taskboard/pkg/utils"
)

// Pinger ตรวจการเชื่อมต่อ database (*sql.DB)
type Pinger interface {
	PingContext(ctx context.Context) error
}

// MonitoringHandler handles health and event stream endpoints
type MonitoringHandler struct {
	db        Pinger
	nats      *natspkg.Client
	wsManager *wsmanager.WebSocketManager
}

// NewMonitoringHandler creates a new MonitoringHandler; nats may be nil
func NewMonitoringHandler(db Pinger, nats *natspkg.Client, wsManager *wsmanager.WebSocketManager) *MonitoringHandler {
	return &MonitoringHandler{
		db:        db,
		nats:      nats,
		wsManager: wsManager,
	}
}

// HealthCheck GET /health
func (h *MonitoringHandler) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status, overall, database := fiber.StatusOK, "ok", "ok"
	if h.db != nil {
		if err := h.db.PingContext(ctx); err != nil {
			logger.ErrorContext(ctx, "Database ping failed", "error", err)
			status, overall, database = fiber.StatusServiceUnavailable, "degraded", "unavailable"
		}
	}

	events := "in-process"
	if h.nats != nil {
		events = "nats"
		if !h.nats.IsConnected() {
			events = "nats-disconnected"
		}
	}

	clients := 0
	if h.wsManager != nil {
		clients = h.wsManager.GetTotalClients()
	}

	return c.Status(status).JSON(fiber.Map{
		"status":           overall,
		"database":         database,
		"events":           events,
		"websocketClients": clients,
	})
}

// GetEventStreamStatus GET /api/monitoring/events
// สถานะ JetStream stream ของ task events
func (h *MonitoringHandler) GetEventStreamStatus(c *fiber.Ctx) error {
	ctx := c.UserContext()

	if h.nats == nil {
		logger.WarnContext(ctx, "NATS client not available")
		return utils.ErrorResponse(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "NATS not available", nil)
	}

	status, err := h.nats.GetStatus(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to get event stream status", "error", err)
		return utils.InternalServerErrorResponse(c)
	}

	return utils.SuccessResponse(c, status)
}
