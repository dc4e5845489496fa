package handlers

import (
	"taskboard/domain/services"
	natspkg "taskboard/infrastructure/nats"
	wsmanager "taskboard/infrastructure/websocket"
)

// Services contains all the services needed for handlers
type Services struct {
	UserService      services.UserService
	TaskService      services.TaskService
	WebSocketManager *wsmanager.WebSocketManager
	NATSClient       *natspkg.Client // nil เมื่อไม่ได้ตั้ง NATS_URL
	DBPinger         Pinger
}

// Handlers contains all HTTP handlers
type Handlers struct {
	AuthHandler       *AuthHandler
	UserHandler       *UserHandler
	TaskHandler       *TaskHandler
	MonitoringHandler *MonitoringHandler
}

// NewHandlers creates a new instance of Handlers with all dependencies
func NewHandlers(services *Services) *Handlers {
	return &Handlers{
		AuthHandler:       NewAuthHandler(services.UserService),
		UserHandler:       NewUserHandler(services.UserService),
		TaskHandler:       NewTaskHandler(services.TaskService),
		MonitoringHandler: NewMonitoringHandler(services.DBPinger, services.NATSClient, services.WebSocketManager),
	}
}
