package routes

import (
	"github.com/gofiber/fiber/v2"

	"taskboard/domain/services"
	"taskboard/interfaces/api/handlers"
	"taskboard/interfaces/api/middleware"
)

func SetupTaskRoutes(api fiber.Router, h *handlers.Handlers, userService services.UserService) {
	tasks := api.Group("/tasks")
	tasks.Use(middleware.Protected(userService))
	tasks.Get("/", h.TaskHandler.ListMyTasks)
	tasks.Get("/all", middleware.AdminOnly(), h.TaskHandler.ListAllTasks)
	tasks.Post("/", h.TaskHandler.CreateTask)
	tasks.Get("/:id", h.TaskHandler.GetTask)
	tasks.Put("/:id", h.TaskHandler.UpdateTask)
	tasks.Delete("/:id", h.TaskHandler.DeleteTask)
	tasks.Delete("/:id/documents/:docId", h.TaskHandler.DeleteDocument)
}
