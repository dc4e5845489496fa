package routes

import (
	"github.com/gofiber/fiber/v2"

	"taskboard/domain/services"
	"taskboard/interfaces/api/handlers"
	"taskboard/interfaces/api/middleware"
)

func SetupUserRoutes(api fiber.Router, h *handlers.Handlers, userService services.UserService) {
	users := api.Group("/users")
	users.Use(middleware.Protected(userService))
	users.Get("/", h.UserHandler.ListUsers)
	users.Get("/:id", h.UserHandler.GetUser)
	users.Put("/:id", h.UserHandler.UpdateUser)
	users.Delete("/:id", h.UserHandler.DeleteUser)
}
