package routes

import (
	"github.com/gofiber/fiber/v2"

	"taskboard/domain/services"
	"taskboard/interfaces/api/handlers"
	"taskboard/interfaces/api/middleware"
)

func SetupAuthRoutes(api fiber.Router, h *handlers.Handlers, userService services.UserService) {
	auth := api.Group("/auth")

	auth.Post("/register", h.AuthHandler.Register)
	auth.Post("/login", h.AuthHandler.Login)

	// Protected routes - require authentication
	auth.Get("/user", middleware.Protected(userService), h.AuthHandler.Me)
}
