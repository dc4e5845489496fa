package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CorsMiddleware origins มาจาก config (CORS_ORIGINS)
func CorsMiddleware(allowOrigins string) fiber.Handler {
	if allowOrigins == "" {
		allowOrigins = "*"
	}
	return cors.New(cors.Config{
		AllowOrigins:  allowOrigins,
		AllowMethods:  "GET,POST,PUT,DELETE,OPTIONS,HEAD",
		AllowHeaders:  "Origin,Content-Type,Accept,Authorization,X-Request-ID,X-Requested-With",
		ExposeHeaders: "Content-Length,Content-Type,X-Request-ID",
		// credentials ใช้กับ "*" ไม่ได้ (token อยู่ใน header อยู่แล้ว)
		AllowCredentials: allowOrigins != "*",
	})
}
