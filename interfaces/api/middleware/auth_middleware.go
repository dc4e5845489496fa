package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"taskboard/domain/services"
	"taskboard/pkg/logger"
	"taskboard/pkg/utils"
)

// Protected ตรวจ bearer token แล้ว resolve เป็น user ที่ยังมีอยู่จริง
func Protected(userService services.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return utils.UnauthorizedResponse(c, "Missing authorization header")
		}

		token := utils.ExtractTokenFromHeader(authHeader)
		if token == "" {
			return utils.UnauthorizedResponse(c, "Invalid authorization header format")
		}

		return authenticate(c, userService, token)
	}
}

// QueryToken ใช้กับ /ws ที่ browser ใส่ header ไม่ได้: ?token=<jwt>
func QueryToken(userService services.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Query("token")
		if token == "" {
			token = utils.ExtractTokenFromHeader(c.Get("Authorization"))
		}
		if token == "" {
			return utils.UnauthorizedResponse(c, "Missing token")
		}

		return authenticate(c, userService, token)
	}
}

func authenticate(c *fiber.Ctx, userService services.UserService, token string) error {
	ctx := c.UserContext()

	actor, err := userService.ResolveIdentity(ctx, token)
	if err != nil {
		if errors.Is(err, services.ErrUnauthenticated) {
			logger.WarnContext(ctx, "Token rejected", "reason", err.Error())
			if errors.Is(err, utils.ErrExpiredToken) {
				return utils.UnauthorizedResponse(c, "Token has expired")
			}
			return utils.UnauthorizedResponse(c, "Invalid token")
		}
		logger.ErrorContext(ctx, "Identity lookup failed", "error", err)
		return utils.InternalServerErrorResponse(c)
	}

	c.Locals(utils.LocalsActorKey, actor)
	c.SetUserContext(logger.ContextWithUserID(ctx, actor.ID.String()))

	return c.Next()
}

// RequireRole middleware checks if user has specific role
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := utils.GetActorFromContext(c)
		if err != nil {
			return utils.UnauthorizedResponse(c, "User not authenticated")
		}

		if actor.Role != role {
			logger.WarnContext(c.UserContext(), "Insufficient role", "required", role, "role", actor.Role)
			return utils.ForbiddenResponse(c, "Insufficient permissions")
		}

		return c.Next()
	}
}

// AdminOnly middleware ensures only admin users can access
func AdminOnly() fiber.Handler {
	return RequireRole("admin")
}
