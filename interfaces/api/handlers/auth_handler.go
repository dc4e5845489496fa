package handlers

import (
	"github.com/gofiber/fiber/v2"

	"taskboard/domain/dto"
	"taskboard/domain/services"
	"taskboard/pkg/logger"
	"taskboard/pkg/utils"
)

type AuthHandler struct {
	userService services.UserService
}

func NewAuthHandler(userService services.UserService) *AuthHandler {
	return &AuthHandler{
		userService: userService,
	}
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		logger.WarnContext(ctx, "Invalid request body", "error", err)
		return utils.BadRequestResponse(c, "Invalid request body")
	}

	if err := utils.ValidateStruct(&req); err != nil {
		errors := utils.GetValidationErrors(err)
		logger.WarnContext(ctx, "Validation failed", "errors", errors)
		return utils.ValidationErrorResponse(c, errors)
	}

	logger.InfoContext(ctx, "Registration attempt", "email", req.Email, "role", req.Role)

	token, user, err := h.userService.Register(ctx, &req)
	if err != nil {
		return respondServiceError(c, err, "Registration")
	}

	logger.InfoContext(ctx, "User registered", "user_id", user.ID, "email", user.Email)

	return utils.CreatedResponse(c, &dto.AuthResponse{
		Token: token,
		User:  *dto.UserToUserResponse(user),
	})
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		logger.WarnContext(ctx, "Invalid request body", "error", err)
		return utils.BadRequestResponse(c, "Invalid request body")
	}

	if err := utils.ValidateStruct(&req); err != nil {
		errors := utils.GetValidationErrors(err)
		logger.WarnContext(ctx, "Validation failed", "errors", errors)
		return utils.ValidationErrorResponse(c, errors)
	}

	logger.InfoContext(ctx, "Login attempt", "email", req.Email)

	token, user, err := h.userService.Login(ctx, &req)
	if err != nil {
		return respondServiceError(c, err, "Login")
	}

	logger.InfoContext(ctx, "Login successful", "user_id", user.ID, "email", user.Email)

	return utils.SuccessResponse(c, &dto.AuthResponse{
		Token: token,
		User:  *dto.UserToUserResponse(user),
	})
}

// Me GET /api/auth/user
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	ctx := c.UserContext()

	actor, err := utils.GetActorFromContext(c)
	if err != nil {
		logger.WarnContext(ctx, "Unauthorized access attempt")
		return utils.UnauthorizedResponse(c, "")
	}

	user, err := h.userService.GetUser(ctx, actor.ID)
	if err != nil {
		return respondServiceError(c, err, "Current user lookup")
	}

	return utils.SuccessResponse(c, dto.UserToUserResponse(user))
}
