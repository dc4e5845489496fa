package handlers

import (
	"github.com/gofiber/fiber/v2"

	"taskboard/domain/dto"
	"taskboard/domain/services"
	"taskboard/pkg/logger"
	"taskboard/pkg/utils"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	ctx := c.UserContext()

	page, limit, ok := parsePagination(c)
	if !ok {
		logger.WarnContext(ctx, "Invalid pagination parameters", "page", c.Query("page"), "limit", c.Query("limit"))
		return utils.BadRequestResponse(c, "Invalid pagination parameters")
	}

	offset := (page - 1) * limit
	users, total, err := h.userService.ListUsers(ctx, offset, limit)
	if err != nil {
		return respondServiceError(c, err, "User listing")
	}

	userResponses := make([]dto.UserResponse, len(users))
	for i, user := range users {
		userResponses[i] = *dto.UserToUserResponse(user)
	}

	return utils.PaginatedSuccessResponse(c, userResponses, total, page, limit)
}

func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	ctx := c.UserContext()

	userID, ok := parseIDParam(c, "id")
	if !ok {
		return utils.BadRequestResponse(c, "Invalid user ID")
	}

	user, err := h.userService.GetUser(ctx, userID)
	if err != nil {
		return respondServiceError(c, err, "User lookup")
	}

	return utils.SuccessResponse(c, dto.UserToUserResponse(user))
}

func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	ctx := c.UserContext()

	actor, err := utils.GetActorFromContext(c)
	if err != nil {
		logger.WarnContext(ctx, "Unauthorized access attempt")
		return utils.UnauthorizedResponse(c, "")
	}

	userID, ok := parseIDParam(c, "id")
	if !ok {
		return utils.BadRequestResponse(c, "Invalid user ID")
	}

	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		logger.WarnContext(ctx, "Invalid request body", "error", err)
		return utils.BadRequestResponse(c, "Invalid request body")
	}

	if err := utils.ValidateStruct(&req); err != nil {
		errors := utils.GetValidationErrors(err)
		logger.WarnContext(ctx, "Validation failed", "errors", errors)
		return utils.ValidationErrorResponse(c, errors)
	}

	logger.InfoContext(ctx, "User update attempt", "target_user_id", userID)

	user, err := h.userService.UpdateUser(ctx, actor, userID, &req)
	if err != nil {
		return respondServiceError(c, err, "User update")
	}

	logger.InfoContext(ctx, "User updated", "target_user_id", userID)

	return utils.SuccessResponse(c, dto.UserToUserResponse(user))
}

func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	ctx := c.UserContext()

	actor, err := utils.GetActorFromContext(c)
	if err != nil {
		logger.WarnContext(ctx, "Unauthorized access attempt")
		return utils.UnauthorizedResponse(c, "")
	}

	userID, ok := parseIDParam(c, "id")
	if !ok {
		return utils.BadRequestResponse(c, "Invalid user ID")
	}

	logger.InfoContext(ctx, "User deletion attempt", "target_user_id", userID)

	if err := h.userService.DeleteUser(ctx, actor, userID); err != nil {
		return respondServiceError(c, err, "User deletion")
	}

	logger.InfoContext(ctx, "User deleted", "target_user_id", userID)

	return utils.NoContentResponse(c)
}
