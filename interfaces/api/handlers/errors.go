package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"taskboard/domain/services"
	"taskboard/pkg/logger"
	"taskboard/pkg/utils"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// respondServiceError แปลง error จาก service เป็น response envelope
func respondServiceError(c *fiber.Ctx, err error, action string) error {
	ctx := c.UserContext()

	switch {
	case errors.Is(err, services.ErrValidation):
		logger.WarnContext(ctx, action+" rejected", "error", err)
		return utils.ValidationMessageResponse(c, err.Error())
	case errors.Is(err, services.ErrUnauthenticated):
		logger.WarnContext(ctx, action+" unauthenticated", "error", err)
		return utils.UnauthorizedResponse(c, err.Error())
	case errors.Is(err, services.ErrForbidden):
		logger.WarnContext(ctx, action+" forbidden", "error", err)
		return utils.ForbiddenResponse(c, err.Error())
	case errors.Is(err, services.ErrNotFound):
		logger.InfoContext(ctx, action+" target not found", "error", err)
		return utils.NotFoundResponse(c, err.Error())
	case errors.Is(err, services.ErrConflict):
		logger.WarnContext(ctx, action+" conflict", "error", err)
		return utils.ConflictResponse(c, err.Error())
	default:
		logger.ErrorContext(ctx, action+" failed", "error", err)
		return utils.InternalServerErrorResponse(c)
	}
}

// parsePagination อ่าน page/limit จาก query; limit สูงสุด 100
func parsePagination(c *fiber.Ctx) (page, limit int, ok bool) {
	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		return 0, 0, false
	}

	limit, err = strconv.Atoi(c.Query("limit", strconv.Itoa(defaultPageLimit)))
	if err != nil || limit < 1 {
		return 0, 0, false
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	return page, limit, true
}

func parseIDParam(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
