package handlers

import (
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"

	"taskboard/domain/dto"
	"taskboard/domain/models"
	"taskboard/domain/services"
	"taskboard/pkg/logger"
	"taskboard/pkg/utils"
)

// field ของไฟล์แนบใน multipart form
var documentFields = []string{"documents", "documents[]"}

type TaskHandler struct {
	taskService services.TaskService
}

func NewTaskHandler(taskService services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

func (h *TaskHandler) CreateTask(c *fiber.Ctx) error {
	ctx := c.UserContext()

	actor, err := utils.GetActorFromContext(c)
	if err != nil {
		logger.WarnContext(ctx, "Unauthorized access attempt")
		return utils.UnauthorizedResponse(c, "")
	}

	var req dto.CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		logger.WarnContext(ctx, "Invalid request body", "error", err)
		return utils.BadRequestResponse(c, "Invalid request body")
	}

	if err := utils.ValidateStruct(&req); err != nil {
		errors := utils.GetValidationErrors(err)
		logger.WarnContext(ctx, "Validation failed", "errors", errors)
		return utils.ValidationErrorResponse(c, errors)
	}

	files, err := documentFiles(c)
	if err != nil {
		logger.WarnContext(ctx, "Invalid multipart form", "error", err)
		return utils.BadRequestResponse(c, "Invalid multipart form")
	}

	logger.InfoContext(ctx, "Task creation attempt", "title", req.Title, "assigned_to", req.AssignedTo, "files", len(files))

	task, err := h.taskService.CreateTask(ctx, actor, &req, files)
	if err != nil {
		return respondServiceError(c, err, "Task creation")
	}

	return utils.CreatedResponse(c, dto.TaskToTaskResponse(task))
}

func (h *TaskHandler) GetTask(c *fiber.Ctx) error {
	ctx := c.UserContext()

	actor, err := utils.GetActorFromContext(c)
	if err != nil {
		logger.WarnContext(ctx, "Unauthorized access attempt")
		return utils.UnauthorizedResponse(c, "")
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		logger.WarnContext(ctx, "Invalid task ID", "task_id", c.Params("id"))
		return utils.BadRequestResponse(c, "Invalid task ID")
	}

	task, err := h.taskService.GetTask(ctx, actor, taskID)
	if err != nil {
		return respondServiceError(c, err, "Task lookup")
	}

	return utils.SuccessResponse(c, dto.TaskToTaskResponse(task))
}

// UpdateTask รับได้ทั้ง multipart (พร้อมไฟล์) และ JSON
func (h *TaskHandler) UpdateTask(c *fiber.Ctx) error {
	ctx := c.UserContext()

	actor, err := utils.GetActorFromContext(c)
	if err != nil {
		logger.WarnContext(ctx, "Unauthorized access attempt")
		return utils.UnauthorizedResponse(c, "")
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		logger.WarnContext(ctx, "Invalid task ID", "task_id", c.Params("id"))
		return utils.BadRequestResponse(c, "Invalid task ID")
	}

	var req dto.UpdateTaskRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			logger.WarnContext(ctx, "Invalid request body", "error", err)
			return utils.BadRequestResponse(c, "Invalid request body")
		}
	}

	if err := utils.ValidateStruct(&req); err != nil {
		errors := utils.GetValidationErrors(err)
		logger.WarnContext(ctx, "Validation failed", "errors", errors)
		return utils.ValidationErrorResponse(c, errors)
	}

	files, err := documentFiles(c)
	if err != nil {
		logger.WarnContext(ctx, "Invalid multipart form", "error", err)
		return utils.BadRequestResponse(c, "Invalid multipart form")
	}

	logger.InfoContext(ctx, "Task update attempt", "task_id", taskID, "files", len(files))

	task, err := h.taskService.UpdateTask(ctx, actor, taskID, &req, files)
	if err != nil {
		return respondServiceError(c, err, "Task update")
	}

	return utils.SuccessResponse(c, dto.TaskToTaskResponse(task))
}

func (h *TaskHandler) DeleteTask(c *fiber.Ctx) error {
	ctx := c.UserContext()

	actor, err := utils.GetActorFromContext(c)
	if err != nil {
		logger.WarnContext(ctx, "Unauthorized access attempt")
		return utils.UnauthorizedResponse(c, "")
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		logger.WarnContext(ctx, "Invalid task ID", "task_id", c.Params("id"))
		return utils.BadRequestResponse(c, "Invalid task ID")
	}

	logger.InfoContext(ctx, "Task deletion attempt", "task_id", taskID)

	if err := h.taskService.DeleteTask(ctx, actor, taskID); err != nil {
		return respondServiceError(c, err, "Task deletion")
	}

	return utils.NoContentResponse(c)
}

// DeleteDocument DELETE /api/tasks/:id/documents/:docId คืน task ที่เหลือไฟล์แนบ
func (h *TaskHandler) DeleteDocument(c *fiber.Ctx) error {
	ctx := c.UserContext()

	actor, err := utils.GetActorFromContext(c)
	if err != nil {
		logger.WarnContext(ctx, "Unauthorized access attempt")
		return utils.UnauthorizedResponse(c, "")
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return utils.BadRequestResponse(c, "Invalid task ID")
	}
	docID, ok := parseIDParam(c, "docId")
	if !ok {
		return utils.BadRequestResponse(c, "Invalid document ID")
	}

	logger.InfoContext(ctx, "Document deletion attempt", "task_id", taskID, "document_id", docID)

	task, err := h.taskService.DeleteAttachment(ctx, actor, taskID, docID)
	if err != nil {
		return respondServiceError(c, err, "Document deletion")
	}

	return utils.SuccessResponse(c, dto.TaskToTaskResponse(task))
}

// ListMyTasks GET /api/tasks
func (h *TaskHandler) ListMyTasks(c *fiber.Ctx) error {
	return h.listTasks(c, false)
}

// ListAllTasks GET /api/tasks/all (admin)
func (h *TaskHandler) ListAllTasks(c *fiber.Ctx) error {
	return h.listTasks(c, true)
}

func (h *TaskHandler) listTasks(c *fiber.Ctx, all bool) error {
	ctx := c.UserContext()

	actor, err := utils.GetActorFromContext(c)
	if err != nil {
		logger.WarnContext(ctx, "Unauthorized access attempt")
		return utils.UnauthorizedResponse(c, "")
	}

	page, limit, ok := parsePagination(c)
	if !ok {
		logger.WarnContext(ctx, "Invalid pagination parameters", "page", c.Query("page"), "limit", c.Query("limit"))
		return utils.BadRequestResponse(c, "Invalid pagination parameters")
	}

	var filter dto.TaskFilterRequest
	if err := c.QueryParser(&filter); err != nil {
		return utils.BadRequestResponse(c, "Invalid query parameters")
	}
	if err := utils.ValidateStruct(&filter); err != nil {
		return utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
	}

	offset := (page - 1) * limit
	var tasks []*models.Task
	var total int64
	if all {
		tasks, total, err = h.taskService.ListAllTasks(ctx, actor, &filter, offset, limit)
	} else {
		tasks, total, err = h.taskService.ListMyTasks(ctx, actor, &filter, offset, limit)
	}
	if err != nil {
		return respondServiceError(c, err, "Task listing")
	}

	taskResponses := make([]dto.TaskResponse, len(tasks))
	for i, task := range tasks {
		taskResponses[i] = *dto.TaskToTaskResponse(task)
	}

	return utils.PaginatedSuccessResponse(c, taskResponses, total, page, limit)
}

// documentFiles รวมไฟล์จาก documents และ documents[]; body ที่ไม่ใช่ multipart คืน nil
func documentFiles(c *fiber.Ctx) ([]*multipart.FileHeader, error) {
	contentType := strings.ToLower(string(c.Request().Header.ContentType()))
	if !strings.HasPrefix(contentType, fiber.MIMEMultipartForm) {
		return nil, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}

	var files []*multipart.FileHeader
	for _, field := range documentFields {
		files = append(files, form.File[field]...)
	}
	return files, nil
}
