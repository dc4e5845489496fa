package serviceimpl

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskboard/domain/dto"
	"taskboard/domain/models"
	"taskboard/domain/ports"
	"taskboard/domain/repositories"
	"taskboard/domain/services"
	"taskboard/pkg/logger"
)

type TaskServiceImpl struct {
	taskRepo          repositories.TaskRepository
	userRepo          repositories.UserRepository
	attachmentService services.AttachmentService
	publisher         ports.TaskEventPublisherPort // optional
}

func NewTaskService(
	taskRepo repositories.TaskRepository,
	userRepo repositories.UserRepository,
	attachmentService services.AttachmentService,
	publisher ports.TaskEventPublisherPort,
) services.TaskService {
	return &TaskServiceImpl{
		taskRepo:          taskRepo,
		userRepo:          userRepo,
		attachmentService: attachmentService,
		publisher:         publisher,
	}
}

func (s *TaskServiceImpl) CreateTask(ctx context.Context, actor *services.Actor, req *dto.CreateTaskRequest, files []*multipart.FileHeader) (*models.Task, error) {
	if actor == nil {
		return nil, services.ErrUnauthenticated
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", services.ErrValidation)
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, fmt.Errorf("%w: description is required", services.ErrValidation)
	}

	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = models.TaskStatusPending
	}
	if !models.IsValidTaskStatus(status) {
		return nil, fmt.Errorf("%w: invalid status %q", services.ErrValidation, status)
	}

	priority := req.Priority
	if priority == "" {
		priority = models.TaskPriorityMedium
	}
	if !models.IsValidTaskPriority(priority) {
		return nil, fmt.Errorf("%w: invalid priority %q", services.ErrValidation, priority)
	}

	// ตรวจ assignee ก่อนเขียนไฟล์ใดๆ ลง storage
	assignee, err := s.resolveAssignee(ctx, req.AssignedTo)
	if err != nil {
		return nil, err
	}

	accepted, err := s.attachmentService.Accept(files, models.MaxTaskAttachments)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		ID:           uuid.New(),
		Title:        title,
		Description:  req.Description,
		Status:       status,
		Priority:     priority,
		DueDate:      dueDate,
		AssignedToID: assignee.ID,
		CreatedByID:  actor.ID,
	}

	stored, err := s.attachmentService.Store(ctx, task.ID, accepted, 0)
	if err != nil {
		return nil, err
	}
	task.Attachments = stored

	if err := s.taskRepo.Create(ctx, task); err != nil {
		logger.ErrorContext(ctx, "Failed to create task, discarding stored files", "task_id", task.ID, "error", err)
		s.attachmentService.Discard(ctx, stored)
		return nil, err
	}

	logger.InfoContext(ctx, "Task created", "task_id", task.ID, "assigned_to", assignee.ID, "documents", len(stored))

	created, err := s.loadTask(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, ports.TaskEventCreated, created, actor)
	return created, nil
}

func (s *TaskServiceImpl) GetTask(ctx context.Context, actor *services.Actor, taskID uuid.UUID) (*models.Task, error) {
	if actor == nil {
		return nil, services.ErrUnauthenticated
	}

	task, err := s.loadTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if !task.CanBeActedOnBy(actor.ID, actor.Role) {
		logger.WarnContext(ctx, "Task access denied", "task_id", taskID)
		return nil, fmt.Errorf("%w: task is not assigned to you", services.ErrForbidden)
	}
	return task, nil
}

func (s *TaskServiceImpl) ListMyTasks(ctx context.Context, actor *services.Actor, filter *dto.TaskFilterRequest, offset, limit int) ([]*models.Task, int64, error) {
	if actor == nil {
		return nil, 0, services.ErrUnauthenticated
	}

	repoFilter := repositories.TaskFilter{AssignedToID: &actor.ID}
	if filter != nil {
		repoFilter.Status = filter.Status
		repoFilter.Priority = filter.Priority
	}
	return s.list(ctx, repoFilter, offset, limit)
}

func (s *TaskServiceImpl) ListAllTasks(ctx context.Context, actor *services.Actor, filter *dto.TaskFilterRequest, offset, limit int) ([]*models.Task, int64, error) {
	if actor == nil {
		return nil, 0, services.ErrUnauthenticated
	}
	if !actor.IsAdmin() {
		return nil, 0, fmt.Errorf("%w: admin only", services.ErrForbidden)
	}

	var repoFilter repositories.TaskFilter
	if filter != nil {
		repoFilter.Status = filter.Status
		repoFilter.Priority = filter.Priority
		if filter.AssignedTo != "" {
			assigneeID, err := uuid.Parse(filter.AssignedTo)
			if err != nil {
				return nil, 0, fmt.Errorf("%w: invalid assignedTo", services.ErrValidation)
			}
			repoFilter.AssignedToID = &assigneeID
		}
	}
	return s.list(ctx, repoFilter, offset, limit)
}

func (s *TaskServiceImpl) list(ctx context.Context, filter repositories.TaskFilter, offset, limit int) ([]*models.Task, int64, error) {
	tasks, err := s.taskRepo.List(ctx, filter, offset, limit)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to list tasks", "error", err)
		return nil, 0, err
	}

	total, err := s.taskRepo.Count(ctx, filter)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to count tasks", "error", err)
		return nil, 0, err
	}
	return tasks, total, nil
}

func (s *TaskServiceImpl) UpdateTask(ctx context.Context, actor *services.Actor, taskID uuid.UUID, req *dto.UpdateTaskRequest, files []*multipart.FileHeader) (*models.Task, error) {
	task, err := s.GetTask(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}

	// ค่าว่าง = คงค่าเดิม
	if title := strings.TrimSpace(req.Title); title != "" {
		task.Title = title
	}
	if req.Description != "" {
		task.Description = req.Description
	}
	if req.Status != "" {
		if !models.IsValidTaskStatus(req.Status) {
			return nil, fmt.Errorf("%w: invalid status %q", services.ErrValidation, req.Status)
		}
		task.Status = req.Status
	}
	if req.Priority != "" {
		if !models.IsValidTaskPriority(req.Priority) {
			return nil, fmt.Errorf("%w: invalid priority %q", services.ErrValidation, req.Priority)
		}
		task.Priority = req.Priority
	}
	if req.DueDate != "" {
		dueDate, err := parseDueDate(req.DueDate)
		if err != nil {
			return nil, err
		}
		task.DueDate = dueDate
	}
	if req.AssignedTo != "" {
		assignee, err := s.resolveAssignee(ctx, req.AssignedTo)
		if err != nil {
			return nil, err
		}
		task.AssignedToID = assignee.ID
	}

	accepted, err := s.attachmentService.Accept(files, task.FreeAttachmentSlots())
	if err != nil {
		return nil, err
	}
	if len(files) > len(accepted) {
		logger.InfoContext(ctx, "Extra documents dropped", "task_id", taskID, "received", len(files), "accepted", len(accepted))
	}

	stored, err := s.attachmentService.Store(ctx, task.ID, accepted, len(task.Attachments))
	if err != nil {
		return nil, err
	}

	surplus, err := s.taskRepo.Update(ctx, task, stored)
	if err != nil {
		s.attachmentService.Discard(ctx, stored)
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: task not found", services.ErrNotFound)
		}
		logger.ErrorContext(ctx, "Failed to update task", "task_id", taskID, "error", err)
		return nil, err
	}
	if len(surplus) > 0 {
		// มี request อื่นแนบไฟล์ระหว่างนี้ ช่องเต็มแล้ว
		logger.WarnContext(ctx, "Attachment slots filled concurrently, discarding surplus", "task_id", taskID, "surplus", len(surplus))
		s.attachmentService.Discard(ctx, surplus)
	}

	logger.InfoContext(ctx, "Task updated", "task_id", taskID, "new_documents", len(stored)-len(surplus))

	updated, err := s.loadTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, ports.TaskEventUpdated, updated, actor)
	return updated, nil
}

func (s *TaskServiceImpl) DeleteTask(ctx context.Context, actor *services.Actor, taskID uuid.UUID) error {
	task, err := s.GetTask(ctx, actor, taskID)
	if err != nil {
		return err
	}

	pending, err := s.taskRepo.Delete(ctx, taskID)
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return fmt.Errorf("%w: task not found", services.ErrNotFound)
		}
		logger.ErrorContext(ctx, "Failed to delete task", "task_id", taskID, "error", err)
		return err
	}

	removed := s.attachmentService.RemovePending(ctx, pending)
	logger.InfoContext(ctx, "Task deleted", "task_id", taskID, "files", len(pending), "files_removed", removed)

	s.publish(ctx, ports.TaskEventDeleted, task, actor)
	return nil
}

func (s *TaskServiceImpl) DeleteAttachment(ctx context.Context, actor *services.Actor, taskID, attachmentID uuid.UUID) (*models.Task, error) {
	task, err := s.GetTask(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}
	if task.FindAttachment(attachmentID) == nil {
		return nil, fmt.Errorf("%w: document not found", services.ErrNotFound)
	}

	pending, err := s.taskRepo.DeleteAttachment(ctx, taskID, attachmentID)
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: document not found", services.ErrNotFound)
		}
		logger.ErrorContext(ctx, "Failed to delete attachment", "task_id", taskID, "attachment_id", attachmentID, "error", err)
		return nil, err
	}

	s.attachmentService.RemovePending(ctx, []models.PendingFileDeletion{*pending})
	logger.InfoContext(ctx, "Attachment deleted", "task_id", taskID, "attachment_id", attachmentID)

	updated, err := s.loadTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, ports.TaskEventAttachmentRemoved, updated, actor)
	return updated, nil
}

func (s *TaskServiceImpl) loadTask(ctx context.Context, taskID uuid.UUID) (*models.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: task not found", services.ErrNotFound)
		}
		return nil, err
	}
	return task, nil
}

func (s *TaskServiceImpl) resolveAssignee(ctx context.Context, raw string) (*models.User, error) {
	assigneeID, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: assignedTo must be a user id", services.ErrValidation)
	}

	assignee, err := s.userRepo.GetByID(ctx, assigneeID)
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			logger.WarnContext(ctx, "Assignee does not exist", "assigned_to", assigneeID)
			return nil, fmt.Errorf("%w: assigned user does not exist", services.ErrValidation)
		}
		return nil, err
	}
	return assignee, nil
}

func (s *TaskServiceImpl) publish(ctx context.Context, eventType string, task *models.Task, actor *services.Actor) {
	if s.publisher == nil {
		return
	}

	event := &ports.TaskEvent{
		Type:         eventType,
		TaskID:       task.ID.String(),
		Title:        task.Title,
		Status:       task.Status,
		AssignedToID: task.AssignedToID.String(),
		CreatedByID:  task.CreatedByID.String(),
		ActorID:      actor.ID.String(),
		OccurredAt:   time.Now().UTC(),
	}
	if err := s.publisher.PublishTaskEvent(ctx, event); err != nil {
		logger.WarnContext(ctx, "Failed to publish task event", "type", eventType, "task_id", task.ID, "error", err)
	}
}

// parseDueDate รับได้ทั้ง RFC3339 และ YYYY-MM-DD
func parseDueDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: dueDate is required", services.ErrValidation)
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: dueDate must be RFC 3339 or YYYY-MM-DD", services.ErrValidation)
}
