package services

import (
	"context"
	"mime/multipart"

	"github.com/google/uuid"

	"taskboard/domain/dto"
	"taskboard/domain/models"
)

type TaskService interface {
	CreateTask(ctx context.Context, actor *Actor, req *dto.CreateTaskRequest, files []*multipart.FileHeader) (*models.Task, error)
	GetTask(ctx context.Context, actor *Actor, taskID uuid.UUID) (*models.Task, error)
	// ListMyTasks คืน task ที่ assign ให้ actor
	ListMyTasks(ctx context.Context, actor *Actor, filter *dto.TaskFilterRequest, offset, limit int) ([]*models.Task, int64, error)
	// ListAllTasks admin only
	ListAllTasks(ctx context.Context, actor *Actor, filter *dto.TaskFilterRequest, offset, limit int) ([]*models.Task, int64, error)
	UpdateTask(ctx context.Context, actor *Actor, taskID uuid.UUID, req *dto.UpdateTaskRequest, files []*multipart.FileHeader) (*models.Task, error)
	DeleteTask(ctx context.Context, actor *Actor, taskID uuid.UUID) error
	DeleteAttachment(ctx context.Context, actor *Actor, taskID, attachmentID uuid.UUID) (*models.Task, error)
}
