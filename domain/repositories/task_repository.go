package repositories

import (
	"context"

	"github.com/google/uuid"

	"taskboard/domain/models"
)

// TaskFilter เงื่อนไขสำหรับ List/Count (ค่าว่าง = ไม่กรอง)
type TaskFilter struct {
	AssignedToID *uuid.UUID
	Status       string
	Priority     string
}

// TaskRepository treats a task and its attachments as one aggregate.
type TaskRepository interface {
	// Create inserts the task together with task.Attachments.
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	List(ctx context.Context, filter TaskFilter, offset, limit int) ([]*models.Task, error)
	Count(ctx context.Context, filter TaskFilter) (int64, error)

	// Update writes the task's mutable fields and appends attachments while
	// the total stays within models.MaxTaskAttachments. The slot count is
	// taken inside the transaction; attachments that did not fit are
	// returned as surplus and were not inserted.
	Update(ctx context.Context, task *models.Task, attachments []models.Attachment) (surplus []models.Attachment, err error)

	// Delete removes the task and its attachment rows and queues their files
	// in the deletion outbox, all in one transaction.
	Delete(ctx context.Context, id uuid.UUID) ([]models.PendingFileDeletion, error)

	// DeleteAttachment removes one attachment row and queues its file.
	DeleteAttachment(ctx context.Context, taskID, attachmentID uuid.UUID) (*models.PendingFileDeletion, error)

	// CountByUser counts tasks where the user is assignee or creator.
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}
