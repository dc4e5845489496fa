package services

import (
	"context"
	"mime/multipart"

	"github.com/google/uuid"

	"taskboard/domain/models"
)

// AttachmentService จัดการไฟล์แนบบน storage (metadata อยู่ใน TaskRepository)
type AttachmentService interface {
	// Accept truncates files to the number of free slots (never more than
	// models.MaxTaskAttachments) and validates size and type of what is kept.
	Accept(files []*multipart.FileHeader, freeSlots int) ([]*multipart.FileHeader, error)

	// Store writes files to storage. Positions start at firstPosition.
	// If any file fails, files already written by this call are removed.
	Store(ctx context.Context, taskID uuid.UUID, files []*multipart.FileHeader, firstPosition int) ([]models.Attachment, error)

	// Discard removes stored files that never got metadata (rollback path).
	Discard(ctx context.Context, attachments []models.Attachment)

	// RemovePending removes files listed in the deletion outbox. Rows whose
	// file is gone are deleted; failures are recorded for the next sweep.
	RemovePending(ctx context.Context, pending []models.PendingFileDeletion) (removed int)
}

// FileCleanupService retries outbox rows on a schedule.
type FileCleanupService interface {
	RegisterCleanupJob() error
	RunCleanup(ctx context.Context) (removed int, err error)
}
