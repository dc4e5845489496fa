package repositories

import (
	"context"

	"github.com/google/uuid"

	"taskboard/domain/models"
)

// FileDeletionRepository อ่าน/เขียน outbox ของไฟล์ที่รอลบ
type FileDeletionRepository interface {
	ListPending(ctx context.Context, limit int) ([]models.PendingFileDeletion, error)
	Delete(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
	Count(ctx context.Context) (int64, error)
}
