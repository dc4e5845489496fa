package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskboard/domain/models"
	"taskboard/domain/repositories"
)

type FileDeletionRepositoryImpl struct {
	db *gorm.DB
}

func NewFileDeletionRepository(db *gorm.DB) repositories.FileDeletionRepository {
	return &FileDeletionRepositoryImpl{db: db}
}

// ListPending คืนรายการที่ค้างนานสุดก่อน
func (r *FileDeletionRepositoryImpl) ListPending(ctx context.Context, limit int) ([]models.PendingFileDeletion, error) {
	var rows []models.PendingFileDeletion
	err := r.db.WithContext(ctx).Order("created_at ASC").Limit(limit).Find(&rows).Error
	return rows, err
}

func (r *FileDeletionRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.PendingFileDeletion{}).Error
}

func (r *FileDeletionRepositoryImpl) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	return r.db.WithContext(ctx).Model(&models.PendingFileDeletion{}).Where("id = ?", id).Updates(map[string]interface{}{
		"attempts":   gorm.Expr("attempts + 1"),
		"last_error": reason,
	}).Error
}

func (r *FileDeletionRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PendingFileDeletion{}).Count(&count).Error
	return count, err
}
