package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskboard/domain/models"
	"taskboard/domain/repositories"
)

type TaskRepositoryImpl struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) repositories.TaskRepository {
	return &TaskRepositoryImpl{db: db}
}

func (r *TaskRepositoryImpl) Create(ctx context.Context, task *models.Task) error {
	// AssignedTo/CreatedBy เป็น user ที่มีอยู่แล้ว ไม่ต้อง upsert
	return translateError(r.db.WithContext(ctx).Omit("AssignedTo", "CreatedBy").Create(task).Error)
}

func (r *TaskRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	var task models.Task
	err := r.withRelations(r.db.WithContext(ctx)).Where("id = ?", id).First(&task).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &task, nil
}

func (r *TaskRepositoryImpl) List(ctx context.Context, filter repositories.TaskFilter, offset, limit int) ([]*models.Task, error) {
	var tasks []*models.Task
	query := applyTaskFilter(r.withRelations(r.db.WithContext(ctx)), filter)
	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&tasks).Error
	return tasks, err
}

func (r *TaskRepositoryImpl) Count(ctx context.Context, filter repositories.TaskFilter) (int64, error) {
	var count int64
	err := applyTaskFilter(r.db.WithContext(ctx).Model(&models.Task{}), filter).Count(&count).Error
	return count, err
}

func (r *TaskRepositoryImpl) Update(ctx context.Context, task *models.Task, attachments []models.Attachment) ([]models.Attachment, error) {
	var surplus []models.Attachment

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Task
		if err := lockForUpdate(tx).Select("id").Where("id = ?", task.ID).First(&current).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{
			"title":          task.Title,
			"description":    task.Description,
			"status":         task.Status,
			"priority":       task.Priority,
			"due_date":       task.DueDate,
			"assigned_to_id": task.AssignedToID,
		}
		if err := tx.Model(&models.Task{}).Where("id = ?", task.ID).Updates(updates).Error; err != nil {
			return err
		}

		if len(attachments) == 0 {
			return nil
		}

		// นับใหม่ใน transaction เผื่อมี request อื่นแนบไฟล์ไปแล้ว
		var existing int64
		var maxPosition sql.NullInt64
		row := tx.Model(&models.Attachment{}).Where("task_id = ?", task.ID).
			Select("COUNT(*), MAX(position)").Row()
		if err := row.Scan(&existing, &maxPosition); err != nil {
			return err
		}

		free := models.MaxTaskAttachments - int(existing)
		if free < 0 {
			free = 0
		}
		if free > len(attachments) {
			free = len(attachments)
		}

		next := 0
		if maxPosition.Valid {
			next = int(maxPosition.Int64) + 1
		}

		accepted := attachments[:free]
		surplus = append(surplus, attachments[free:]...)
		if len(accepted) == 0 {
			return nil
		}
		for i := range accepted {
			accepted[i].TaskID = task.ID
			accepted[i].Position = next + i
		}
		return tx.Create(&accepted).Error
	})
	if err != nil {
		return nil, translateError(err)
	}

	return surplus, nil
}

func (r *TaskRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) ([]models.PendingFileDeletion, error) {
	var pending []models.PendingFileDeletion

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := lockForUpdate(tx).Select("id").Where("id = ?", id).First(&task).Error; err != nil {
			return err
		}

		var attachments []models.Attachment
		if err := tx.Where("task_id = ?", id).Order("position ASC").Find(&attachments).Error; err != nil {
			return err
		}

		for _, a := range attachments {
			pending = append(pending, models.PendingFileDeletion{Path: a.Path})
		}
		if len(pending) > 0 {
			if err := tx.Create(&pending).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("task_id = ?", id).Delete(&models.Attachment{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Task{}).Error
	})
	if err != nil {
		return nil, translateError(err)
	}

	return pending, nil
}

func (r *TaskRepositoryImpl) DeleteAttachment(ctx context.Context, taskID, attachmentID uuid.UUID) (*models.PendingFileDeletion, error) {
	var pending *models.PendingFileDeletion

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var attachment models.Attachment
		if err := tx.Where("id = ? AND task_id = ?", attachmentID, taskID).First(&attachment).Error; err != nil {
			return err
		}

		pending = &models.PendingFileDeletion{Path: attachment.Path}
		if err := tx.Create(pending).Error; err != nil {
			return err
		}

		if err := tx.Delete(&attachment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Task{}).Where("id = ?", taskID).Update("updated_at", tx.NowFunc()).Error
	})
	if err != nil {
		return nil, translateError(err)
	}

	return pending, nil
}

func (r *TaskRepositoryImpl) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Task{}).
		Where("assigned_to_id = ? OR created_by_id = ?", userID, userID).
		Count(&count).Error
	return count, err
}

func (r *TaskRepositoryImpl) withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("AssignedTo").
		Preload("CreatedBy").
		Preload("Attachments", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		})
}

func applyTaskFilter(db *gorm.DB, filter repositories.TaskFilter) *gorm.DB {
	if filter.AssignedToID != nil {
		db = db.Where("assigned_to_id = ?", *filter.AssignedToID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		db = db.Where("priority = ?", filter.Priority)
	}
	return db
}

// lockForUpdate ใช้ row lock เฉพาะ postgres (sqlite lock ทั้งไฟล์อยู่แล้ว)
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == DriverPostgres {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
