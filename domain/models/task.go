package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in-progress"
	TaskStatusCompleted  = "completed"
	TaskStatusCancelled  = "cancelled"

	TaskPriorityLow    = "low"
	TaskPriorityMedium = "medium"
	TaskPriorityHigh   = "high"
	TaskPriorityUrgent = "urgent"
)

// MaxTaskAttachments จำนวนไฟล์แนบสูงสุดต่อ task
const MaxTaskAttachments = 3

type Task struct {
	ID           uuid.UUID    `gorm:"primaryKey;type:uuid"`
	Title        string       `gorm:"size:200;not null"`
	Description  string       `gorm:"type:text"`
	Status       string       `gorm:"size:20;default:'pending';index"`
	Priority     string       `gorm:"size:20;default:'medium';index"`
	DueDate      time.Time    `gorm:"not null"`
	AssignedToID uuid.UUID    `gorm:"type:uuid;not null;index"`
	AssignedTo   User         `gorm:"foreignKey:AssignedToID"`
	CreatedByID  uuid.UUID    `gorm:"type:uuid;not null;index"`
	CreatedBy    User         `gorm:"foreignKey:CreatedByID"`
	Attachments  []Attachment `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Task) TableName() string {
	return "tasks"
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// CanBeActedOnBy is the single access rule for a task: admins may act on
// any task, everyone else only on tasks assigned to them.
func (t *Task) CanBeActedOnBy(userID uuid.UUID, role string) bool {
	return role == RoleAdmin || t.AssignedToID == userID
}

// FreeAttachmentSlots คืนจำนวนไฟล์ที่ยังแนบเพิ่มได้
func (t *Task) FreeAttachmentSlots() int {
	free := MaxTaskAttachments - len(t.Attachments)
	if free < 0 {
		return 0
	}
	return free
}

// FindAttachment returns the attachment with the given id, or nil.
func (t *Task) FindAttachment(id uuid.UUID) *Attachment {
	for i := range t.Attachments {
		if t.Attachments[i].ID == id {
			return &t.Attachments[i]
		}
	}
	return nil
}

func IsValidTaskStatus(status string) bool {
	switch status {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled:
		return true
	}
	return false
}

func IsValidTaskPriority(priority string) bool {
	switch priority {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	}
	return false
}
