package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Attachment ไฟล์แนบของ task (สูงสุด 3 ไฟล์ต่อ task)
type Attachment struct {
	ID           uuid.UUID `gorm:"primaryKey;type:uuid"`
	TaskID       uuid.UUID `gorm:"type:uuid;not null;index"`
	Filename     string    `gorm:"size:255;not null;uniqueIndex"` // generated, used as storage name
	OriginalName string    `gorm:"size:255;not null"`
	Path         string    `gorm:"size:500;not null"` // storage key
	URL          string    `gorm:"size:1000"`
	Size         int64
	MimeType     string `gorm:"size:100"`
	Position     int    `gorm:"not null;default:0"` // order within the task, oldest first
	CreatedAt    time.Time
}

func (Attachment) TableName() string {
	return "attachments"
}

func (a *Attachment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// PendingFileDeletion is an outbox row for a stored file whose metadata is
// already gone. It is written in the same transaction as the metadata delete
// and removed once the file is confirmed gone.
type PendingFileDeletion struct {
	ID        uuid.UUID `gorm:"primaryKey;type:uuid"`
	Path      string    `gorm:"size:500;not null"`
	Attempts  int       `gorm:"not null;default:0"`
	LastError string    `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (PendingFileDeletion) TableName() string {
	return "pending_file_deletions"
}

func (p *PendingFileDeletion) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
