package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreateTaskRequest มาจาก multipart form (documents แยกอ่านจาก form files)
type CreateTaskRequest struct {
	Title       string `json:"title" form:"title" validate:"required,min=1,max=200"`
	Description string `json:"description" form:"description" validate:"required,max=5000"`
	Status      string `json:"status" form:"status" validate:"omitempty,oneof=pending in-progress completed cancelled"`
	Priority    string `json:"priority" form:"priority" validate:"omitempty,oneof=low medium high urgent"`
	DueDate     string `json:"dueDate" form:"dueDate" validate:"required"`
	AssignedTo  string `json:"assignedTo" form:"assignedTo" validate:"required,uuid"`
}

// UpdateTaskRequest ค่าว่าง = คงค่าเดิม
type UpdateTaskRequest struct {
	Title       string `json:"title" form:"title" validate:"omitempty,min=1,max=200"`
	Description string `json:"description" form:"description" validate:"omitempty,max=5000"`
	Status      string `json:"status" form:"status" validate:"omitempty,oneof=pending in-progress completed cancelled"`
	Priority    string `json:"priority" form:"priority" validate:"omitempty,oneof=low medium high urgent"`
	DueDate     string `json:"dueDate" form:"dueDate"`
	AssignedTo  string `json:"assignedTo" form:"assignedTo" validate:"omitempty,uuid"`
}

type TaskFilterRequest struct {
	Status     string `query:"status" validate:"omitempty,oneof=pending in-progress completed cancelled"`
	Priority   string `query:"priority" validate:"omitempty,oneof=low medium high urgent"`
	AssignedTo string `query:"assignedTo" validate:"omitempty,uuid"`
}

type TaskResponse struct {
	ID          uuid.UUID            `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Status      string               `json:"status"`
	Priority    string               `json:"priority"`
	DueDate     time.Time            `json:"dueDate"`
	AssignedTo  UserRef              `json:"assignedTo"`
	CreatedBy   UserRef              `json:"createdBy"`
	Documents   []AttachmentResponse `json:"documents"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

type AttachmentResponse struct {
	ID           uuid.UUID `json:"id"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalName"`
	Path         string    `json:"path"`
	URL          string    `json:"url"`
	Size         int64     `json:"size"`
	MimeType     string    `json:"mimetype"`
	CreatedAt    time.Time `json:"createdAt"`
}
