package dto

import (
	"github.com/google/uuid"

	"taskboard/domain/models"
)

func UserToUserResponse(user *models.User) *UserResponse {
	if user == nil {
		return nil
	}
	return &UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func UserToUserRef(user *models.User) UserRef {
	return UserRef{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}
}

func AttachmentToAttachmentResponse(a *models.Attachment) AttachmentResponse {
	return AttachmentResponse{
		ID:           a.ID,
		Filename:     a.Filename,
		OriginalName: a.OriginalName,
		Path:         a.Path,
		URL:          a.URL,
		Size:         a.Size,
		MimeType:     a.MimeType,
		CreatedAt:    a.CreatedAt,
	}
}

func TaskToTaskResponse(task *models.Task) *TaskResponse {
	if task == nil {
		return nil
	}
	resp := &TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		DueDate:     task.DueDate,
		AssignedTo:  UserToUserRef(&task.AssignedTo),
		CreatedBy:   UserToUserRef(&task.CreatedBy),
		Documents:   make([]AttachmentResponse, len(task.Attachments)),
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
	// preload อาจไม่มี (เช่นหลัง create) ให้ใช้ ID จาก foreign key
	if task.AssignedTo.ID == uuid.Nil {
		resp.AssignedTo.ID = task.AssignedToID
	}
	if task.CreatedBy.ID == uuid.Nil {
		resp.CreatedBy.ID = task.CreatedByID
	}
	for i := range task.Attachments {
		resp.Documents[i] = AttachmentToAttachmentResponse(&task.Attachments[i])
	}
	return resp
}
