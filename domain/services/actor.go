package services

import (
	"github.com/google/uuid"

	"taskboard/domain/models"
)

// Actor คือผู้ใช้ที่ผ่าน authentication gate แล้ว
type Actor struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
}

func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == models.RoleAdmin
}

// ActorFromUser builds the request identity for a stored user.
func ActorFromUser(user *models.User) *Actor {
	return &Actor{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	}
}
