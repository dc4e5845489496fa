package dto

import (
	"time"

	"github.com/google/uuid"
)

// UpdateUserRequest ทุก field เป็น optional; ค่าว่าง = ไม่เปลี่ยน
type UpdateUserRequest struct {
	Name     string `json:"name" validate:"omitempty,min=1,max=100"`
	Email    string `json:"email" validate:"omitempty,email,max=255"`
	Password string `json:"password" validate:"omitempty,min=6,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=user admin"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserRef is the compact user shape embedded in task responses.
type UserRef struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}
