package dto

import (
	"time"

	"github.com/acadex/acadex-api/internal/models"
)

// UserResponse is the serialized current-user payload.
type UserResponse struct {
	ID          uint      `json:"id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewUserResponse converts a user model into a DTO.
func NewUserResponse(model models.User) UserResponse {
	return UserResponse{
		ID:          model.ID,
		DisplayName: model.DisplayName,
		Email:       model.Email,
		Role:        model.Role,
		CreatedAt:   model.CreatedAt,
	}
}
