package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateProjectRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"max=5000"`
}

type UpdateProjectRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
}

type AssignUserRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
}

type ProjectResponse struct {
	ID            uuid.UUID      `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	OwnerID       uuid.UUID      `json:"owner_id"`
	OwnerEmail    string         `json:"owner_email,omitempty"`
	IsOwner       bool           `json:"is_owner"`
	AssignedUsers []UserResponse `json:"assigned_users,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

type ProjectListResponse struct {
	Projects []ProjectResponse `json:"projects"`
	Count    int               `json:"count"`
}
