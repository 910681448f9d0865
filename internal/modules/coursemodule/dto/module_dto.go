package dto

import (
	"time"

	"github.com/google/uuid"

	"viralacademy.com/academy/internal/entity"
)

type CreateModuleRequest struct {
	Title       string `json:"title" binding:"required,min=3,max=200"`
	Description string `json:"description" binding:"max=2000"`
	Order       *int   `json:"order" binding:"omitempty,min=1"`
}

type UpdateModuleRequest struct {
	Title       string `json:"title" binding:"required,min=3,max=200"`
	Description string `json:"description" binding:"max=2000"`
	Order       *int   `json:"order" binding:"omitempty,min=1"`
}

type ModuleResponse struct {
	ID          uuid.UUID `json:"id"`
	CourseID    uuid.UUID `json:"course_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Order       int       `json:"order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func ToModuleResponse(m *entity.Module) ModuleResponse {
	return ModuleResponse{
		ID:          m.ID,
		CourseID:    m.CourseID,
		Title:       m.Title,
		Description: m.Description,
		Order:       m.Order,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
