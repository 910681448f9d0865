package dto

import (
	"github.com/google/uuid"

	"viralacademy.com/academy/internal/entity"
)

type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"max=1000"`
	StaffOnly   bool   `json:"staff_only"`
}

type CategoryFilter struct {
	Search string `form:"search" binding:"max=100"`
}

type CategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	StaffOnly   bool      `json:"staff_only"`
}

func ToCategoryResponse(c *entity.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		StaffOnly:   c.StaffOnly,
	}
}
