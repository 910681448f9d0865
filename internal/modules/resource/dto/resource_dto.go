package dto

import (
	"time"

	"github.com/google/uuid"

	"viralacademy.com/academy/internal/entity"
)

type CreateResourceRequest struct {
	Title string `json:"title" binding:"required,min=2,max=200"`
	URL   string `json:"url" binding:"required,url"`
	Kind  string `json:"kind" binding:"required,oneof=link pdf template worksheet"`
}

type ResourceResponse struct {
	ID        uuid.UUID `json:"id"`
	CourseID  uuid.UUID `json:"course_id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

func ToResourceResponse(r *entity.Resource) ResourceResponse {
	return ResourceResponse{
		ID:        r.ID,
		CourseID:  r.CourseID,
		Title:     r.Title,
		URL:       r.URL,
		Kind:      r.Kind,
		CreatedAt: r.CreatedAt,
	}
}
