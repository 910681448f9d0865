package dto

import (
	"time"

	"github.com/google/uuid"

	"viralacademy.com/academy/internal/entity"
)

type CreateLessonRequest struct {
	Title           string `json:"title" binding:"required,min=3,max=200"`
	Content         string `json:"content" binding:"max=100000"`
	VideoID         string `json:"video_id" binding:"max=255"`
	DurationSeconds int    `json:"duration_seconds" binding:"min=0"`
	IsPreview       bool   `json:"is_preview"`
	Order           *int   `json:"order" binding:"omitempty,min=1"`
}

type UpdateLessonRequest struct {
	Title           string `json:"title" binding:"required,min=3,max=200"`
	Content         string `json:"content" binding:"max=100000"`
	VideoID         string `json:"video_id" binding:"max=255"`
	DurationSeconds int    `json:"duration_seconds" binding:"min=0"`
	IsPreview       bool   `json:"is_preview"`
	Order           *int   `json:"order" binding:"omitempty,min=1"`
}

// LessonResponse exposes the video only as an obfuscated token.
type LessonResponse struct {
	ID              uuid.UUID `json:"id"`
	ModuleID        uuid.UUID `json:"module_id"`
	CourseID        uuid.UUID `json:"course_id"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	VideoToken      string    `json:"video_token,omitempty"`
	DurationSeconds int       `json:"duration_seconds"`
	IsPreview       bool      `json:"is_preview"`
	Order           int       `json:"order"`
	Completed       bool      `json:"completed"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type ProgressResponse struct {
	CourseID  uuid.UUID `json:"course_id"`
	Completed int64     `json:"completed"`
	Total     int64     `json:"total"`
	Percent   int       `json:"percent"`
}

func NewProgressResponse(courseID uuid.UUID, completed, total int64) ProgressResponse {
	percent := 0
	if total > 0 {
		percent = int(completed * 100 / total)
	}
	return ProgressResponse{
		CourseID:  courseID,
		Completed: completed,
		Total:     total,
		Percent:   percent,
	}
}

func ToLessonResponse(l *entity.Lesson, courseID uuid.UUID, videoToken string, completed bool) LessonResponse {
	return LessonResponse{
		ID:              l.ID,
		ModuleID:        l.ModuleID,
		CourseID:        courseID,
		Title:           l.Title,
		Content:         l.Content,
		VideoToken:      videoToken,
		DurationSeconds: l.DurationSeconds,
		IsPreview:       l.IsPreview,
		Order:           l.Order,
		Completed:       completed,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
	}
}
