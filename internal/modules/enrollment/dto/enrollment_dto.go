package dto

import (
	"time"

	"github.com/google/uuid"

	"viralacademy.com/academy/internal/entity"
)

type CourseSummary struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Slug         string    `json:"slug"`
	ThumbnailURL *string   `json:"thumbnail_url"`
}

type Progress struct {
	Completed int64 `json:"completed"`
	Total     int64 `json:"total"`
	Percent   int   `json:"percent"`
}

type EnrollmentResponse struct {
	ID         uuid.UUID     `json:"id"`
	Course     CourseSummary `json:"course"`
	Progress   Progress      `json:"progress"`
	EnrolledAt time.Time     `json:"enrolled_at"`
}

func NewProgress(completed, total int64) Progress {
	p := Progress{Completed: completed, Total: total}
	if total > 0 {
		p.Percent = int(completed * 100 / total)
	}
	return p
}

func ToEnrollmentResponse(e *entity.Enrollment, course *entity.Course, progress Progress) EnrollmentResponse {
	return EnrollmentResponse{
		ID: e.ID,
		Course: CourseSummary{
			ID:           course.ID,
			Title:        course.Title,
			Slug:         course.Slug,
			ThumbnailURL: course.ThumbnailURL,
		},
		Progress:   progress,
		EnrolledAt: e.CreatedAt,
	}
}
