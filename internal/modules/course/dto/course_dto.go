package dto

import (
	"time"

	"github.com/google/uuid"

	"viralacademy.com/academy/internal/entity"
)

type CreateCourseRequest struct {
	Title        string  `json:"title" binding:"required,min=3,max=200"`
	Slug         string  `json:"slug" binding:"omitempty,max=220"`
	Summary      string  `json:"summary" binding:"max=500"`
	Description  string  `json:"description"`
	ThumbnailURL *string `json:"thumbnail_url" binding:"omitempty,url"`
	Level        string  `json:"level" binding:"omitempty,oneof=beginner intermediate advanced"`
	Published    bool    `json:"published"`
	Order        *int    `json:"order" binding:"omitempty,min=1"`
}

type UpdateCourseRequest struct {
	Title        string  `json:"title" binding:"required,min=3,max=200"`
	Summary      string  `json:"summary" binding:"max=500"`
	Description  string  `json:"description"`
	ThumbnailURL *string `json:"thumbnail_url" binding:"omitempty,url"`
	Level        string  `json:"level" binding:"omitempty,oneof=beginner intermediate advanced"`
	Published    *bool   `json:"published"`
	Order        *int    `json:"order" binding:"omitempty,min=1"`
}

type CourseFilter struct {
	IncludeDrafts bool `form:"include_drafts"`
}

// SlugRequest shares the :id path segment with the id routes because gin
// allows one wildcard name per position.
type SlugRequest struct {
	Slug string `uri:"id" binding:"required,max=220"`
}

type CourseResponse struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Slug         string    `json:"slug"`
	Summary      string    `json:"summary"`
	Description  string    `json:"description"`
	ThumbnailURL *string   `json:"thumbnail_url"`
	Level        string    `json:"level"`
	Published    bool      `json:"published"`
	Order        int       `json:"order"`
	AuthorID     uuid.UUID `json:"author_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LessonSummary never carries video data.
type LessonSummary struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	DurationSeconds int       `json:"duration_seconds"`
	IsPreview       bool      `json:"is_preview"`
	Order           int       `json:"order"`
}

type ModuleSummary struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Order       int             `json:"order"`
	Lessons     []LessonSummary `json:"lessons"`
}

type CourseDetailResponse struct {
	CourseResponse
	Modules     []ModuleSummary `json:"modules"`
	LessonCount int             `json:"lesson_count"`
	Enrolled    bool            `json:"enrolled"`
}

func ToCourseResponse(c *entity.Course) CourseResponse {
	return CourseResponse{
		ID:           c.ID,
		Title:        c.Title,
		Slug:         c.Slug,
		Summary:      c.Summary,
		Description:  c.Description,
		ThumbnailURL: c.ThumbnailURL,
		Level:        c.Level,
		Published:    c.Published,
		Order:        c.Order,
		AuthorID:     c.AuthorID,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func ToCourseDetailResponse(c *entity.Course, enrolled bool) CourseDetailResponse {
	resp := CourseDetailResponse{
		CourseResponse: ToCourseResponse(c),
		Modules:        make([]ModuleSummary, 0, len(c.Modules)),
		Enrolled:       enrolled,
	}
	for _, m := range c.Modules {
		module := ModuleSummary{
			ID:          m.ID,
			Title:       m.Title,
			Description: m.Description,
			Order:       m.Order,
			Lessons:     make([]LessonSummary, 0, len(m.Lessons)),
		}
		for _, l := range m.Lessons {
			module.Lessons = append(module.Lessons, LessonSummary{
				ID:              l.ID,
				Title:           l.Title,
				DurationSeconds: l.DurationSeconds,
				IsPreview:       l.IsPreview,
				Order:           l.Order,
			})
		}
		resp.LessonCount += len(module.Lessons)
		resp.Modules = append(resp.Modules, module)
	}
	return resp
}
