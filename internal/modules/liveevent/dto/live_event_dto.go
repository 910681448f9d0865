package dto

import (
	"time"

	"github.com/google/uuid"

	"viralacademy.com/academy/internal/entity"
	postDto "viralacademy.com/academy/internal/modules/post/dto"
	commonDto "viralacademy.com/academy/pkg/dto"
)

type LiveEventRequest struct {
	Title           string    `json:"title" binding:"required,min=3,max=200"`
	Description     string    `json:"description" binding:"max=5000"`
	StartsAt        time.Time `json:"starts_at" binding:"required"`
	DurationMinutes int       `json:"duration_minutes" binding:"omitempty,min=15,max=480"`
	JoinURL         string    `json:"join_url" binding:"omitempty,url"`
	CourseID        string    `json:"course_id" binding:"omitempty,uuid"`
}

type LiveEventResponse struct {
	ID              uuid.UUID                `json:"id"`
	Title           string                   `json:"title"`
	Description     string                   `json:"description"`
	StartsAt        time.Time                `json:"starts_at"`
	EndsAt          time.Time                `json:"ends_at"`
	DurationMinutes int                      `json:"duration_minutes"`
	JoinURL         string                   `json:"join_url"`
	CourseID        *uuid.UUID               `json:"course_id"`
	Host            commonDto.AuthorResponse `json:"host"`
	CreatedAt       time.Time                `json:"created_at"`
}

func ToLiveEventResponse(e *entity.LiveEvent) LiveEventResponse {
	return LiveEventResponse{
		ID:              e.ID,
		Title:           e.Title,
		Description:     e.Description,
		StartsAt:        e.StartsAt,
		EndsAt:          e.StartsAt.Add(time.Duration(e.DurationMinutes) * time.Minute),
		DurationMinutes: e.DurationMinutes,
		JoinURL:         e.JoinURL,
		CourseID:        e.CourseID,
		Host:            postDto.ToAuthorResponse(&e.Host),
		CreatedAt:       e.CreatedAt,
	}
}
