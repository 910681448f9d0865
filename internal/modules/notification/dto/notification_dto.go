package dto

import (
	"time"

	"github.com/google/uuid"

	"viralacademy.com/academy/internal/entity"
	commonDto "viralacademy.com/academy/pkg/dto"
)

type NotificationResponse struct {
	ID        uuid.UUID                 `json:"id"`
	Type      string                    `json:"type"`
	Title     string                    `json:"title"`
	Message   string                    `json:"message"`
	Link      string                    `json:"link"`
	EntityID  *uuid.UUID                `json:"entity_id"`
	Read      bool                      `json:"read"`
	Actor     *commonDto.AuthorResponse `json:"actor"`
	CreatedAt time.Time                 `json:"created_at"`
}

type NotificationListResponse struct {
	Data []NotificationResponse  `json:"data"`
	Meta commonDto.PaginationMeta `json:"meta"`
}

type AnnouncementRequest struct {
	Title   string `json:"title" binding:"required,max=200"`
	Message string `json:"message" binding:"required,max=2000"`
	Link    string `json:"link" binding:"omitempty,max=500"`
}

func ToNotificationResponse(n *entity.Notification) NotificationResponse {
	resp := NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Link:      n.Link,
		EntityID:  n.EntityID,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
	if n.Actor != nil {
		resp.Actor = &commonDto.AuthorResponse{
			ID:        n.Actor.ID,
			Name:      n.Actor.Name,
			AvatarURL: n.Actor.AvatarURL,
			Role:      n.Actor.Role,
		}
	}
	return resp
}
