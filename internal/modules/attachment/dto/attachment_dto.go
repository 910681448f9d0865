package dto

import (
	"time"

	"github.com/google/uuid"

	"viralacademy.com/academy/internal/entity"
)

type UploadQuery struct {
	Kind string `form:"kind" binding:"omitempty,oneof=image file"`
}

type AttachmentResponse struct {
	ID        uuid.UUID `json:"id"`
	Kind      string    `json:"kind"`
	FileName  string    `json:"file_name"`
	URL       string    `json:"url"`
	MimeType  string    `json:"mime_type"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

func ToAttachmentResponse(a *entity.Attachment) AttachmentResponse {
	return AttachmentResponse{
		ID:        a.ID,
		Kind:      a.Kind,
		FileName:  a.FileName,
		URL:       a.URL,
		MimeType:  a.MimeType,
		Size:      a.Size,
		CreatedAt: a.CreatedAt,
	}
}
