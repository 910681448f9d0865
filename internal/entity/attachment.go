package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	AttachmentImage = "image"
	AttachmentFile  = "file"
)

type Attachment struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UploaderID uuid.UUID `gorm:"type:uuid;not null;index" json:"uploader_id"`
	Kind       string    `gorm:"size:20;not null" json:"kind"`
	FileName   string    `gorm:"size:255" json:"file_name"`
	URL        string    `gorm:"type:text;not null" json:"url"`
	MimeType   string    `gorm:"size:100;not null" json:"mime_type"`
	Size       int64     `gorm:"not null" json:"size"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (a *Attachment) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID, err = uuid.NewV7()
	}
	return
}
