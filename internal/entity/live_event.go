package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LiveEvent struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title           string     `gorm:"size:200;not null" json:"title"`
	Description     string     `gorm:"type:text" json:"description"`
	StartsAt        time.Time  `gorm:"not null;index" json:"starts_at"`
	DurationMinutes int        `gorm:"not null;default:60" json:"duration_minutes"`
	JoinURL         string     `gorm:"type:text" json:"join_url"`
	HostID          uuid.UUID  `gorm:"type:uuid;not null" json:"host_id"`
	Host            User       `gorm:"foreignKey:HostID" json:"-"`
	CourseID        *uuid.UUID `gorm:"type:uuid;index" json:"course_id,omitempty"`
	ReminderSentAt  *time.Time `json:"reminder_sent_at,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (e *LiveEvent) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID, err = uuid.NewV7()
	}
	return
}
