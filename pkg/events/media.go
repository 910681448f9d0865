package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	LessonVideoUpdated = "lesson.video.updated"
	LessonVideoRemoved = "lesson.video.removed"
)

// MediaEvent is written to the media catalog topic whenever a lesson video changes.
type MediaEvent struct {
	Type       string    `json:"type"`
	LessonID   uuid.UUID `json:"lesson_id"`
	ModuleID   uuid.UUID `json:"module_id"`
	VideoID    string    `json:"video_id,omitempty"`
	ActorID    uuid.UUID `json:"actor_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
