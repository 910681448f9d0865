package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NotificationLike         = "like"
	NotificationComment      = "comment"
	NotificationReply        = "reply"
	NotificationAnnouncement = "announcement"
	NotificationLiveEvent    = "live_event"
	NotificationReminder     = "live_event_reminder"
	NotificationEnrollment   = "enrollment"
	NotificationCertificate  = "certificate"
	NotificationSubscription = "subscription"
)

type Notification struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_notifications_user_read,priority:1" json:"user_id"`
	ActorID   *uuid.UUID `gorm:"type:uuid" json:"actor_id,omitempty"`
	Actor     *User      `gorm:"foreignKey:ActorID" json:"-"`
	Type      string     `gorm:"size:40;not null" json:"type"`
	Title     string     `gorm:"size:200;not null" json:"title"`
	Message   string     `gorm:"type:text" json:"message"`
	Link      string     `gorm:"type:text" json:"link"`
	EntityID  *uuid.UUID `gorm:"type:uuid" json:"entity_id,omitempty"`
	Read      bool       `gorm:"not null;default:false;index:idx_notifications_user_read,priority:2" json:"read"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID, err = uuid.NewV7()
	}
	return
}
