package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleStudent = "STUDENT"
	RoleMentor  = "MENTOR"
	RoleAdmin   = "ADMIN"
)

func IsValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleMentor, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string        `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Name         string        `gorm:"size:100;not null" json:"name"`
	PasswordHash string        `gorm:"size:255;not null" json:"-"`
	Role         string        `gorm:"size:20;not null;index" json:"role"`
	Active       bool          `gorm:"not null" json:"active"`
	AvatarURL    *string       `gorm:"type:text" json:"avatar_url,omitempty"`
	GoogleID     *string       `gorm:"size:100;uniqueIndex" json:"-"`
	CreatedAt    time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
	Profile      *Profile      `gorm:"constraint:OnDelete:CASCADE" json:"profile,omitempty"`
	Subscription *Subscription `gorm:"constraint:OnDelete:CASCADE" json:"subscription,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID, err = uuid.NewV7()
	}
	if u.Role == "" {
		u.Role = RoleStudent
	}
	return
}

func (u *User) IsStaff() bool {
	return u.Role == RoleMentor || u.Role == RoleAdmin
}

// Profile is created lazily the first time a user writes to it.
type Profile struct {
	UserID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	DisplayName    string    `gorm:"size:100" json:"display_name"`
	Headline       *string   `gorm:"size:160" json:"headline,omitempty"`
	Bio            *string   `gorm:"type:text" json:"bio,omitempty"`
	WebsiteURL     *string   `gorm:"type:text" json:"website_url,omitempty"`
	OnboardingDone bool      `gorm:"not null;default:false" json:"onboarding_done"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
