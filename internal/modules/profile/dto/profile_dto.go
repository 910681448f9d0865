package dto

import (
	"time"

	"github.com/google/uuid"

	"viralacademy.com/academy/internal/entity"
	userDto "viralacademy.com/academy/internal/modules/user/dto"
)

// UpdateProfileRequest replaces the editable profile fields. Empty optional
// strings clear the field.
type UpdateProfileRequest struct {
	DisplayName string  `json:"display_name" binding:"required,min=2,max=100"`
	Headline    *string `json:"headline" binding:"omitempty,max=160"`
	Bio         *string `json:"bio" binding:"omitempty,max=2000"`
	WebsiteURL  *string `json:"website_url" binding:"omitempty,max=500"`
	AvatarURL   *string `json:"avatar_url" binding:"omitempty,max=500"`
}

type ProfileResponse struct {
	DisplayName    string  `json:"display_name"`
	Headline       *string `json:"headline,omitempty"`
	Bio            *string `json:"bio,omitempty"`
	WebsiteURL     *string `json:"website_url,omitempty"`
	OnboardingDone bool    `json:"onboarding_done"`
}

// MeResponse is returned for the caller's own profile.
type MeResponse struct {
	User    userDto.UserResponse `json:"user"`
	Profile ProfileResponse      `json:"profile"`
}

// PublicProfileResponse is returned when viewing another user's profile.
type PublicProfileResponse struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Role      string          `json:"role"`
	AvatarURL *string         `json:"avatar_url,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	Profile   ProfileResponse `json:"profile"`
}

// ToProfileResponse falls back to defaults derived from the user while no
// profile row exists.
func ToProfileResponse(u *entity.User) ProfileResponse {
	if u.Profile == nil {
		return ProfileResponse{DisplayName: u.Name}
	}
	return ProfileResponse{
		DisplayName:    u.Profile.DisplayName,
		Headline:       u.Profile.Headline,
		Bio:            u.Profile.Bio,
		WebsiteURL:     u.Profile.WebsiteURL,
		OnboardingDone: u.Profile.OnboardingDone,
	}
}

func ToMeResponse(u *entity.User) MeResponse {
	return MeResponse{
		User:    userDto.ToUserResponse(u),
		Profile: ToProfileResponse(u),
	}
}

func ToPublicProfileResponse(u *entity.User) PublicProfileResponse {
	return PublicProfileResponse{
		ID:        u.ID,
		Name:      u.Name,
		Role:      u.Role,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
		Profile:   ToProfileResponse(u),
	}
}
