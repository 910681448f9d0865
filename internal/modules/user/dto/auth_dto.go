package dto

import (
	"time"

	"github.com/google/uuid"

	"viralacademy.com/academy/internal/entity"
)

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Name     string `json:"name" binding:"required,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   int64        `json:"expires_at"`
	User        UserResponse `json:"user"`
}

type UserResponse struct {
	ID                 uuid.UUID `json:"id"`
	Email              string    `json:"email"`
	Name               string    `json:"name"`
	Role               string    `json:"role"`
	Active             bool      `json:"active"`
	AvatarURL          *string   `json:"avatar_url"`
	SubscriptionStatus string    `json:"subscription_status"`
	OnboardingDone     bool      `json:"onboarding_done"`
	CreatedAt          time.Time `json:"created_at"`
}

func ToUserResponse(u *entity.User) UserResponse {
	resp := UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Active:    u.Active,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
	}
	if u.Subscription != nil {
		resp.SubscriptionStatus = u.Subscription.Status
	}
	if u.Profile != nil {
		resp.OnboardingDone = u.Profile.OnboardingDone
	}
	return resp
}
