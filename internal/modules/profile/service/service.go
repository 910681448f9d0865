package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"viralacademy.com/academy/internal/authz"
	"viralacademy.com/academy/internal/entity"
	profileDto "viralacademy.com/academy/internal/modules/profile/dto"
	profileRepo "viralacademy.com/academy/internal/modules/profile/repository"
	"viralacademy.com/academy/pkg/apperror"
	"viralacademy.com/academy/pkg/database"
)

// UserStore is the subset of the user repository the profile needs.
type UserStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
}

type ProfileService interface {
	GetCurrentProfile(ctx context.Context, identity *authz.Identity) (*profileDto.MeResponse, error)
	UpdateProfile(ctx context.Context, identity *authz.Identity, input profileDto.UpdateProfileRequest) (*profileDto.MeResponse, error)
	CompleteOnboarding(ctx context.Context, identity *authz.Identity) (*profileDto.MeResponse, error)
	GetPublicProfile(ctx context.Context, identity *authz.Identity, userID uuid.UUID) (*profileDto.PublicProfileResponse, error)
}

type profileService struct {
	repo  profileRepo.ProfileRepository
	users UserStore
}

func NewProfileService(repo profileRepo.ProfileRepository, users UserStore) ProfileService {
	return &profileService{repo: repo, users: users}
}

func (s *profileService) GetCurrentProfile(ctx context.Context, identity *authz.Identity) (*profileDto.MeResponse, error) {
	if err := authz.Authorize(identity, authz.Anyone, nil); err != nil {
		return nil, err
	}
	return s.me(ctx, identity.ID)
}

func (s *profileService) UpdateProfile(ctx context.Context, identity *authz.Identity, input profileDto.UpdateProfileRequest) (*profileDto.MeResponse, error) {
	if err := authz.Authorize(identity, authz.Anyone, nil); err != nil {
		return nil, err
	}

	user, err := s.findUser(ctx, identity.ID)
	if err != nil {
		return nil, err
	}

	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		return nil, apperror.Validation("display name is required")
	}

	profile := &entity.Profile{
		UserID:      user.ID,
		DisplayName: displayName,
		Headline:    normalizeOptional(input.Headline),
		Bio:         normalizeOptional(input.Bio),
		WebsiteURL:  normalizeOptional(input.WebsiteURL),
	}
	if err := s.repo.Upsert(ctx, profile); err != nil {
		return nil, apperror.Internal(err)
	}

	if input.AvatarURL != nil {
		user.AvatarURL = normalizeOptional(input.AvatarURL)
		if err := s.users.Update(ctx, user); err != nil {
			return nil, apperror.Internal(err)
		}
	}

	return s.me(ctx, identity.ID)
}

func (s *profileService) CompleteOnboarding(ctx context.Context, identity *authz.Identity) (*profileDto.MeResponse, error) {
	if err := authz.Authorize(identity, authz.Anyone, nil); err != nil {
		return nil, err
	}

	user, err := s.findUser(ctx, identity.ID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.MarkOnboarded(ctx, user.ID, user.Name); err != nil {
		return nil, apperror.Internal(err)
	}

	return s.me(ctx, identity.ID)
}

func (s *profileService) GetPublicProfile(ctx context.Context, identity *authz.Identity, userID uuid.UUID) (*profileDto.PublicProfileResponse, error) {
	if err := authz.Authorize(identity, authz.Anyone, nil); err != nil {
		return nil, err
	}

	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.Active && !identity.IsStaff() {
		return nil, apperror.NotFound("user not found")
	}

	resp := profileDto.ToPublicProfileResponse(user)
	return &resp, nil
}

func (s *profileService) me(ctx context.Context, userID uuid.UUID) (*profileDto.MeResponse, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := profileDto.ToMeResponse(user)
	return &resp, nil
}

func (s *profileService) findUser(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, apperror.Internal(err)
	}
	return user, nil
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}

	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}

	result := trimmed
	return &result
}
