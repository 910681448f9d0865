package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"viralacademy.com/academy/internal/authz"
	"viralacademy.com/academy/internal/entity"
	profileDto "viralacademy.com/academy/internal/modules/profile/dto"
	"viralacademy.com/academy/pkg/apperror"
)

type fakeUsers map[uuid.UUID]*entity.User

func (f fakeUsers) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	u, ok := f[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (f fakeUsers) Update(_ context.Context, u *entity.User) error {
	f[u.ID] = u
	return nil
}

// fakeProfiles stores rows on the user so FindByID sees them, like a Preload.
type fakeProfiles struct {
	users  fakeUsers
	writes int
}

func (f *fakeProfiles) Upsert(_ context.Context, p *entity.Profile) error {
	f.writes++
	u := f.users[p.UserID]
	if u.Profile == nil {
		u.Profile = &entity.Profile{UserID: p.UserID}
	}
	u.Profile.DisplayName = p.DisplayName
	u.Profile.Headline = p.Headline
	u.Profile.Bio = p.Bio
	u.Profile.WebsiteURL = p.WebsiteURL
	return nil
}

func (f *fakeProfiles) MarkOnboarded(_ context.Context, userID uuid.UUID, displayName string) error {
	f.writes++
	u := f.users[userID]
	if u.Profile == nil {
		u.Profile = &entity.Profile{UserID: userID, DisplayName: displayName}
	}
	u.Profile.OnboardingDone = true
	return nil
}

func strPtr(s string) *string { return &s }

func setup() (ProfileService, fakeUsers, *fakeProfiles, *entity.User) {
	me := &entity.User{ID: uuid.New(), Name: "Rina", Role: entity.RoleStudent, Active: true}
	users := fakeUsers{me.ID: me}
	profiles := &fakeProfiles{users: users}
	return NewProfileService(profiles, users), users, profiles, me
}

func TestGetCurrentProfileDefaults(t *testing.T) {
	svc, _, profiles, me := setup()

	_, err := svc.GetCurrentProfile(context.Background(), nil)
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)

	resp, err := svc.GetCurrentProfile(context.Background(), &authz.Identity{ID: me.ID, Role: me.Role})
	require.NoError(t, err)
	assert.Equal(t, "Rina", resp.Profile.DisplayName)
	assert.False(t, resp.Profile.OnboardingDone)
	assert.Zero(t, profiles.writes)
}

func TestUpdateProfileCreatesRow(t *testing.T) {
	svc, users, _, me := setup()
	identity := &authz.Identity{ID: me.ID, Role: me.Role}

	resp, err := svc.UpdateProfile(context.Background(), identity, profileDto.UpdateProfileRequest{
		DisplayName: "  Rina K ",
		Headline:    strPtr("Short-form storyteller"),
		Bio:         strPtr("   "),
		AvatarURL:   strPtr("https://cdn.example.com/rina.webp"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Rina K", resp.Profile.DisplayName)
	assert.Equal(t, "Short-form storyteller", *resp.Profile.Headline)
	assert.Nil(t, resp.Profile.Bio)
	require.NotNil(t, users[me.ID].AvatarURL)
	assert.Equal(t, "https://cdn.example.com/rina.webp", *resp.User.AvatarURL)

	_, err = svc.UpdateProfile(context.Background(), identity, profileDto.UpdateProfileRequest{DisplayName: "   "})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestCompleteOnboarding(t *testing.T) {
	svc, _, _, me := setup()
	identity := &authz.Identity{ID: me.ID, Role: me.Role}

	resp, err := svc.CompleteOnboarding(context.Background(), identity)
	require.NoError(t, err)
	assert.True(t, resp.Profile.OnboardingDone)
	assert.True(t, resp.User.OnboardingDone)
	assert.Equal(t, "Rina", resp.Profile.DisplayName)

	_, err = svc.CompleteOnboarding(context.Background(), &authz.Identity{ID: uuid.New(), Role: entity.RoleStudent})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestGetPublicProfile(t *testing.T) {
	svc, users, _, me := setup()
	viewer := &authz.Identity{ID: uuid.New(), Role: entity.RoleStudent}
	admin := &authz.Identity{ID: uuid.New(), Role: entity.RoleAdmin}

	resp, err := svc.GetPublicProfile(context.Background(), viewer, me.ID)
	require.NoError(t, err)
	assert.Equal(t, me.ID, resp.ID)

	_, err = svc.GetPublicProfile(context.Background(), viewer, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	users[me.ID].Active = false
	_, err = svc.GetPublicProfile(context.Background(), viewer, me.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	_, err = svc.GetPublicProfile(context.Background(), admin, me.ID)
	assert.NoError(t, err)
}
