package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"viralacademy.com/academy/internal/entity"
)

type ProfileRepository interface {
	// Upsert creates the profile row on first write and overwrites the
	// editable columns afterwards.
	Upsert(ctx context.Context, profile *entity.Profile) error
	// MarkOnboarded sets onboarding_done, creating the row with displayName
	// when it does not exist yet.
	MarkOnboarded(ctx context.Context, userID uuid.UUID, displayName string) error
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Upsert(ctx context.Context, profile *entity.Profile) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"display_name", "headline", "bio", "website_url", "updated_at"}),
		}).
		Create(profile).Error
}

func (r *profileRepository) MarkOnboarded(ctx context.Context, userID uuid.UUID, displayName string) error {
	profile := &entity.Profile{UserID: userID, DisplayName: displayName, OnboardingDone: true}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"onboarding_done", "updated_at"}),
		}).
		Create(profile).Error
}
