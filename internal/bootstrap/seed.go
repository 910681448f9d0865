package bootstrap

import (
	"errors"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"viralacademy.com/academy/internal/entity"
	"viralacademy.com/academy/pkg/slug"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.Profile{},
		&entity.Subscription{},
		&entity.Course{},
		&entity.Module{},
		&entity.Lesson{},
		&entity.Resource{},
		&entity.Enrollment{},
		&entity.LessonProgress{},
		&entity.Certificate{},
		&entity.LiveEvent{},
		&entity.Category{},
		&entity.Post{},
		&entity.Comment{},
		&entity.Like{},
		&entity.Notification{},
		&entity.Attachment{},
	)
}

type SeedConfig struct {
	AdminEmail    string
	AdminPassword string
}

// Seed creates the first admin account and the default community
// categories. Both steps are idempotent.
func Seed(db *gorm.DB, cfg SeedConfig) error {
	if err := SeedAdminUser(db, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return err
	}
	return SeedCategories(db)
}

func SeedAdminUser(db *gorm.DB, email, password string) error {
	if email == "" || password == "" {
		log.Warn().Msg("ADMIN_EMAIL or ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}
	if len(password) < 8 {
		return errors.New("ADMIN_PASSWORD must be at least 8 characters")
	}

	var count int64
	if err := db.Model(&entity.User{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Info().Str("email", email).Msg("admin user already exists, skipping seed")
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		admin := entity.User{
			Email:        email,
			Name:         "Administrator",
			PasswordHash: string(hashed),
			Role:         entity.RoleAdmin,
			Active:       true,
		}
		if err := tx.Create(&admin).Error; err != nil {
			return err
		}

		profile := entity.Profile{
			UserID:         admin.ID,
			DisplayName:    "Administrator",
			OnboardingDone: true,
		}
		if err := tx.Create(&profile).Error; err != nil {
			return err
		}

		log.Info().Str("email", email).Msg("admin user seeded")
		return nil
	})
}

var defaultCategories = []entity.Category{
	{Name: "Announcements", Description: "News from the Viral Academy team", StaffOnly: true},
	{Name: "General", Description: "Introduce yourself and talk about anything"},
	{Name: "Wins", Description: "Share results from your campaigns"},
	{Name: "Questions", Description: "Ask mentors and peers for help"},
}

func SeedCategories(db *gorm.DB) error {
	for _, category := range defaultCategories {
		category.Slug = slug.Make(category.Name)

		var count int64
		if err := db.Model(&entity.Category{}).
			Where("slug = ?", category.Slug).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		if err := db.Create(&category).Error; err != nil {
			return err
		}
	}
	return nil
}
