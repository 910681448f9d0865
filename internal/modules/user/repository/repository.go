package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"viralacademy.com/academy/internal/entity"
)

type UserFilter struct {
	Search string
	Role   string
}

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	List(ctx context.Context, filter UserFilter, limit, offset int) ([]entity.User, int64, error)
	ListActiveIDs(ctx context.Context) ([]uuid.UUID, error)
	CountByRole(ctx context.Context) (map[string]int64, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	user.Email = normalizeEmail(user.Email)
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).
		Preload("Profile").
		Preload("Subscription").
		First(&user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).
		Preload("Profile").
		Preload("Subscription").
		Where("email = ?", normalizeEmail(email)).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).
		Model(user).
		Select("Name", "Role", "Active", "AvatarURL", "GoogleID").
		Updates(user).Error
}

func (r *userRepository) List(ctx context.Context, filter UserFilter, limit, offset int) ([]entity.User, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.User{})

	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("email ILIKE ? OR name ILIKE ?", like, like)
	}
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []entity.User
	err := query.
		Preload("Subscription").
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&users).Error
	return users, total, err
}

func (r *userRepository) ListActiveIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("active = ?", true).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *userRepository) CountByRole(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Role  string
		Count int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&entity.User{}).
		Select("role, count(*) as count").
		Group("role").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Role] = r.Count
	}
	return counts, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
