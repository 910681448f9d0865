package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"viralacademy.com/academy/internal/entity"
)

type PostRepository interface {
	Create(ctx context.Context, post *entity.Post) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Post, error)
	List(ctx context.Context, categoryID *uuid.UUID, limit, offset int) ([]entity.Post, int64, error)
	CountComments(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	Update(ctx context.Context, post *entity.Post) error
	AddViews(ctx context.Context, id uuid.UUID, n int64) error
	// Delete removes the post with its comments and every like on either.
	Delete(ctx context.Context, id uuid.UUID) error
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *entity.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Post, error) {
	var post entity.Post
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Category").
		Where("id = ?", id).
		First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, categoryID *uuid.UUID, limit, offset int) ([]entity.Post, int64, error) {
	var posts []entity.Post
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Post{})
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Preload("Author").
		Preload("Category").
		Order("pinned DESC").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

func (r *postRepository) CountComments(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(postIDs))
	if len(postIDs) == 0 {
		return counts, nil
	}

	type row struct {
		PostID uuid.UUID
		Count  int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&entity.Comment{}).
		Select("post_id, COUNT(*) AS count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.PostID] = row.Count
	}
	return counts, nil
}

func (r *postRepository) Update(ctx context.Context, post *entity.Post) error {
	return r.db.WithContext(ctx).
		Model(post).
		Select("CategoryID", "Title", "Content", "Pinned").
		Updates(post).Error
}

func (r *postRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		commentIDs := tx.Model(&entity.Comment{}).Select("id").Where("post_id = ?", id)

		if err := tx.Where("comment_id IN (?)", commentIDs).Delete(&entity.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&entity.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&entity.Like{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.Post{}, "id = ?", id).Error
	})
}

func (r *postRepository) AddViews(ctx context.Context, id uuid.UUID, n int64) error {
	return r.db.WithContext(ctx).
		Model(&entity.Post{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", n)).Error
}
