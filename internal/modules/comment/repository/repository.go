package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"viralacademy.com/academy/internal/entity"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *entity.Comment) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Comment, error)
	ListByPost(ctx context.Context, postID uuid.UUID, limit, offset int) ([]entity.Comment, int64, error)
	UpdateContent(ctx context.Context, id uuid.UUID, content string) error
	// Delete removes the comment, its replies and the likes on all of them.
	Delete(ctx context.Context, id uuid.UUID) error
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *entity.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Comment, error) {
	var comment entity.Comment
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("id = ?", id).
		First(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID uuid.UUID, limit, offset int) ([]entity.Comment, int64, error) {
	var comments []entity.Comment
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Comment{}).Where("post_id = ?", postID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Preload("Author").
		Order("created_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&comments).Error; err != nil {
		return nil, 0, err
	}

	return comments, total, nil
}

func (r *commentRepository) UpdateContent(ctx context.Context, id uuid.UUID, content string) error {
	return r.db.WithContext(ctx).
		Model(&entity.Comment{}).
		Where("id = ?", id).
		Update("content", content).Error
}

func (r *commentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		replyIDs := tx.Model(&entity.Comment{}).Select("id").Where("parent_id = ?", id)

		if err := tx.Where("comment_id IN (?)", replyIDs).Delete(&entity.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("parent_id = ?", id).Delete(&entity.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("comment_id = ?", id).Delete(&entity.Like{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.Comment{}, "id = ?", id).Error
	})
}
