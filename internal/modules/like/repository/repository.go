package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"viralacademy.com/academy/internal/entity"
	"viralacademy.com/academy/pkg/database"
)

const (
	TargetPost    = "post"
	TargetComment = "comment"
)

// Target identifies the liked entity.
type Target struct {
	Kind string
	ID   uuid.UUID
}

func (t Target) column() string {
	if t.Kind == TargetComment {
		return "comment_id"
	}
	return "post_id"
}

type LikeRepository interface {
	// Toggle removes the (user, target) like when it exists and creates it
	// otherwise. created is true only when this call inserted the row.
	Toggle(ctx context.Context, userID uuid.UUID, target Target) (liked bool, created bool, err error)
	Count(ctx context.Context, target Target) (int64, error)
	CountMany(ctx context.Context, kind string, ids []uuid.UUID) (map[uuid.UUID]int64, error)
	LikedBy(ctx context.Context, userID uuid.UUID, kind string, ids []uuid.UUID) (map[uuid.UUID]bool, error)
}

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) Toggle(ctx context.Context, userID uuid.UUID, target Target) (bool, bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND "+target.column()+" = ?", userID, target.ID).
		Delete(&entity.Like{})
	if res.Error != nil {
		return false, false, res.Error
	}
	if res.RowsAffected > 0 {
		return false, false, nil
	}

	like := &entity.Like{UserID: userID}
	if target.Kind == TargetComment {
		like.CommentID = &target.ID
	} else {
		like.PostID = &target.ID
	}

	if err := r.db.WithContext(ctx).Create(like).Error; err != nil {
		// A concurrent toggle inserted the same pair first.
		if database.IsUniqueViolation(err) {
			return true, false, nil
		}
		return false, false, err
	}
	return true, true, nil
}

func (r *likeRepository) Count(ctx context.Context, target Target) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Like{}).
		Where(target.column()+" = ?", target.ID).
		Count(&count).Error
	return count, err
}

func (r *likeRepository) CountMany(ctx context.Context, kind string, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}

	column := Target{Kind: kind}.column()
	type row struct {
		TargetID uuid.UUID
		Count    int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&entity.Like{}).
		Select(column+" AS target_id, COUNT(*) AS count").
		Where(column+" IN ?", ids).
		Group(column).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, r := range rows {
		counts[r.TargetID] = r.Count
	}
	return counts, nil
}

func (r *likeRepository) LikedBy(ctx context.Context, userID uuid.UUID, kind string, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	liked := make(map[uuid.UUID]bool, len(ids))
	if len(ids) == 0 {
		return liked, nil
	}

	column := Target{Kind: kind}.column()
	var found []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&entity.Like{}).
		Where("user_id = ? AND "+column+" IN ?", userID, ids).
		Pluck(column, &found).Error; err != nil {
		return nil, err
	}

	for _, id := range found {
		liked[id] = true
	}
	return liked, nil
}
