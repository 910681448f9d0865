package dto

import (
	"time"

	"github.com/google/uuid"

	"viralacademy.com/academy/internal/entity"
	commonDto "viralacademy.com/academy/pkg/dto"
)

type CreatePostRequest struct {
	CategoryID string `json:"category_id" binding:"required,uuid"`
	Title      string `json:"title" binding:"required,max=200"`
	Content    string `json:"content" binding:"required,max=20000"`
}

type UpdatePostRequest struct {
	CategoryID string `json:"category_id" binding:"omitempty,uuid"`
	Title      string `json:"title" binding:"required,max=200"`
	Content    string `json:"content" binding:"required,max=20000"`
	// Pinned may only be changed by staff.
	Pinned *bool `json:"pinned"`
}

type PostFilter struct {
	commonDto.PageQuery
	CategoryID string `form:"category" binding:"omitempty,uuid"`
}

type CategoryRef struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	StaffOnly bool      `json:"staff_only"`
}

type PostResponse struct {
	ID           uuid.UUID                `json:"id"`
	Title        string                   `json:"title"`
	Content      string                   `json:"content"`
	Pinned       bool                     `json:"pinned"`
	Category     CategoryRef              `json:"category"`
	Author       commonDto.AuthorResponse `json:"author"`
	LikeCount    int64                    `json:"like_count"`
	Liked        bool                     `json:"liked"`
	CommentCount int64                    `json:"comment_count"`
	ViewCount    int64                    `json:"view_count"`
	CreatedAt    time.Time                `json:"created_at"`
	UpdatedAt    time.Time                `json:"updated_at"`
}

type PostListResponse struct {
	Data []PostResponse          `json:"data"`
	Meta commonDto.PaginationMeta `json:"meta"`
}

// PostStats carries the aggregate values that are not stored on the post row.
type PostStats struct {
	LikeCount    int64
	Liked        bool
	CommentCount int64
}

func ToPostResponse(p *entity.Post, stats PostStats) PostResponse {
	return PostResponse{
		ID:      p.ID,
		Title:   p.Title,
		Content: p.Content,
		Pinned:  p.Pinned,
		Category: CategoryRef{
			ID:        p.Category.ID,
			Name:      p.Category.Name,
			Slug:      p.Category.Slug,
			StaffOnly: p.Category.StaffOnly,
		},
		Author:       ToAuthorResponse(&p.Author),
		LikeCount:    stats.LikeCount,
		Liked:        stats.Liked,
		CommentCount: stats.CommentCount,
		ViewCount:    p.ViewCount,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// ToAuthorResponse falls back to a placeholder when the author row was not loaded.
func ToAuthorResponse(u *entity.User) commonDto.AuthorResponse {
	if u == nil || u.ID == uuid.Nil {
		return commonDto.AuthorResponse{Name: "Unknown"}
	}
	return commonDto.AuthorResponse{
		ID:        u.ID,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
		Role:      u.Role,
	}
}
