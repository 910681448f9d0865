package dto

import (
	"time"

	"github.com/google/uuid"

	"viralacademy.com/academy/internal/entity"
	postDto "viralacademy.com/academy/internal/modules/post/dto"
	commonDto "viralacademy.com/academy/pkg/dto"
)

type CreateCommentRequest struct {
	Content  string `json:"content" binding:"required,max=5000"`
	ParentID string `json:"parent_id" binding:"omitempty,uuid"`
}

type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required,max=5000"`
}

type CommentResponse struct {
	ID        uuid.UUID                `json:"id"`
	PostID    uuid.UUID                `json:"post_id"`
	ParentID  *uuid.UUID               `json:"parent_id,omitempty"`
	Content   string                   `json:"content"`
	Author    commonDto.AuthorResponse `json:"author"`
	LikeCount int64                    `json:"like_count"`
	Liked     bool                     `json:"liked"`
	CreatedAt time.Time                `json:"created_at"`
	UpdatedAt time.Time                `json:"updated_at"`
}

type CommentListResponse struct {
	Data []CommentResponse         `json:"data"`
	Meta commonDto.PaginationMeta `json:"meta"`
}

func ToCommentResponse(c *entity.Comment, likeCount int64, liked bool) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		PostID:    c.PostID,
		ParentID:  c.ParentID,
		Content:   c.Content,
		Author:    postDto.ToAuthorResponse(&c.Author),
		LikeCount: likeCount,
		Liked:     liked,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
