package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"viralacademy.com/academy/internal/authz"
	"viralacademy.com/academy/internal/entity"
	"viralacademy.com/academy/internal/modules/like/dto"
	likeRepo "viralacademy.com/academy/internal/modules/like/repository"
	notification "viralacademy.com/academy/internal/modules/notification/service"
	"viralacademy.com/academy/pkg/apperror"
	"viralacademy.com/academy/pkg/database"
)

type PostLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Post, error)
}

type CommentLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Comment, error)
}

type LikeService interface {
	TogglePostLike(ctx context.Context, identity *authz.Identity, postID uuid.UUID) (*dto.LikeResponse, error)
	ToggleCommentLike(ctx context.Context, identity *authz.Identity, commentID uuid.UUID) (*dto.LikeResponse, error)
}

type likeService struct {
	repo     likeRepo.LikeRepository
	posts    PostLookup
	comments CommentLookup
	notifier notification.Notifier
}

func NewLikeService(repo likeRepo.LikeRepository, posts PostLookup, comments CommentLookup, notifier notification.Notifier) LikeService {
	return &likeService{
		repo:     repo,
		posts:    posts,
		comments: comments,
		notifier: notifier,
	}
}

func (s *likeService) TogglePostLike(ctx context.Context, identity *authz.Identity, postID uuid.UUID) (*dto.LikeResponse, error) {
	if err := authz.Authorize(identity, authz.Anyone, nil); err != nil {
		return nil, err
	}

	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, apperror.NotFound("post not found")
		}
		return nil, apperror.Internal(err)
	}

	notice := notification.Notice{
		Type:     entity.NotificationLike,
		Title:    "New like on your post",
		Message:  fmt.Sprintf("Someone liked your post %q", post.Title),
		Link:     fmt.Sprintf("/community/posts/%s", post.ID),
		ActorID:  &identity.ID,
		EntityID: &post.ID,
	}
	return s.toggle(ctx, identity, likeRepo.Target{Kind: likeRepo.TargetPost, ID: post.ID}, post.AuthorID, notice)
}

func (s *likeService) ToggleCommentLike(ctx context.Context, identity *authz.Identity, commentID uuid.UUID) (*dto.LikeResponse, error) {
	if err := authz.Authorize(identity, authz.Anyone, nil); err != nil {
		return nil, err
	}

	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, apperror.NotFound("comment not found")
		}
		return nil, apperror.Internal(err)
	}

	notice := notification.Notice{
		Type:     entity.NotificationLike,
		Title:    "New like on your comment",
		Message:  "Someone liked your comment",
		Link:     fmt.Sprintf("/community/posts/%s#comment-%s", comment.PostID, comment.ID),
		ActorID:  &identity.ID,
		EntityID: &comment.ID,
	}
	return s.toggle(ctx, identity, likeRepo.Target{Kind: likeRepo.TargetComment, ID: comment.ID}, comment.AuthorID, notice)
}

func (s *likeService) toggle(ctx context.Context, identity *authz.Identity, target likeRepo.Target, authorID uuid.UUID, notice notification.Notice) (*dto.LikeResponse, error) {
	liked, created, err := s.repo.Toggle(ctx, identity.ID, target)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	// Only the call that inserted the row notifies, so a like raced by a
	// second request still produces one notification.
	if created && authorID != identity.ID && s.notifier != nil {
		s.notifier.Notify(ctx, authorID, notice)
	}

	count, err := s.repo.Count(ctx, target)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	return &dto.LikeResponse{Liked: liked, LikeCount: count}, nil
}
