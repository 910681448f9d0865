package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"viralacademy.com/academy/internal/authz"
	"viralacademy.com/academy/internal/entity"
	"viralacademy.com/academy/internal/modules/comment/dto"
	commentRepo "viralacademy.com/academy/internal/modules/comment/repository"
	likeRepo "viralacademy.com/academy/internal/modules/like/repository"
	notification "viralacademy.com/academy/internal/modules/notification/service"
	"viralacademy.com/academy/pkg/apperror"
	"viralacademy.com/academy/pkg/database"
	commonDto "viralacademy.com/academy/pkg/dto"
	"viralacademy.com/academy/pkg/htmlsanitize"
	"viralacademy.com/academy/pkg/ratelimit"
)

const rateLimitAction = "comment"

type PostLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Post, error)
}

type LikeStats interface {
	CountMany(ctx context.Context, kind string, ids []uuid.UUID) (map[uuid.UUID]int64, error)
	LikedBy(ctx context.Context, userID uuid.UUID, kind string, ids []uuid.UUID) (map[uuid.UUID]bool, error)
}

type CommentService interface {
	CreateComment(ctx context.Context, identity *authz.Identity, postID uuid.UUID, req dto.CreateCommentRequest) (*dto.CommentResponse, error)
	GetComments(ctx context.Context, identity *authz.Identity, postID uuid.UUID, page commonDto.PageQuery) (*dto.CommentListResponse, error)
	UpdateComment(ctx context.Context, identity *authz.Identity, id uuid.UUID, req dto.UpdateCommentRequest) (*dto.CommentResponse, error)
	DeleteComment(ctx context.Context, identity *authz.Identity, id uuid.UUID) error
}

type Config struct {
	RateLimit time.Duration
}

type commentService struct {
	repo      commentRepo.CommentRepository
	posts     PostLookup
	likes     LikeStats
	notifier  notification.Notifier
	limiter   *ratelimit.Limiter
	rateLimit time.Duration
}

func NewCommentService(repo commentRepo.CommentRepository, posts PostLookup, likes LikeStats, notifier notification.Notifier, limiter *ratelimit.Limiter, cfg Config) CommentService {
	return &commentService{
		repo:      repo,
		posts:     posts,
		likes:     likes,
		notifier:  notifier,
		limiter:   limiter,
		rateLimit: cfg.RateLimit,
	}
}

func (s *commentService) CreateComment(ctx context.Context, identity *authz.Identity, postID uuid.UUID, req dto.CreateCommentRequest) (*dto.CommentResponse, error) {
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

	var parent *entity.Comment
	if req.ParentID != "" {
		parentID, err := commonDto.ParseID("parent_id", req.ParentID)
		if err != nil {
			return nil, err
		}
		parent, err = s.repo.FindByID(ctx, parentID)
		if err != nil {
			if database.IsNotFound(err) {
				return nil, apperror.NotFound("parent comment not found")
			}
			return nil, apperror.Internal(err)
		}
		if parent.PostID != post.ID {
			return nil, apperror.Validation("parent comment belongs to another post")
		}
	}

	content := htmlsanitize.Sanitize(req.Content)
	if content == "" {
		return nil, apperror.Validation("content must not be empty")
	}

	allowed, retryAfter, err := s.limiter.Allow(ctx, identity.ID, rateLimitAction, s.rateLimit)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if !allowed {
		return nil, apperror.RateLimited(fmt.Sprintf("you are commenting too fast, please wait %.0f seconds", retryAfter.Seconds()))
	}

	comment := &entity.Comment{
		PostID:   post.ID,
		AuthorID: identity.ID,
		Content:  content,
	}
	if parent != nil {
		// Replies stay one level deep: a reply to a reply hangs off the same root.
		rootID := parent.ID
		if parent.ParentID != nil {
			rootID = *parent.ParentID
		}
		comment.ParentID = &rootID
	}

	if err := s.repo.Create(ctx, comment); err != nil {
		if clearErr := s.limiter.Clear(ctx, identity.ID, rateLimitAction); clearErr != nil {
			log.Warn().Err(clearErr).Str("user_id", identity.ID.String()).Msg("failed to clear comment rate limit")
		}
		return nil, apperror.Internal(err)
	}

	s.notifyParticipants(ctx, identity, post, parent, comment)

	saved, err := s.repo.FindByID(ctx, comment.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	resp := dto.ToCommentResponse(saved, 0, false)
	return &resp, nil
}

// notifyParticipants tells the post author and the replied-to author about a
// new comment. Nobody is notified twice and the commenter never is.
func (s *commentService) notifyParticipants(ctx context.Context, identity *authz.Identity, post *entity.Post, parent *entity.Comment, comment *entity.Comment) {
	if s.notifier == nil {
		return
	}
	link := fmt.Sprintf("/community/posts/%s#comment-%s", post.ID, comment.ID)

	if post.AuthorID != identity.ID {
		s.notifier.Notify(ctx, post.AuthorID, notification.Notice{
			Type:     entity.NotificationComment,
			Title:    "New comment on your post",
			Message:  fmt.Sprintf("Someone commented on %q", post.Title),
			Link:     link,
			ActorID:  &identity.ID,
			EntityID: &comment.ID,
		})
	}

	if parent != nil && parent.AuthorID != identity.ID && parent.AuthorID != post.AuthorID {
		s.notifier.Notify(ctx, parent.AuthorID, notification.Notice{
			Type:     entity.NotificationReply,
			Title:    "New reply to your comment",
			Message:  fmt.Sprintf("Someone replied to your comment on %q", post.Title),
			Link:     link,
			ActorID:  &identity.ID,
			EntityID: &comment.ID,
		})
	}
}

func (s *commentService) GetComments(ctx context.Context, identity *authz.Identity, postID uuid.UUID, page commonDto.PageQuery) (*dto.CommentListResponse, error) {
	if err := authz.Authorize(identity, authz.Anyone, nil); err != nil {
		return nil, err
	}

	if _, err := s.posts.FindByID(ctx, postID); err != nil {
		if database.IsNotFound(err) {
			return nil, apperror.NotFound("post not found")
		}
		return nil, apperror.Internal(err)
	}

	limit, offset := page.Normalize(50)
	comments, total, err := s.repo.ListByPost(ctx, postID, limit, offset)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	ids := make([]uuid.UUID, 0, len(comments))
	for i := range comments {
		ids = append(ids, comments[i].ID)
	}
	counts, err := s.likes.CountMany(ctx, likeRepo.TargetComment, ids)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	liked, err := s.likes.LikedBy(ctx, identity.ID, likeRepo.TargetComment, ids)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	data := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		id := comments[i].ID
		data = append(data, dto.ToCommentResponse(&comments[i], counts[id], liked[id]))
	}

	return &dto.CommentListResponse{
		Data: data,
		Meta: commonDto.NewPaginationMeta(page.Page, limit, total),
	}, nil
}

func (s *commentService) UpdateComment(ctx context.Context, identity *authz.Identity, id uuid.UUID, req dto.UpdateCommentRequest) (*dto.CommentResponse, error) {
	if err := authz.Authorize(identity, authz.Anyone, nil); err != nil {
		return nil, err
	}

	comment, err := s.findComment(ctx, id)
	if err != nil {
		return nil, err
	}
	// Editing is reserved to the author; admins are let through by Check.
	if err := authz.Authorize(identity, nil, authz.Owner(comment.AuthorID)); err != nil {
		return nil, err
	}

	content := htmlsanitize.Sanitize(req.Content)
	if content == "" {
		return nil, apperror.Validation("content must not be empty")
	}
	if err := s.repo.UpdateContent(ctx, id, content); err != nil {
		return nil, apperror.Internal(err)
	}

	comment.Content = content
	comment.UpdatedAt = time.Now()
	resp := dto.ToCommentResponse(comment, 0, false)
	return &resp, nil
}

func (s *commentService) DeleteComment(ctx context.Context, identity *authz.Identity, id uuid.UUID) error {
	if err := authz.Authorize(identity, authz.Anyone, nil); err != nil {
		return err
	}

	comment, err := s.findComment(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.Authorize(identity, authz.Staff, authz.Owner(comment.AuthorID)); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (s *commentService) findComment(ctx context.Context, id uuid.UUID) (*entity.Comment, error) {
	comment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, apperror.NotFound("comment not found")
		}
		return nil, apperror.Internal(err)
	}
	return comment, nil
}
