package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"viralacademy.com/academy/internal/authz"
	"viralacademy.com/academy/internal/entity"
	likeRepo "viralacademy.com/academy/internal/modules/like/repository"
	notification "viralacademy.com/academy/internal/modules/notification/service"
	"viralacademy.com/academy/internal/modules/post/dto"
	postRepo "viralacademy.com/academy/internal/modules/post/repository"
	search "viralacademy.com/academy/internal/modules/search/service"
	"viralacademy.com/academy/pkg/apperror"
	"viralacademy.com/academy/pkg/database"
	commonDto "viralacademy.com/academy/pkg/dto"
	"viralacademy.com/academy/pkg/htmlsanitize"
	"viralacademy.com/academy/pkg/ratelimit"
)

const rateLimitAction = "post"

type CategoryLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Category, error)
}

// LikeStats is the read side of the like repository.
type LikeStats interface {
	CountMany(ctx context.Context, kind string, ids []uuid.UUID) (map[uuid.UUID]int64, error)
	LikedBy(ctx context.Context, userID uuid.UUID, kind string, ids []uuid.UUID) (map[uuid.UUID]bool, error)
}

// ViewRecorder counts post views. Implementations must be cheap and never
// fail the read.
type ViewRecorder interface {
	RecordView(ctx context.Context, postID, userID uuid.UUID)
}

type PostService interface {
	CreatePost(ctx context.Context, identity *authz.Identity, req dto.CreatePostRequest) (*dto.PostResponse, error)
	GetPosts(ctx context.Context, identity *authz.Identity, filter dto.PostFilter) (*dto.PostListResponse, error)
	GetPost(ctx context.Context, identity *authz.Identity, id uuid.UUID) (*dto.PostResponse, error)
	UpdatePost(ctx context.Context, identity *authz.Identity, id uuid.UUID, req dto.UpdatePostRequest) (*dto.PostResponse, error)
	DeletePost(ctx context.Context, identity *authz.Identity, id uuid.UUID) error
}

type Config struct {
	RateLimit time.Duration
}

type postService struct {
	repo       postRepo.PostRepository
	categories CategoryLookup
	likes      LikeStats
	notifier   notification.Notifier
	indexer    search.Indexer
	views      ViewRecorder
	limiter    *ratelimit.Limiter
	rateLimit  time.Duration
}

func NewPostService(repo postRepo.PostRepository, categories CategoryLookup, likes LikeStats, notifier notification.Notifier, indexer search.Indexer, views ViewRecorder, limiter *ratelimit.Limiter, cfg Config) PostService {
	return &postService{
		repo:       repo,
		categories: categories,
		likes:      likes,
		notifier:   notifier,
		indexer:    indexer,
		views:      views,
		limiter:    limiter,
		rateLimit:  cfg.RateLimit,
	}
}

func (s *postService) CreatePost(ctx context.Context, identity *authz.Identity, req dto.CreatePostRequest) (*dto.PostResponse, error) {
	if err := authz.Authorize(identity, authz.Anyone, nil); err != nil {
		return nil, err
	}

	categoryID, err := commonDto.ParseID("category_id", req.CategoryID)
	if err != nil {
		return nil, err
	}
	category, err := s.findCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if category.StaffOnly && !identity.IsStaff() {
		return nil, apperror.Forbidden("only mentors can post in this category")
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
		return nil, apperror.RateLimited(fmt.Sprintf("you are posting too fast, please wait %.0f seconds", retryAfter.Seconds()))
	}

	post := &entity.Post{
		AuthorID:   identity.ID,
		CategoryID: category.ID,
		Title:      strings.TrimSpace(req.Title),
		Content:    content,
	}
	if err := s.repo.Create(ctx, post); err != nil {
		if clearErr := s.limiter.Clear(ctx, identity.ID, rateLimitAction); clearErr != nil {
			log.Warn().Err(clearErr).Str("user_id", identity.ID.String()).Msg("failed to clear post rate limit")
		}
		return nil, apperror.Internal(err)
	}

	saved, err := s.repo.FindByID(ctx, post.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	if category.StaffOnly {
		s.announce(ctx, saved)
	}
	s.index(saved)

	resp := dto.ToPostResponse(saved, dto.PostStats{})
	return &resp, nil
}

// announce fans a staff post in a staff-only category out to every active user.
func (s *postService) announce(ctx context.Context, post *entity.Post) {
	if s.notifier == nil {
		return
	}
	sent := s.notifier.Broadcast(ctx, notification.Broadcast{
		Notice: notification.Notice{
			Type:     entity.NotificationAnnouncement,
			Title:    post.Title,
			Message:  truncate(htmlsanitize.PlainText(post.Content), 160),
			Link:     fmt.Sprintf("/community/posts/%s", post.ID),
			ActorID:  &post.AuthorID,
			EntityID: &post.ID,
		},
		AllActive: true,
		ExcludeID: &post.AuthorID,
	})
	log.Info().Str("post_id", post.ID.String()).Int("recipients", sent).Msg("announcement broadcast")
}

func (s *postService) index(post *entity.Post) {
	if s.indexer == nil {
		return
	}
	if err := s.indexer.IndexPost(post); err != nil {
		log.Warn().Err(err).Str("post_id", post.ID.String()).Msg("failed to index post")
	}
}

func (s *postService) GetPosts(ctx context.Context, identity *authz.Identity, filter dto.PostFilter) (*dto.PostListResponse, error) {
	if err := authz.Authorize(identity, authz.Anyone, nil); err != nil {
		return nil, err
	}

	var categoryID *uuid.UUID
	if filter.CategoryID != "" {
		id, err := commonDto.ParseID("category_id", filter.CategoryID)
		if err != nil {
			return nil, err
		}
		categoryID = &id
	}

	limit, offset := filter.Normalize(20)
	posts, total, err := s.repo.List(ctx, categoryID, limit, offset)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	data, err := s.buildResponses(ctx, identity, posts)
	if err != nil {
		return nil, err
	}

	return &dto.PostListResponse{
		Data: data,
		Meta: commonDto.NewPaginationMeta(filter.Page, limit, total),
	}, nil
}

func (s *postService) GetPost(ctx context.Context, identity *authz.Identity, id uuid.UUID) (*dto.PostResponse, error) {
	if err := authz.Authorize(identity, authz.Anyone, nil); err != nil {
		return nil, err
	}

	post, err := s.findPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.views != nil {
		s.views.RecordView(ctx, post.ID, identity.ID)
	}

	data, err := s.buildResponses(ctx, identity, []entity.Post{*post})
	if err != nil {
		return nil, err
	}
	return &data[0], nil
}

func (s *postService) UpdatePost(ctx context.Context, identity *authz.Identity, id uuid.UUID, req dto.UpdatePostRequest) (*dto.PostResponse, error) {
	if err := authz.Authorize(identity, authz.Anyone, nil); err != nil {
		return nil, err
	}

	post, err := s.findPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(identity, authz.Staff, authz.Owner(post.AuthorID)); err != nil {
		return nil, err
	}

	if req.Pinned != nil && *req.Pinned != post.Pinned {
		if !identity.IsStaff() {
			return nil, apperror.Forbidden("only mentors can pin posts")
		}
		post.Pinned = *req.Pinned
	}

	if req.CategoryID != "" && req.CategoryID != post.CategoryID.String() {
		categoryID, err := commonDto.ParseID("category_id", req.CategoryID)
		if err != nil {
			return nil, err
		}
		category, err := s.findCategory(ctx, categoryID)
		if err != nil {
			return nil, err
		}
		if category.StaffOnly && !identity.IsStaff() {
			return nil, apperror.Forbidden("only mentors can post in this category")
		}
		post.CategoryID = category.ID
	}

	content := htmlsanitize.Sanitize(req.Content)
	if content == "" {
		return nil, apperror.Validation("content must not be empty")
	}
	post.Title = strings.TrimSpace(req.Title)
	post.Content = content

	if err := s.repo.Update(ctx, post); err != nil {
		return nil, apperror.Internal(err)
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	s.index(updated)

	data, err := s.buildResponses(ctx, identity, []entity.Post{*updated})
	if err != nil {
		return nil, err
	}
	return &data[0], nil
}

func (s *postService) DeletePost(ctx context.Context, identity *authz.Identity, id uuid.UUID) error {
	if err := authz.Authorize(identity, authz.Anyone, nil); err != nil {
		return err
	}

	post, err := s.findPost(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.Authorize(identity, authz.Staff, authz.Owner(post.AuthorID)); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return apperror.Internal(err)
	}

	if s.indexer != nil {
		if err := s.indexer.DeletePost(id); err != nil {
			log.Warn().Err(err).Str("post_id", id.String()).Msg("failed to remove post from index")
		}
	}
	return nil
}

func (s *postService) findPost(ctx context.Context, id uuid.UUID) (*entity.Post, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, apperror.NotFound("post not found")
		}
		return nil, apperror.Internal(err)
	}
	return post, nil
}

func (s *postService) findCategory(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, apperror.NotFound("category not found")
		}
		return nil, apperror.Internal(err)
	}
	return category, nil
}

func (s *postService) buildResponses(ctx context.Context, identity *authz.Identity, posts []entity.Post) ([]dto.PostResponse, error) {
	ids := make([]uuid.UUID, 0, len(posts))
	for i := range posts {
		ids = append(ids, posts[i].ID)
	}

	likeCounts, err := s.likes.CountMany(ctx, likeRepo.TargetPost, ids)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	liked, err := s.likes.LikedBy(ctx, identity.ID, likeRepo.TargetPost, ids)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	commentCounts, err := s.repo.CountComments(ctx, ids)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	data := make([]dto.PostResponse, 0, len(posts))
	for i := range posts {
		id := posts[i].ID
		data = append(data, dto.ToPostResponse(&posts[i], dto.PostStats{
			LikeCount:    likeCounts[id],
			Liked:        liked[id],
			CommentCount: commentCounts[id],
		}))
	}
	return data, nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
