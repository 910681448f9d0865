package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
	"github.com/rs/zerolog/log"

	"viralacademy.com/academy/internal/authz"
	"viralacademy.com/academy/internal/entity"
	"viralacademy.com/academy/internal/modules/search/dto"
	"viralacademy.com/academy/pkg/apperror"
	"viralacademy.com/academy/pkg/htmlsanitize"
)

const defaultLimit = 10

// Indexer is the write side used by the course and post services. Callers
// treat every error as best effort.
type Indexer interface {
	IndexCourse(course *entity.Course) error
	DeleteCourse(id uuid.UUID) error
	IndexPost(post *entity.Post) error
	DeletePost(id uuid.UUID) error
}

type SearchService interface {
	Indexer
	Search(ctx context.Context, identity *authz.Identity, query dto.SearchQuery) (*dto.SearchResponse, error)
}

type searchService struct {
	client meilisearch.ServiceManager
}

// NewSearchService returns a service backed by client. A nil client gives a
// service that indexes nothing and answers every search with no hits.
func NewSearchService(client meilisearch.ServiceManager) SearchService {
	s := &searchService{client: client}
	if client != nil {
		s.initIndexes()
	}
	return s
}

func (s *searchService) initIndexes() {
	courseFilterable := []any{"level"}
	if _, err := s.client.Index(dto.IndexCourses).UpdateFilterableAttributes(&courseFilterable); err != nil {
		log.Warn().Err(err).Msg("failed to update courses filterable attributes")
	}
	courseSortable := []string{"order", "created_at"}
	if _, err := s.client.Index(dto.IndexCourses).UpdateSortableAttributes(&courseSortable); err != nil {
		log.Warn().Err(err).Msg("failed to update courses sortable attributes")
	}

	postFilterable := []any{"category_id"}
	if _, err := s.client.Index(dto.IndexPosts).UpdateFilterableAttributes(&postFilterable); err != nil {
		log.Warn().Err(err).Msg("failed to update posts filterable attributes")
	}
	postSortable := []string{"created_at"}
	if _, err := s.client.Index(dto.IndexPosts).UpdateSortableAttributes(&postSortable); err != nil {
		log.Warn().Err(err).Msg("failed to update posts sortable attributes")
	}
}

type courseDoc struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Summary     string `json:"summary"`
	Description string `json:"description"`
	Level       string `json:"level"`
	Order       int    `json:"order"`
	CreatedAt   int64  `json:"created_at"`
}

type postDoc struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name"`
	AuthorName   string `json:"author_name"`
	CreatedAt    int64  `json:"created_at"`
}

func (s *searchService) IndexCourse(course *entity.Course) error {
	if s.client == nil {
		return nil
	}
	// Drafts are never searchable.
	if !course.Published {
		return s.DeleteCourse(course.ID)
	}

	doc := courseDoc{
		ID:          course.ID.String(),
		Title:       course.Title,
		Slug:        course.Slug,
		Summary:     course.Summary,
		Description: htmlsanitize.PlainText(course.Description),
		Level:       course.Level,
		Order:       course.Order,
		CreatedAt:   course.CreatedAt.Unix(),
	}
	task, err := s.client.Index(dto.IndexCourses).AddDocuments([]courseDoc{doc}, strPtr("id"))
	if err != nil {
		return fmt.Errorf("index course %s: %w", course.ID, err)
	}
	log.Debug().Str("course_id", doc.ID).Int64("task_uid", task.TaskUID).Msg("indexed course")
	return nil
}

func (s *searchService) DeleteCourse(id uuid.UUID) error {
	if s.client == nil {
		return nil
	}
	_, err := s.client.Index(dto.IndexCourses).DeleteDocument(id.String())
	return err
}

func (s *searchService) IndexPost(post *entity.Post) error {
	if s.client == nil {
		return nil
	}

	doc := postDoc{
		ID:           post.ID.String(),
		Title:        post.Title,
		Content:      htmlsanitize.PlainText(post.Content),
		CategoryID:   post.CategoryID.String(),
		CategoryName: post.Category.Name,
		AuthorName:   post.Author.Name,
		CreatedAt:    post.CreatedAt.Unix(),
	}
	task, err := s.client.Index(dto.IndexPosts).AddDocuments([]postDoc{doc}, strPtr("id"))
	if err != nil {
		return fmt.Errorf("index post %s: %w", post.ID, err)
	}
	log.Debug().Str("post_id", doc.ID).Int64("task_uid", task.TaskUID).Msg("indexed post")
	return nil
}

func (s *searchService) DeletePost(id uuid.UUID) error {
	if s.client == nil {
		return nil
	}
	_, err := s.client.Index(dto.IndexPosts).DeleteDocument(id.String())
	return err
}

type rawSearchResult struct {
	Hits               []json.RawMessage `json:"hits"`
	EstimatedTotalHits int64             `json:"estimatedTotalHits"`
}

func (s *searchService) Search(ctx context.Context, identity *authz.Identity, query dto.SearchQuery) (*dto.SearchResponse, error) {
	if err := authz.Authorize(identity, authz.Anyone, nil); err != nil {
		return nil, err
	}

	index := query.Index
	if index == "" {
		index = dto.IndexCourses
	}
	limit := query.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	resp := &dto.SearchResponse{Index: index, Hits: []json.RawMessage{}}
	if s.client == nil {
		return resp, nil
	}

	raw, err := s.client.Index(index).SearchRawWithContext(ctx, query.Query, &meilisearch.SearchRequest{Limit: limit})
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("search %s: %w", index, err))
	}

	var result rawSearchResult
	if raw != nil {
		if err := json.Unmarshal(*raw, &result); err != nil {
			return nil, apperror.Internal(fmt.Errorf("decode search result: %w", err))
		}
	}
	if result.Hits != nil {
		resp.Hits = result.Hits
	}
	resp.Total = result.EstimatedTotalHits
	return resp, nil
}

func strPtr(s string) *string {
	return &s
}
