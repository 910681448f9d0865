package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"viralacademy.com/academy/internal/authz"
	"viralacademy.com/academy/internal/entity"
	"viralacademy.com/academy/internal/modules/category/dto"
	"viralacademy.com/academy/internal/modules/category/repository"
	"viralacademy.com/academy/pkg/apperror"
	"viralacademy.com/academy/pkg/database"
	"viralacademy.com/academy/pkg/slug"
)

type CategoryService interface {
	CreateCategory(ctx context.Context, identity *authz.Identity, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error)
	GetAllCategories(ctx context.Context, filter dto.CategoryFilter) ([]dto.CategoryResponse, error)
	DeleteCategory(ctx context.Context, identity *authz.Identity, id uuid.UUID) error
}

type categoryService struct {
	repo repository.CategoryRepository
}

func NewCategoryService(repo repository.CategoryRepository) CategoryService {
	return &categoryService{repo: repo}
}

func (s *categoryService) CreateCategory(ctx context.Context, identity *authz.Identity, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	if err := authz.Authorize(identity, authz.AdminOnly, nil); err != nil {
		return nil, err
	}

	categorySlug := slug.Make(req.Name)
	if categorySlug == "" {
		return nil, apperror.Validation("category name must contain letters or digits")
	}

	category := &entity.Category{
		Name:        strings.TrimSpace(req.Name),
		Slug:        categorySlug,
		Description: req.Description,
		StaffOnly:   req.StaffOnly,
	}
	if err := s.repo.Create(ctx, category); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperror.Conflict("a category with this name already exists")
		}
		return nil, apperror.Internal(err)
	}

	resp := dto.ToCategoryResponse(category)
	return &resp, nil
}

func (s *categoryService) GetAllCategories(ctx context.Context, filter dto.CategoryFilter) ([]dto.CategoryResponse, error) {
	categories, err := s.repo.FindAll(ctx, strings.TrimSpace(filter.Search))
	if err != nil {
		return nil, apperror.Internal(err)
	}

	resp := make([]dto.CategoryResponse, 0, len(categories))
	for i := range categories {
		resp = append(resp, dto.ToCategoryResponse(&categories[i]))
	}
	return resp, nil
}

func (s *categoryService) DeleteCategory(ctx context.Context, identity *authz.Identity, id uuid.UUID) error {
	if err := authz.Authorize(identity, authz.AdminOnly, nil); err != nil {
		return err
	}

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if database.IsNotFound(err) {
			return apperror.NotFound("category not found")
		}
		return apperror.Internal(err)
	}

	posts, err := s.repo.CountPosts(ctx, id)
	if err != nil {
		return apperror.Internal(err)
	}
	if posts > 0 {
		return apperror.Conflict("category still has posts")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return apperror.Internal(err)
	}
	return nil
}
