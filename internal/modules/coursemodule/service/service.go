package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"viralacademy.com/academy/internal/authz"
	"viralacademy.com/academy/internal/entity"
	"viralacademy.com/academy/internal/modules/coursemodule/dto"
	moduleRepo "viralacademy.com/academy/internal/modules/coursemodule/repository"
	"viralacademy.com/academy/pkg/apperror"
	"viralacademy.com/academy/pkg/database"
)

type ModuleService interface {
	CreateModule(ctx context.Context, identity *authz.Identity, courseID uuid.UUID, req dto.CreateModuleRequest) (*dto.ModuleResponse, error)
	UpdateModule(ctx context.Context, identity *authz.Identity, id uuid.UUID, req dto.UpdateModuleRequest) (*dto.ModuleResponse, error)
	DeleteModule(ctx context.Context, identity *authz.Identity, id uuid.UUID) error
}

type moduleService struct {
	repo moduleRepo.ModuleRepository
}

func NewModuleService(repo moduleRepo.ModuleRepository) ModuleService {
	return &moduleService{repo: repo}
}

func (s *moduleService) CreateModule(ctx context.Context, identity *authz.Identity, courseID uuid.UUID, req dto.CreateModuleRequest) (*dto.ModuleResponse, error) {
	if err := authz.Authorize(identity, authz.Staff, nil); err != nil {
		return nil, err
	}

	module := &entity.Module{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
	}
	if req.Order != nil {
		module.Order = *req.Order
	}
	if err := s.repo.Append(ctx, courseID, module); err != nil {
		if database.IsNotFound(err) {
			return nil, apperror.NotFound("course not found")
		}
		return nil, apperror.Internal(err)
	}

	resp := dto.ToModuleResponse(module)
	return &resp, nil
}

func (s *moduleService) UpdateModule(ctx context.Context, identity *authz.Identity, id uuid.UUID, req dto.UpdateModuleRequest) (*dto.ModuleResponse, error) {
	if err := authz.Authorize(identity, authz.Staff, nil); err != nil {
		return nil, err
	}

	module, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, apperror.NotFound("module not found")
		}
		return nil, apperror.Internal(err)
	}

	module.Title = strings.TrimSpace(req.Title)
	module.Description = strings.TrimSpace(req.Description)
	if req.Order != nil {
		module.Order = *req.Order
	}

	if err := s.repo.Update(ctx, module); err != nil {
		return nil, apperror.Internal(err)
	}

	resp := dto.ToModuleResponse(module)
	return &resp, nil
}

func (s *moduleService) DeleteModule(ctx context.Context, identity *authz.Identity, id uuid.UUID) error {
	if err := authz.Authorize(identity, authz.Staff, nil); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if database.IsNotFound(err) {
			return apperror.NotFound("module not found")
		}
		return apperror.Internal(err)
	}
	return nil
}
