package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"viralacademy.com/academy/internal/authz"
	"viralacademy.com/academy/internal/entity"
	"viralacademy.com/academy/internal/modules/resource/dto"
	resourceRepo "viralacademy.com/academy/internal/modules/resource/repository"
	"viralacademy.com/academy/pkg/apperror"
	"viralacademy.com/academy/pkg/database"
)

type CourseLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Course, error)
}

type EnrollmentChecker interface {
	IsEnrolled(ctx context.Context, userID, courseID uuid.UUID) (bool, error)
}

type ResourceService interface {
	ListResources(ctx context.Context, identity *authz.Identity, courseID uuid.UUID) ([]dto.ResourceResponse, error)
	CreateResource(ctx context.Context, identity *authz.Identity, courseID uuid.UUID, req dto.CreateResourceRequest) (*dto.ResourceResponse, error)
	DeleteResource(ctx context.Context, identity *authz.Identity, id uuid.UUID) error
}

type resourceService struct {
	repo        resourceRepo.ResourceRepository
	courses     CourseLookup
	enrollments EnrollmentChecker
}

func NewResourceService(repo resourceRepo.ResourceRepository, courses CourseLookup, enrollments EnrollmentChecker) ResourceService {
	return &resourceService{repo: repo, courses: courses, enrollments: enrollments}
}

func (s *resourceService) ListResources(ctx context.Context, identity *authz.Identity, courseID uuid.UUID) ([]dto.ResourceResponse, error) {
	if err := authz.Authorize(identity, authz.Anyone, nil); err != nil {
		return nil, err
	}
	if err := s.ensureCourse(ctx, courseID); err != nil {
		return nil, err
	}

	if !identity.IsStaff() {
		enrolled, err := s.enrollments.IsEnrolled(ctx, identity.ID, courseID)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		if !enrolled {
			return nil, apperror.Forbidden("resources are available to enrolled students")
		}
	}

	resources, err := s.repo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	resp := make([]dto.ResourceResponse, 0, len(resources))
	for i := range resources {
		resp = append(resp, dto.ToResourceResponse(&resources[i]))
	}
	return resp, nil
}

func (s *resourceService) CreateResource(ctx context.Context, identity *authz.Identity, courseID uuid.UUID, req dto.CreateResourceRequest) (*dto.ResourceResponse, error) {
	if err := authz.Authorize(identity, authz.Staff, nil); err != nil {
		return nil, err
	}
	if err := s.ensureCourse(ctx, courseID); err != nil {
		return nil, err
	}

	resource := &entity.Resource{
		CourseID: courseID,
		Title:    strings.TrimSpace(req.Title),
		URL:      strings.TrimSpace(req.URL),
		Kind:     req.Kind,
	}
	if err := s.repo.Create(ctx, resource); err != nil {
		return nil, apperror.Internal(err)
	}

	resp := dto.ToResourceResponse(resource)
	return &resp, nil
}

func (s *resourceService) DeleteResource(ctx context.Context, identity *authz.Identity, id uuid.UUID) error {
	if err := authz.Authorize(identity, authz.Staff, nil); err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return apperror.Internal(err)
	}
	if !deleted {
		return apperror.NotFound("resource not found")
	}
	return nil
}

func (s *resourceService) ensureCourse(ctx context.Context, courseID uuid.UUID) error {
	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		if database.IsNotFound(err) {
			return apperror.NotFound("course not found")
		}
		return apperror.Internal(err)
	}
	return nil
}
