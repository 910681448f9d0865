package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"viralacademy.com/academy/internal/authz"
	"viralacademy.com/academy/internal/entity"
	"viralacademy.com/academy/internal/modules/course/dto"
	courseRepo "viralacademy.com/academy/internal/modules/course/repository"
	search "viralacademy.com/academy/internal/modules/search/service"
	"viralacademy.com/academy/pkg/apperror"
	"viralacademy.com/academy/pkg/database"
	"viralacademy.com/academy/pkg/htmlsanitize"
	"viralacademy.com/academy/pkg/slug"
)

// EnrollmentChecker answers whether a user is enrolled in a course.
type EnrollmentChecker interface {
	IsEnrolled(ctx context.Context, userID, courseID uuid.UUID) (bool, error)
}

type CourseService interface {
	ListCourses(ctx context.Context, identity *authz.Identity, filter dto.CourseFilter) ([]dto.CourseResponse, error)
	GetCourse(ctx context.Context, identity *authz.Identity, slug string) (*dto.CourseDetailResponse, error)
	CreateCourse(ctx context.Context, identity *authz.Identity, req dto.CreateCourseRequest) (*dto.CourseResponse, error)
	UpdateCourse(ctx context.Context, identity *authz.Identity, id uuid.UUID, req dto.UpdateCourseRequest) (*dto.CourseResponse, error)
	DeleteCourse(ctx context.Context, identity *authz.Identity, id uuid.UUID) error
}

type courseService struct {
	repo        courseRepo.CourseRepository
	enrollments EnrollmentChecker
	indexer     search.Indexer
}

func NewCourseService(repo courseRepo.CourseRepository, enrollments EnrollmentChecker, indexer search.Indexer) CourseService {
	return &courseService{
		repo:        repo,
		enrollments: enrollments,
		indexer:     indexer,
	}
}

func (s *courseService) ListCourses(ctx context.Context, identity *authz.Identity, filter dto.CourseFilter) ([]dto.CourseResponse, error) {
	includeDrafts := filter.IncludeDrafts && identity.IsStaff()

	courses, err := s.repo.List(ctx, includeDrafts)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	resp := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		resp = append(resp, dto.ToCourseResponse(&courses[i]))
	}
	return resp, nil
}

// GetCourse is public. Drafts are only visible to staff; everyone else gets
// a 404 so unpublished slugs do not leak.
func (s *courseService) GetCourse(ctx context.Context, identity *authz.Identity, courseSlug string) (*dto.CourseDetailResponse, error) {
	course, err := s.repo.FindBySlug(ctx, courseSlug)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, apperror.NotFound("course not found")
		}
		return nil, apperror.Internal(err)
	}
	if !course.Published && !identity.IsStaff() {
		return nil, apperror.NotFound("course not found")
	}

	enrolled := false
	if identity != nil && s.enrollments != nil {
		enrolled, err = s.enrollments.IsEnrolled(ctx, identity.ID, course.ID)
		if err != nil {
			return nil, apperror.Internal(err)
		}
	}

	resp := dto.ToCourseDetailResponse(course, enrolled)
	return &resp, nil
}

func (s *courseService) CreateCourse(ctx context.Context, identity *authz.Identity, req dto.CreateCourseRequest) (*dto.CourseResponse, error) {
	if err := authz.Authorize(identity, authz.Staff, nil); err != nil {
		return nil, err
	}

	courseSlug := slug.Make(req.Slug)
	if courseSlug == "" {
		courseSlug = slug.Make(req.Title)
	}
	if courseSlug == "" {
		return nil, apperror.Validation("title must contain letters or digits")
	}

	course := &entity.Course{
		Title:        strings.TrimSpace(req.Title),
		Slug:         courseSlug,
		Summary:      strings.TrimSpace(req.Summary),
		Description:  htmlsanitize.Sanitize(req.Description),
		ThumbnailURL: req.ThumbnailURL,
		Level:        req.Level,
		Published:    req.Published,
		AuthorID:     identity.ID,
	}
	if req.Order != nil {
		course.Order = *req.Order
	}

	if err := s.repo.Create(ctx, course); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperror.Conflict("a course with this slug already exists")
		}
		return nil, apperror.Internal(err)
	}

	s.index(course)

	resp := dto.ToCourseResponse(course)
	return &resp, nil
}

func (s *courseService) UpdateCourse(ctx context.Context, identity *authz.Identity, id uuid.UUID, req dto.UpdateCourseRequest) (*dto.CourseResponse, error) {
	if err := authz.Authorize(identity, authz.Staff, nil); err != nil {
		return nil, err
	}

	course, err := s.findCourse(ctx, id)
	if err != nil {
		return nil, err
	}

	course.Title = strings.TrimSpace(req.Title)
	course.Summary = strings.TrimSpace(req.Summary)
	course.Description = htmlsanitize.Sanitize(req.Description)
	course.ThumbnailURL = req.ThumbnailURL
	course.Level = req.Level
	if req.Published != nil {
		course.Published = *req.Published
	}
	if req.Order != nil {
		course.Order = *req.Order
	}

	if err := s.repo.Update(ctx, course); err != nil {
		return nil, apperror.Internal(err)
	}

	s.index(course)

	resp := dto.ToCourseResponse(course)
	return &resp, nil
}

func (s *courseService) DeleteCourse(ctx context.Context, identity *authz.Identity, id uuid.UUID) error {
	if err := authz.Authorize(identity, authz.Staff, nil); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if database.IsNotFound(err) {
			return apperror.NotFound("course not found")
		}
		return apperror.Internal(err)
	}

	if s.indexer != nil {
		if err := s.indexer.DeleteCourse(id); err != nil {
			log.Warn().Err(err).Str("course_id", id.String()).Msg("failed to remove course from index")
		}
	}
	return nil
}

func (s *courseService) findCourse(ctx context.Context, id uuid.UUID) (*entity.Course, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, apperror.NotFound("course not found")
		}
		return nil, apperror.Internal(err)
	}
	return course, nil
}

func (s *courseService) index(course *entity.Course) {
	if s.indexer == nil {
		return
	}
	if err := s.indexer.IndexCourse(course); err != nil {
		log.Warn().Err(err).Str("course_id", course.ID.String()).Msg("failed to index course")
	}
}
