package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"viralacademy.com/academy/internal/authz"
	"viralacademy.com/academy/internal/entity"
	"viralacademy.com/academy/internal/modules/lesson/dto"
	lessonRepo "viralacademy.com/academy/internal/modules/lesson/repository"
	"viralacademy.com/academy/pkg/apperror"
	"viralacademy.com/academy/pkg/database"
	"viralacademy.com/academy/pkg/events"
	"viralacademy.com/academy/pkg/htmlsanitize"
	"viralacademy.com/academy/pkg/obfuscate"
)

const publishTimeout = 3 * time.Second

type EnrollmentChecker interface {
	IsEnrolled(ctx context.Context, userID, courseID uuid.UUID) (bool, error)
}

type CourseLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Course, error)
}

// CertificateIssuer is called after a lesson is completed for the first time.
type CertificateIssuer interface {
	IssueIfComplete(ctx context.Context, userID, courseID uuid.UUID) error
}

type LessonService interface {
	CreateLesson(ctx context.Context, identity *authz.Identity, moduleID uuid.UUID, req dto.CreateLessonRequest) (*dto.LessonResponse, error)
	GetLesson(ctx context.Context, identity *authz.Identity, id uuid.UUID) (*dto.LessonResponse, error)
	UpdateLesson(ctx context.Context, identity *authz.Identity, id uuid.UUID, req dto.UpdateLessonRequest) (*dto.LessonResponse, error)
	DeleteLesson(ctx context.Context, identity *authz.Identity, id uuid.UUID) error
	CompleteLesson(ctx context.Context, identity *authz.Identity, id uuid.UUID) (*dto.ProgressResponse, error)
	UncompleteLesson(ctx context.Context, identity *authz.Identity, id uuid.UUID) (*dto.ProgressResponse, error)
	GetProgress(ctx context.Context, identity *authz.Identity, courseID uuid.UUID) (*dto.ProgressResponse, error)
}

type lessonService struct {
	repo         lessonRepo.LessonRepository
	courses      CourseLookup
	enrollments  EnrollmentChecker
	certificates CertificateIssuer
	encoder      *obfuscate.Encoder
	publisher    events.Publisher
}

func NewLessonService(
	repo lessonRepo.LessonRepository,
	courses CourseLookup,
	enrollments EnrollmentChecker,
	certificates CertificateIssuer,
	encoder *obfuscate.Encoder,
	publisher events.Publisher,
) LessonService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &lessonService{
		repo:         repo,
		courses:      courses,
		enrollments:  enrollments,
		certificates: certificates,
		encoder:      encoder,
		publisher:    publisher,
	}
}

func (s *lessonService) CreateLesson(ctx context.Context, identity *authz.Identity, moduleID uuid.UUID, req dto.CreateLessonRequest) (*dto.LessonResponse, error) {
	if err := authz.Authorize(identity, authz.Staff, nil); err != nil {
		return nil, err
	}

	lesson := &entity.Lesson{
		Title:           strings.TrimSpace(req.Title),
		Content:         htmlsanitize.Sanitize(req.Content),
		VideoID:         s.encoder.Decode(strings.TrimSpace(req.VideoID)),
		DurationSeconds: req.DurationSeconds,
		IsPreview:       req.IsPreview,
	}
	if req.Order != nil {
		lesson.Order = *req.Order
	}
	if err := s.repo.Append(ctx, moduleID, lesson); err != nil {
		if database.IsNotFound(err) {
			return nil, apperror.NotFound("module not found")
		}
		return nil, apperror.Internal(err)
	}

	if lesson.VideoID != "" {
		s.publishMedia(ctx, events.LessonVideoUpdated, lesson, identity.ID)
	}

	resp := s.toResponse(lesson, false)
	return &resp, nil
}

// GetLesson is open to staff, to users enrolled in the lesson's course and,
// for preview lessons, to every authenticated user.
func (s *lessonService) GetLesson(ctx context.Context, identity *authz.Identity, id uuid.UUID) (*dto.LessonResponse, error) {
	if err := authz.Authorize(identity, authz.Anyone, nil); err != nil {
		return nil, err
	}

	lesson, err := s.findLesson(ctx, id)
	if err != nil {
		return nil, err
	}

	if !identity.IsStaff() && !lesson.IsPreview {
		enrolled, err := s.enrollments.IsEnrolled(ctx, identity.ID, courseOf(lesson))
		if err != nil {
			return nil, apperror.Internal(err)
		}
		if !enrolled {
			return nil, apperror.Forbidden("enroll in this course to watch the lesson")
		}
	}

	completed, err := s.repo.IsCompleted(ctx, identity.ID, lesson.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	resp := s.toResponse(lesson, completed)
	return &resp, nil
}

func (s *lessonService) UpdateLesson(ctx context.Context, identity *authz.Identity, id uuid.UUID, req dto.UpdateLessonRequest) (*dto.LessonResponse, error) {
	if err := authz.Authorize(identity, authz.Staff, nil); err != nil {
		return nil, err
	}

	lesson, err := s.findLesson(ctx, id)
	if err != nil {
		return nil, err
	}
	previousVideo := lesson.VideoID

	lesson.Title = strings.TrimSpace(req.Title)
	lesson.Content = htmlsanitize.Sanitize(req.Content)
	lesson.VideoID = s.encoder.Decode(strings.TrimSpace(req.VideoID))
	lesson.DurationSeconds = req.DurationSeconds
	lesson.IsPreview = req.IsPreview
	if req.Order != nil {
		lesson.Order = *req.Order
	}

	if err := s.repo.Update(ctx, lesson); err != nil {
		return nil, apperror.Internal(err)
	}

	switch {
	case lesson.VideoID == previousVideo:
	case lesson.VideoID == "":
		s.publishMedia(ctx, events.LessonVideoRemoved, lesson, identity.ID)
	default:
		s.publishMedia(ctx, events.LessonVideoUpdated, lesson, identity.ID)
	}

	completed, err := s.repo.IsCompleted(ctx, identity.ID, lesson.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	resp := s.toResponse(lesson, completed)
	return &resp, nil
}

func (s *lessonService) DeleteLesson(ctx context.Context, identity *authz.Identity, id uuid.UUID) error {
	if err := authz.Authorize(identity, authz.Staff, nil); err != nil {
		return err
	}

	lesson, err := s.findLesson(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if database.IsNotFound(err) {
			return apperror.NotFound("lesson not found")
		}
		return apperror.Internal(err)
	}

	if lesson.VideoID != "" {
		s.publishMedia(ctx, events.LessonVideoRemoved, lesson, identity.ID)
	}
	return nil
}

func (s *lessonService) CompleteLesson(ctx context.Context, identity *authz.Identity, id uuid.UUID) (*dto.ProgressResponse, error) {
	lesson, err := s.enrolledLesson(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	courseID := courseOf(lesson)

	created, err := s.repo.MarkComplete(ctx, identity.ID, lesson.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if created && s.certificates != nil {
		if err := s.certificates.IssueIfComplete(ctx, identity.ID, courseID); err != nil {
			log.Error().Err(err).
				Str("user_id", identity.ID.String()).
				Str("course_id", courseID.String()).
				Msg("failed to issue certificate")
		}
	}

	return s.progress(ctx, identity.ID, courseID)
}

func (s *lessonService) UncompleteLesson(ctx context.Context, identity *authz.Identity, id uuid.UUID) (*dto.ProgressResponse, error) {
	lesson, err := s.enrolledLesson(ctx, identity, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Unmark(ctx, identity.ID, lesson.ID); err != nil {
		return nil, apperror.Internal(err)
	}
	return s.progress(ctx, identity.ID, courseOf(lesson))
}

func (s *lessonService) GetProgress(ctx context.Context, identity *authz.Identity, courseID uuid.UUID) (*dto.ProgressResponse, error) {
	if err := authz.Authorize(identity, authz.Anyone, nil); err != nil {
		return nil, err
	}

	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		if database.IsNotFound(err) {
			return nil, apperror.NotFound("course not found")
		}
		return nil, apperror.Internal(err)
	}
	return s.progress(ctx, identity.ID, courseID)
}

func (s *lessonService) progress(ctx context.Context, userID, courseID uuid.UUID) (*dto.ProgressResponse, error) {
	total, err := s.repo.CountLessons(ctx, courseID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	completed, err := s.repo.CountCompleted(ctx, userID, courseID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	resp := dto.NewProgressResponse(courseID, completed, total)
	return &resp, nil
}

func (s *lessonService) enrolledLesson(ctx context.Context, identity *authz.Identity, id uuid.UUID) (*entity.Lesson, error) {
	if err := authz.Authorize(identity, authz.Anyone, nil); err != nil {
		return nil, err
	}

	lesson, err := s.findLesson(ctx, id)
	if err != nil {
		return nil, err
	}

	enrolled, err := s.enrollments.IsEnrolled(ctx, identity.ID, courseOf(lesson))
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if !enrolled {
		return nil, apperror.Forbidden("you are not enrolled in this course")
	}
	return lesson, nil
}

func (s *lessonService) findLesson(ctx context.Context, id uuid.UUID) (*entity.Lesson, error) {
	lesson, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, apperror.NotFound("lesson not found")
		}
		return nil, apperror.Internal(err)
	}
	return lesson, nil
}

func (s *lessonService) toResponse(lesson *entity.Lesson, completed bool) dto.LessonResponse {
	return dto.ToLessonResponse(lesson, courseOf(lesson), s.encoder.Encode(lesson.VideoID), completed)
}

func (s *lessonService) publishMedia(ctx context.Context, eventType string, lesson *entity.Lesson, actorID uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	event := events.MediaEvent{
		Type:       eventType,
		LessonID:   lesson.ID,
		ModuleID:   lesson.ModuleID,
		VideoID:    lesson.VideoID,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, lesson.ID.String(), event); err != nil {
		log.Warn().Err(err).
			Str("lesson_id", lesson.ID.String()).
			Str("type", eventType).
			Msg("failed to publish media event")
	}
}

func courseOf(lesson *entity.Lesson) uuid.UUID {
	if lesson.Module == nil {
		return uuid.Nil
	}
	return lesson.Module.CourseID
}
