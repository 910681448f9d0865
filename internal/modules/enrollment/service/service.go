package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"viralacademy.com/academy/internal/authz"
	"viralacademy.com/academy/internal/entity"
	"viralacademy.com/academy/internal/modules/enrollment/dto"
	enrollmentRepo "viralacademy.com/academy/internal/modules/enrollment/repository"
	notification "viralacademy.com/academy/internal/modules/notification/service"
	"viralacademy.com/academy/pkg/apperror"
	"viralacademy.com/academy/pkg/database"
	"viralacademy.com/academy/pkg/mailer"
)

type CourseLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Course, error)
}

// SubscriptionChecker is the billing boundary. Only an ACTIVE subscription
// grants enrollment.
type SubscriptionChecker interface {
	IsActive(ctx context.Context, userID uuid.UUID) (bool, error)
}

type ProgressCounter interface {
	CountLessons(ctx context.Context, courseID uuid.UUID) (int64, error)
	CountCompleted(ctx context.Context, userID, courseID uuid.UUID) (int64, error)
}

type UserLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
}

type EnrollmentService interface {
	Enroll(ctx context.Context, identity *authz.Identity, courseID uuid.UUID) (*dto.EnrollmentResponse, error)
	Unenroll(ctx context.Context, identity *authz.Identity, courseID uuid.UUID) error
	MyEnrollments(ctx context.Context, identity *authz.Identity) ([]dto.EnrollmentResponse, error)
}

type Config struct {
	AppURL string
}

type enrollmentService struct {
	repo          enrollmentRepo.EnrollmentRepository
	courses       CourseLookup
	subscriptions SubscriptionChecker
	progress      ProgressCounter
	users         UserLookup
	notifier      notification.Notifier
	mailer        mailer.Mailer
	appURL        string
}

func NewEnrollmentService(
	repo enrollmentRepo.EnrollmentRepository,
	courses CourseLookup,
	subscriptions SubscriptionChecker,
	progress ProgressCounter,
	users UserLookup,
	notifier notification.Notifier,
	m mailer.Mailer,
	cfg Config,
) EnrollmentService {
	return &enrollmentService{
		repo:          repo,
		courses:       courses,
		subscriptions: subscriptions,
		progress:      progress,
		users:         users,
		notifier:      notifier,
		mailer:        m,
		appURL:        cfg.AppURL,
	}
}

func (s *enrollmentService) Enroll(ctx context.Context, identity *authz.Identity, courseID uuid.UUID) (*dto.EnrollmentResponse, error) {
	if err := authz.Authorize(identity, authz.Anyone, nil); err != nil {
		return nil, err
	}

	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, apperror.NotFound("course not found")
		}
		return nil, apperror.Internal(err)
	}
	if !course.Published {
		return nil, apperror.NotFound("course not found")
	}

	active, err := s.subscriptions.IsActive(ctx, identity.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if !active {
		return nil, apperror.Forbidden("an active subscription is required to enroll")
	}

	enrollment := &entity.Enrollment{UserID: identity.ID, CourseID: course.ID}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperror.Conflict("you are already enrolled in this course")
		}
		return nil, apperror.Internal(err)
	}

	s.confirm(ctx, identity.ID, course)

	total, err := s.progress.CountLessons(ctx, course.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	resp := dto.ToEnrollmentResponse(enrollment, course, dto.NewProgress(0, total))
	return &resp, nil
}

// confirm sends the in-app notification and the confirmation email. Both are
// best effort.
func (s *enrollmentService) confirm(ctx context.Context, userID uuid.UUID, course *entity.Course) {
	courseURL := fmt.Sprintf("%s/courses/%s", s.appURL, course.Slug)

	if s.notifier != nil {
		s.notifier.Notify(ctx, userID, notification.Notice{
			Type:     entity.NotificationEnrollment,
			Title:    "You're enrolled!",
			Message:  fmt.Sprintf("You now have access to %s.", course.Title),
			Link:     fmt.Sprintf("/courses/%s", course.Slug),
			EntityID: &course.ID,
		})
	}

	if s.mailer == nil || s.users == nil {
		return
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID.String()).Msg("failed to load user for enrollment email")
		return
	}
	msg, err := mailer.Enrollment(mailer.EnrollmentData{Name: user.Name, CourseTitle: course.Title, CourseURL: courseURL})
	if err == nil {
		err = s.mailer.SendEmail(ctx, user.Email, msg.Subject, msg.HTML, msg.Text)
	}
	if err != nil {
		log.Warn().Err(err).
			Str("user_id", userID.String()).
			Str("course_id", course.ID.String()).
			Msg("failed to send enrollment email")
	}
}

func (s *enrollmentService) Unenroll(ctx context.Context, identity *authz.Identity, courseID uuid.UUID) error {
	if err := authz.Authorize(identity, authz.Anyone, nil); err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, identity.ID, courseID)
	if err != nil {
		return apperror.Internal(err)
	}
	if !deleted {
		return apperror.NotFound("you are not enrolled in this course")
	}
	return nil
}

func (s *enrollmentService) MyEnrollments(ctx context.Context, identity *authz.Identity) ([]dto.EnrollmentResponse, error) {
	if err := authz.Authorize(identity, authz.Anyone, nil); err != nil {
		return nil, err
	}

	enrollments, err := s.repo.ListByUser(ctx, identity.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	resp := make([]dto.EnrollmentResponse, 0, len(enrollments))
	for i := range enrollments {
		e := &enrollments[i]
		total, err := s.progress.CountLessons(ctx, e.CourseID)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		completed, err := s.progress.CountCompleted(ctx, identity.ID, e.CourseID)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		resp = append(resp, dto.ToEnrollmentResponse(e, &e.Course, dto.NewProgress(completed, total)))
	}
	return resp, nil
}
