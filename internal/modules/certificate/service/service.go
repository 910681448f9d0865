package service

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"viralacademy.com/academy/internal/authz"
	"viralacademy.com/academy/internal/entity"
	"viralacademy.com/academy/internal/modules/certificate/dto"
	certRepo "viralacademy.com/academy/internal/modules/certificate/repository"
	notification "viralacademy.com/academy/internal/modules/notification/service"
	"viralacademy.com/academy/pkg/apperror"
	"viralacademy.com/academy/pkg/database"
	"viralacademy.com/academy/pkg/mailer"
)

type ProgressCounter interface {
	CountLessons(ctx context.Context, courseID uuid.UUID) (int64, error)
	CountCompleted(ctx context.Context, userID, courseID uuid.UUID) (int64, error)
}

type CourseLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Course, error)
}

type UserLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
}

type CertificateService interface {
	IssueIfComplete(ctx context.Context, userID, courseID uuid.UUID) error
	MyCertificates(ctx context.Context, identity *authz.Identity) ([]dto.CertificateResponse, error)
	Verify(ctx context.Context, code string) (*dto.VerificationResponse, error)
}

type Config struct {
	AppURL string
}

type certificateService struct {
	repo     certRepo.CertificateRepository
	progress ProgressCounter
	courses  CourseLookup
	users    UserLookup
	notifier notification.Notifier
	mailer   mailer.Mailer
	appURL   string
}

func NewCertificateService(
	repo certRepo.CertificateRepository,
	progress ProgressCounter,
	courses CourseLookup,
	users UserLookup,
	notifier notification.Notifier,
	m mailer.Mailer,
	cfg Config,
) CertificateService {
	return &certificateService{
		repo:     repo,
		progress: progress,
		courses:  courses,
		users:    users,
		notifier: notifier,
		mailer:   m,
		appURL:   cfg.AppURL,
	}
}

// NewCode returns a code like VA-1F2E-3D4C-5B6A.
func NewCode() string {
	id := uuid.New()
	raw := strings.ToUpper(hex.EncodeToString(id[:6]))
	return fmt.Sprintf("VA-%s-%s-%s", raw[0:4], raw[4:8], raw[8:12])
}

// IssueIfComplete creates the certificate once every lesson of the course is
// completed. It is a no-op for courses without lessons and for certificates
// already issued.
func (s *certificateService) IssueIfComplete(ctx context.Context, userID, courseID uuid.UUID) error {
	total, err := s.progress.CountLessons(ctx, courseID)
	if err != nil {
		return err
	}
	completed, err := s.progress.CountCompleted(ctx, userID, courseID)
	if err != nil {
		return err
	}
	if total == 0 || completed < total {
		return nil
	}

	exists, err := s.repo.Exists(ctx, userID, courseID)
	if err != nil || exists {
		return err
	}

	certificate := &entity.Certificate{UserID: userID, CourseID: courseID, Code: NewCode()}
	if err := s.repo.Create(ctx, certificate); err != nil {
		if database.IsUniqueViolation(err) {
			// Lost a race with a concurrent completion.
			return nil
		}
		return err
	}

	s.announce(ctx, certificate)
	return nil
}

func (s *certificateService) announce(ctx context.Context, certificate *entity.Certificate) {
	course, err := s.courses.FindByID(ctx, certificate.CourseID)
	if err != nil {
		log.Warn().Err(err).Str("course_id", certificate.CourseID.String()).Msg("failed to load course for certificate notice")
		return
	}

	if s.notifier != nil {
		s.notifier.Notify(ctx, certificate.UserID, notification.Notice{
			Type:     entity.NotificationCertificate,
			Title:    "Certificate earned",
			Message:  fmt.Sprintf("You completed %s. Your certificate code is %s.", course.Title, certificate.Code),
			Link:     "/certificates",
			EntityID: &certificate.ID,
		})
	}

	if s.mailer == nil || s.users == nil {
		return
	}
	user, err := s.users.FindByID(ctx, certificate.UserID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", certificate.UserID.String()).Msg("failed to load user for certificate email")
		return
	}
	msg, err := mailer.Certificate(mailer.CertificateData{
		Name:        user.Name,
		CourseTitle: course.Title,
		Code:        certificate.Code,
		VerifyURL:   fmt.Sprintf("%s/certificates/verify/%s", s.appURL, certificate.Code),
	})
	if err == nil {
		err = s.mailer.SendEmail(ctx, user.Email, msg.Subject, msg.HTML, msg.Text)
	}
	if err != nil {
		log.Warn().Err(err).Str("certificate_id", certificate.ID.String()).Msg("failed to send certificate email")
	}
}

func (s *certificateService) MyCertificates(ctx context.Context, identity *authz.Identity) ([]dto.CertificateResponse, error) {
	if err := authz.Authorize(identity, authz.Anyone, nil); err != nil {
		return nil, err
	}

	certificates, err := s.repo.ListByUser(ctx, identity.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	resp := make([]dto.CertificateResponse, 0, len(certificates))
	for i := range certificates {
		resp = append(resp, dto.ToCertificateResponse(&certificates[i]))
	}
	return resp, nil
}

func (s *certificateService) Verify(ctx context.Context, code string) (*dto.VerificationResponse, error) {
	certificate, err := s.repo.FindByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if database.IsNotFound(err) {
			return nil, apperror.NotFound("certificate not found")
		}
		return nil, apperror.Internal(err)
	}

	resp := dto.ToVerificationResponse(certificate)
	return &resp, nil
}
