package service

import (
	"context"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"viralacademy.com/academy/internal/authz"
	"viralacademy.com/academy/internal/entity"
	notification "viralacademy.com/academy/internal/modules/notification/service"
	"viralacademy.com/academy/pkg/apperror"
)

type fakeCertificateRepo struct {
	rows []entity.Certificate
}

func (f *fakeCertificateRepo) Create(_ context.Context, c *entity.Certificate) error {
	for _, existing := range f.rows {
		if existing.UserID == c.UserID && existing.CourseID == c.CourseID {
			return gorm.ErrDuplicatedKey
		}
	}
	c.ID = uuid.New()
	f.rows = append(f.rows, *c)
	return nil
}

func (f *fakeCertificateRepo) Exists(_ context.Context, userID, courseID uuid.UUID) (bool, error) {
	for _, c := range f.rows {
		if c.UserID == userID && c.CourseID == courseID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCertificateRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]entity.Certificate, error) {
	var out []entity.Certificate
	for _, c := range f.rows {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCertificateRepo) FindByCode(_ context.Context, code string) (*entity.Certificate, error) {
	for _, c := range f.rows {
		if c.Code == code {
			c.User = entity.User{Name: "Ana"}
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type progress struct{ total, completed int64 }

func (p *progress) CountLessons(context.Context, uuid.UUID) (int64, error) { return p.total, nil }

func (p *progress) CountCompleted(context.Context, uuid.UUID, uuid.UUID) (int64, error) {
	return p.completed, nil
}

type fakeCourses map[uuid.UUID]*entity.Course

func (f fakeCourses) FindByID(_ context.Context, id uuid.UUID) (*entity.Course, error) {
	if c, ok := f[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeUsers map[uuid.UUID]*entity.User

func (f fakeUsers) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type recordingNotifier struct {
	types []string
}

func (r *recordingNotifier) Notify(_ context.Context, _ uuid.UUID, n notification.Notice) {
	r.types = append(r.types, n.Type)
}

func (r *recordingNotifier) Broadcast(context.Context, notification.Broadcast) int { return 0 }

type recordingMailer struct {
	subjects []string
}

func (m *recordingMailer) SendEmail(_ context.Context, _, subject, _, _ string) error {
	m.subjects = append(m.subjects, subject)
	return nil
}

func TestNewCode(t *testing.T) {
	pattern := regexp.MustCompile(`^VA-[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{4}$`)
	a, b := NewCode(), NewCode()
	assert.Regexp(t, pattern, a)
	assert.NotEqual(t, a, b)
}

func TestIssueIfComplete(t *testing.T) {
	userID := uuid.New()
	course := &entity.Course{ID: uuid.New(), Title: "Viral Hooks"}
	repo := &fakeCertificateRepo{}
	p := &progress{total: 3, completed: 2}
	notifier := &recordingNotifier{}
	m := &recordingMailer{}
	svc := NewCertificateService(repo, p, fakeCourses{course.ID: course},
		fakeUsers{userID: {ID: userID, Name: "Ana", Email: "ana@example.com"}}, notifier, m, Config{AppURL: "https://app"})
	ctx := context.Background()

	require.NoError(t, svc.IssueIfComplete(ctx, userID, course.ID))
	assert.Empty(t, repo.rows)

	p.completed = 3
	require.NoError(t, svc.IssueIfComplete(ctx, userID, course.ID))
	require.NoError(t, svc.IssueIfComplete(ctx, userID, course.ID))
	require.Len(t, repo.rows, 1)
	assert.Equal(t, []string{entity.NotificationCertificate}, notifier.types)
	assert.Equal(t, []string{"Your certificate for Viral Hooks"}, m.subjects)

	mine, err := svc.MyCertificates(ctx, &authz.Identity{ID: userID, Role: entity.RoleStudent})
	require.NoError(t, err)
	require.Len(t, mine, 1)

	verified, err := svc.Verify(ctx, " "+repo.rows[0].Code+" ")
	require.NoError(t, err)
	assert.Equal(t, "Ana", verified.HolderName)

	_, err = svc.Verify(ctx, "VA-0000-0000-0000")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestEmptyCourseNeverIssues(t *testing.T) {
	repo := &fakeCertificateRepo{}
	svc := NewCertificateService(repo, &progress{}, fakeCourses{}, fakeUsers{}, nil, nil, Config{})

	require.NoError(t, svc.IssueIfComplete(context.Background(), uuid.New(), uuid.New()))
	assert.Empty(t, repo.rows)
}
