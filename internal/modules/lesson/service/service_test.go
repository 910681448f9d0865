package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"viralacademy.com/academy/internal/authz"
	"viralacademy.com/academy/internal/entity"
	"viralacademy.com/academy/internal/modules/lesson/dto"
	"viralacademy.com/academy/pkg/apperror"
	"viralacademy.com/academy/pkg/events"
	"viralacademy.com/academy/pkg/obfuscate"
)

type progressKey struct{ user, lesson uuid.UUID }

type fakeLessonRepo struct {
	modules  map[uuid.UUID]*entity.Module
	lessons  map[uuid.UUID]*entity.Lesson
	progress map[progressKey]bool
}

func newFakeLessonRepo() *fakeLessonRepo {
	return &fakeLessonRepo{
		modules:  map[uuid.UUID]*entity.Module{},
		lessons:  map[uuid.UUID]*entity.Lesson{},
		progress: map[progressKey]bool{},
	}
}

func (f *fakeLessonRepo) Append(_ context.Context, moduleID uuid.UUID, l *entity.Lesson) error {
	module, ok := f.modules[moduleID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	maxOrder := 0
	for _, existing := range f.lessons {
		if existing.ModuleID == moduleID && existing.Order > maxOrder {
			maxOrder = existing.Order
		}
	}
	l.ID = uuid.New()
	l.ModuleID = moduleID
	if l.Order == 0 {
		l.Order = maxOrder + 1
	}
	l.Module = module
	f.lessons[l.ID] = l
	return nil
}

func (f *fakeLessonRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Lesson, error) {
	if l, ok := f.lessons[id]; ok {
		copied := *l
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLessonRepo) Update(_ context.Context, l *entity.Lesson) error {
	f.lessons[l.ID] = l
	return nil
}

func (f *fakeLessonRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.lessons[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.lessons, id)
	for k := range f.progress {
		if k.lesson == id {
			delete(f.progress, k)
		}
	}
	return nil
}

func (f *fakeLessonRepo) MarkComplete(_ context.Context, userID, lessonID uuid.UUID) (bool, error) {
	key := progressKey{userID, lessonID}
	if f.progress[key] {
		return false, nil
	}
	f.progress[key] = true
	return true, nil
}

func (f *fakeLessonRepo) Unmark(_ context.Context, userID, lessonID uuid.UUID) error {
	delete(f.progress, progressKey{userID, lessonID})
	return nil
}

func (f *fakeLessonRepo) IsCompleted(_ context.Context, userID, lessonID uuid.UUID) (bool, error) {
	return f.progress[progressKey{userID, lessonID}], nil
}

func (f *fakeLessonRepo) CountLessons(_ context.Context, courseID uuid.UUID) (int64, error) {
	var n int64
	for _, l := range f.lessons {
		if l.Module.CourseID == courseID {
			n++
		}
	}
	return n, nil
}

func (f *fakeLessonRepo) CountCompleted(_ context.Context, userID, courseID uuid.UUID) (int64, error) {
	var n int64
	for k := range f.progress {
		if l, ok := f.lessons[k.lesson]; ok && k.user == userID && l.Module.CourseID == courseID {
			n++
		}
	}
	return n, nil
}

type fakeCourses map[uuid.UUID]bool

func (f fakeCourses) FindByID(_ context.Context, id uuid.UUID) (*entity.Course, error) {
	if f[id] {
		return &entity.Course{ID: id}, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type enrolledSet map[uuid.UUID]bool

func (e enrolledSet) IsEnrolled(_ context.Context, userID, _ uuid.UUID) (bool, error) {
	return e[userID], nil
}

type recordingIssuer struct {
	calls int
	err   error
}

func (r *recordingIssuer) IssueIfComplete(context.Context, uuid.UUID, uuid.UUID) error {
	r.calls++
	return r.err
}

type recordingPublisher struct {
	events []events.MediaEvent
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, event any) error {
	p.events = append(p.events, event.(events.MediaEvent))
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type fixture struct {
	svc       LessonService
	repo      *fakeLessonRepo
	issuer    *recordingIssuer
	publisher *recordingPublisher
	encoder   *obfuscate.Encoder
	courseID  uuid.UUID
	moduleID  uuid.UUID
	mentor    *authz.Identity
	student   *authz.Identity
	outsider  *authz.Identity
}

func newFixture() *fixture {
	f := &fixture{
		repo:      newFakeLessonRepo(),
		issuer:    &recordingIssuer{},
		publisher: &recordingPublisher{},
		encoder:   obfuscate.New("test-key"),
		courseID:  uuid.New(),
		moduleID:  uuid.New(),
		mentor:    &authz.Identity{ID: uuid.New(), Role: entity.RoleMentor},
		student:   &authz.Identity{ID: uuid.New(), Role: entity.RoleStudent},
		outsider:  &authz.Identity{ID: uuid.New(), Role: entity.RoleStudent},
	}
	f.repo.modules[f.moduleID] = &entity.Module{ID: f.moduleID, CourseID: f.courseID}
	f.svc = NewLessonService(f.repo, fakeCourses{f.courseID: true}, enrolledSet{f.student.ID: true}, f.issuer, f.encoder, f.publisher)
	return f
}

func (f *fixture) lesson(t *testing.T, req dto.CreateLessonRequest) *dto.LessonResponse {
	t.Helper()
	resp, err := f.svc.CreateLesson(context.Background(), f.mentor, f.moduleID, req)
	require.NoError(t, err)
	return resp
}

func TestCreateLesson(t *testing.T) {
	f := newFixture()

	first := f.lesson(t, dto.CreateLessonRequest{
		Title:   "Hooks",
		Content: `<p>Open strong</p><script>alert(1)</script>`,
		VideoID: f.encoder.Encode("vid-123"),
	})
	second := f.lesson(t, dto.CreateLessonRequest{Title: "Pacing"})

	assert.Equal(t, 1, first.Order)
	assert.Equal(t, 2, second.Order)
	assert.Equal(t, "<p>Open strong</p>", first.Content)
	assert.Equal(t, f.courseID, first.CourseID)

	stored := f.repo.lessons[first.ID]
	assert.Equal(t, "vid-123", stored.VideoID)
	assert.Equal(t, f.encoder.Encode("vid-123"), first.VideoToken)
	assert.NotContains(t, first.VideoToken, "vid-123")

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, events.LessonVideoUpdated, f.publisher.events[0].Type)
	assert.Equal(t, "vid-123", f.publisher.events[0].VideoID)

	_, err := f.svc.CreateLesson(context.Background(), f.mentor, uuid.New(), dto.CreateLessonRequest{Title: "Lost"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = f.svc.CreateLesson(context.Background(), f.student, f.moduleID, dto.CreateLessonRequest{Title: "Nope"})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestCreateLessonKeepsExplicitOrder(t *testing.T) {
	f := newFixture()

	order := 3
	placed := f.lesson(t, dto.CreateLessonRequest{Title: "Outro", Order: &order})
	next := f.lesson(t, dto.CreateLessonRequest{Title: "Extras"})

	assert.Equal(t, 3, placed.Order)
	assert.Equal(t, 4, next.Order)
}

func TestGetLessonAccess(t *testing.T) {
	f := newFixture()
	locked := f.lesson(t, dto.CreateLessonRequest{Title: "Paid", VideoID: "raw-video"})
	preview := f.lesson(t, dto.CreateLessonRequest{Title: "Free", IsPreview: true})

	tests := []struct {
		name     string
		identity *authz.Identity
		lesson   uuid.UUID
		want     error
	}{
		{"anonymous", nil, preview.ID, apperror.ErrUnauthenticated},
		{"outsider on locked lesson", f.outsider, locked.ID, apperror.ErrForbidden},
		{"outsider on preview", f.outsider, preview.ID, nil},
		{"enrolled student", f.student, locked.ID, nil},
		{"mentor", f.mentor, locked.ID, nil},
		{"missing lesson", f.student, uuid.New(), apperror.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := f.svc.GetLesson(context.Background(), tt.identity, tt.lesson)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
				return
			}
			require.NoError(t, err)
			assert.NotContains(t, resp.VideoToken, "raw-video")
		})
	}
}

func TestCompletionFlow(t *testing.T) {
	f := newFixture()
	a := f.lesson(t, dto.CreateLessonRequest{Title: "One"})
	b := f.lesson(t, dto.CreateLessonRequest{Title: "Two"})
	ctx := context.Background()

	progress, err := f.svc.CompleteLesson(ctx, f.student, a.ID)
	require.NoError(t, err)
	assert.Equal(t, dto.ProgressResponse{CourseID: f.courseID, Completed: 1, Total: 2, Percent: 50}, *progress)

	// Completing again is a no-op and does not re-run certificate issuance.
	_, err = f.svc.CompleteLesson(ctx, f.student, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, f.issuer.calls)

	progress, err = f.svc.CompleteLesson(ctx, f.student, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, progress.Percent)
	assert.Equal(t, 2, f.issuer.calls)

	progress, err = f.svc.UncompleteLesson(ctx, f.student, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), progress.Completed)

	_, err = f.svc.CompleteLesson(ctx, f.outsider, a.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = f.svc.GetProgress(ctx, f.student, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCertificateFailureDoesNotFailCompletion(t *testing.T) {
	f := newFixture()
	f.issuer.err = errors.New("db down")
	l := f.lesson(t, dto.CreateLessonRequest{Title: "Only"})

	progress, err := f.svc.CompleteLesson(context.Background(), f.student, l.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, progress.Percent)
}

func TestUpdateLessonReportsCallerCompletion(t *testing.T) {
	f := newFixture()
	l := f.lesson(t, dto.CreateLessonRequest{Title: "Hooks"})
	ctx := context.Background()

	resp, err := f.svc.UpdateLesson(ctx, f.mentor, l.ID, dto.UpdateLessonRequest{Title: "Hooks v2"})
	require.NoError(t, err)
	assert.False(t, resp.Completed)

	f.repo.progress[progressKey{f.mentor.ID, l.ID}] = true
	resp, err = f.svc.UpdateLesson(ctx, f.mentor, l.ID, dto.UpdateLessonRequest{Title: "Hooks v3"})
	require.NoError(t, err)
	assert.True(t, resp.Completed)
	assert.Equal(t, "Hooks v3", resp.Title)
}

func TestUpdateAndDeletePublishVideoChanges(t *testing.T) {
	f := newFixture()
	l := f.lesson(t, dto.CreateLessonRequest{Title: "Cut", VideoID: "v1"})
	f.publisher.events = nil
	ctx := context.Background()

	_, err := f.svc.UpdateLesson(ctx, f.mentor, l.ID, dto.UpdateLessonRequest{Title: "Cut", VideoID: "v1"})
	require.NoError(t, err)
	assert.Empty(t, f.publisher.events)

	_, err = f.svc.UpdateLesson(ctx, f.mentor, l.ID, dto.UpdateLessonRequest{Title: "Cut", VideoID: "v2"})
	require.NoError(t, err)
	_, err = f.svc.UpdateLesson(ctx, f.mentor, l.ID, dto.UpdateLessonRequest{Title: "Cut"})
	require.NoError(t, err)
	require.Len(t, f.publisher.events, 2)
	assert.Equal(t, events.LessonVideoUpdated, f.publisher.events[0].Type)
	assert.Equal(t, events.LessonVideoRemoved, f.publisher.events[1].Type)

	_, err = f.svc.CompleteLesson(ctx, f.student, l.ID)
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteLesson(ctx, f.mentor, l.ID))
	assert.Empty(t, f.repo.progress)
	assert.ErrorIs(t, f.svc.DeleteLesson(ctx, f.mentor, l.ID), apperror.ErrNotFound)
}
