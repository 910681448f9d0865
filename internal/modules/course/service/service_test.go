package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"viralacademy.com/academy/internal/authz"
	"viralacademy.com/academy/internal/entity"
	"viralacademy.com/academy/internal/modules/course/dto"
	"viralacademy.com/academy/pkg/apperror"
)

type fakeCourseRepo struct {
	courses map[uuid.UUID]*entity.Course
	calls   int
}

func newFakeCourseRepo() *fakeCourseRepo {
	return &fakeCourseRepo{courses: map[uuid.UUID]*entity.Course{}}
}

func (f *fakeCourseRepo) Create(_ context.Context, c *entity.Course) error {
	f.calls++
	for _, existing := range f.courses {
		if existing.Slug == c.Slug {
			return gorm.ErrDuplicatedKey
		}
	}
	if c.Order == 0 {
		c.Order = len(f.courses) + 1
	}
	c.ID = uuid.New()
	f.courses[c.ID] = c
	return nil
}

func (f *fakeCourseRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Course, error) {
	f.calls++
	if c, ok := f.courses[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCourseRepo) FindBySlug(_ context.Context, slug string) (*entity.Course, error) {
	f.calls++
	for _, c := range f.courses {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCourseRepo) List(_ context.Context, includeDrafts bool) ([]entity.Course, error) {
	f.calls++
	var out []entity.Course
	for _, c := range f.courses {
		if c.Published || includeDrafts {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCourseRepo) Update(context.Context, *entity.Course) error {
	f.calls++
	return nil
}

func (f *fakeCourseRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.calls++
	if _, ok := f.courses[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.courses, id)
	return nil
}

func (f *fakeCourseRepo) Count(context.Context) (int64, error) {
	return int64(len(f.courses)), nil
}

type enrolledSet map[uuid.UUID]bool

func (e enrolledSet) IsEnrolled(_ context.Context, userID, _ uuid.UUID) (bool, error) {
	return e[userID], nil
}

type recordingIndexer struct {
	indexed []uuid.UUID
	deleted []uuid.UUID
}

func (r *recordingIndexer) IndexCourse(c *entity.Course) error {
	r.indexed = append(r.indexed, c.ID)
	return nil
}

func (r *recordingIndexer) DeleteCourse(id uuid.UUID) error {
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *recordingIndexer) IndexPost(*entity.Post) error { return nil }
func (r *recordingIndexer) DeletePost(uuid.UUID) error   { return nil }

func identity(role string) *authz.Identity {
	return &authz.Identity{ID: uuid.New(), Role: role}
}

func TestCreateCourse(t *testing.T) {
	repo := newFakeCourseRepo()
	indexer := &recordingIndexer{}
	svc := NewCourseService(repo, enrolledSet{}, indexer)
	mentor := identity(entity.RoleMentor)

	resp, err := svc.CreateCourse(context.Background(), mentor, dto.CreateCourseRequest{
		Title: "Viral Hooks 101", Published: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "viral-hooks-101", resp.Slug)
	assert.Equal(t, 1, resp.Order)
	assert.Equal(t, mentor.ID, resp.AuthorID)
	assert.Equal(t, []uuid.UUID{resp.ID}, indexer.indexed)

	_, err = svc.CreateCourse(context.Background(), mentor, dto.CreateCourseRequest{Title: "Viral hooks 101!"})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	_, err = svc.CreateCourse(context.Background(), mentor, dto.CreateCourseRequest{Title: "!!!"})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestStaffOnlyMutationsNeverTouchTheStore(t *testing.T) {
	repo := newFakeCourseRepo()
	svc := NewCourseService(repo, enrolledSet{}, nil)
	id := uuid.New()

	tests := []struct {
		name     string
		identity *authz.Identity
		want     error
	}{
		{"anonymous", nil, apperror.ErrUnauthenticated},
		{"student", identity(entity.RoleStudent), apperror.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateCourse(context.Background(), tt.identity, dto.CreateCourseRequest{Title: "Course"})
			assert.ErrorIs(t, err, tt.want)
			_, err = svc.UpdateCourse(context.Background(), tt.identity, id, dto.UpdateCourseRequest{Title: "Course"})
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, svc.DeleteCourse(context.Background(), tt.identity, id), tt.want)
		})
	}
	assert.Zero(t, repo.calls)
}

func TestDraftVisibility(t *testing.T) {
	repo := newFakeCourseRepo()
	svc := NewCourseService(repo, enrolledSet{}, nil)
	mentor := identity(entity.RoleMentor)
	student := identity(entity.RoleStudent)

	_, err := svc.CreateCourse(context.Background(), mentor, dto.CreateCourseRequest{Title: "Published", Published: true})
	require.NoError(t, err)
	_, err = svc.CreateCourse(context.Background(), mentor, dto.CreateCourseRequest{Title: "Draft"})
	require.NoError(t, err)

	list, err := svc.ListCourses(context.Background(), student, dto.CourseFilter{IncludeDrafts: true})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = svc.ListCourses(context.Background(), mentor, dto.CourseFilter{IncludeDrafts: true})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = svc.GetCourse(context.Background(), student, "draft")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	_, err = svc.GetCourse(context.Background(), nil, "draft")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	detail, err := svc.GetCourse(context.Background(), mentor, "draft")
	require.NoError(t, err)
	assert.False(t, detail.Published)
}

func TestGetCourseEnrolledFlag(t *testing.T) {
	repo := newFakeCourseRepo()
	student := identity(entity.RoleStudent)
	svc := NewCourseService(repo, enrolledSet{student.ID: true}, nil)

	_, err := svc.CreateCourse(context.Background(), identity(entity.RoleAdmin), dto.CreateCourseRequest{Title: "Growth", Published: true})
	require.NoError(t, err)

	detail, err := svc.GetCourse(context.Background(), student, "growth")
	require.NoError(t, err)
	assert.True(t, detail.Enrolled)

	anonymous, err := svc.GetCourse(context.Background(), nil, "growth")
	require.NoError(t, err)
	assert.False(t, anonymous.Enrolled)
}

func TestDeleteCourse(t *testing.T) {
	repo := newFakeCourseRepo()
	indexer := &recordingIndexer{}
	svc := NewCourseService(repo, enrolledSet{}, indexer)
	admin := identity(entity.RoleAdmin)

	created, err := svc.CreateCourse(context.Background(), admin, dto.CreateCourseRequest{Title: "Temporary"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCourse(context.Background(), admin, created.ID))
	assert.Equal(t, []uuid.UUID{created.ID}, indexer.deleted)
	assert.ErrorIs(t, svc.DeleteCourse(context.Background(), admin, created.ID), apperror.ErrNotFound)
}
