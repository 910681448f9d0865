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
	"viralacademy.com/academy/internal/modules/resource/dto"
	"viralacademy.com/academy/pkg/apperror"
)

type fakeResourceRepo struct {
	rows map[uuid.UUID]*entity.Resource
}

func (f *fakeResourceRepo) Create(_ context.Context, r *entity.Resource) error {
	r.ID = uuid.New()
	f.rows[r.ID] = r
	return nil
}

func (f *fakeResourceRepo) ListByCourse(_ context.Context, courseID uuid.UUID) ([]entity.Resource, error) {
	var out []entity.Resource
	for _, r := range f.rows {
		if r.CourseID == courseID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeResourceRepo) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := f.rows[id]
	delete(f.rows, id)
	return ok, nil
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

func TestResources(t *testing.T) {
	courseID := uuid.New()
	mentor := &authz.Identity{ID: uuid.New(), Role: entity.RoleMentor}
	student := &authz.Identity{ID: uuid.New(), Role: entity.RoleStudent}
	outsider := &authz.Identity{ID: uuid.New(), Role: entity.RoleStudent}
	repo := &fakeResourceRepo{rows: map[uuid.UUID]*entity.Resource{}}
	svc := NewResourceService(repo, fakeCourses{courseID: true}, enrolledSet{student.ID: true})
	ctx := context.Background()

	created, err := svc.CreateResource(ctx, mentor, courseID, dto.CreateResourceRequest{
		Title: "Script template", URL: "https://example.com/t.pdf", Kind: "template",
	})
	require.NoError(t, err)

	_, err = svc.CreateResource(ctx, student, courseID, dto.CreateResourceRequest{Title: "x", URL: "https://x.io", Kind: "link"})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	_, err = svc.CreateResource(ctx, mentor, uuid.New(), dto.CreateResourceRequest{Title: "x", URL: "https://x.io", Kind: "link"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	list, err := svc.ListResources(ctx, student, courseID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.ListResources(ctx, outsider, courseID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	assert.ErrorIs(t, svc.DeleteResource(ctx, student, created.ID), apperror.ErrForbidden)
	require.NoError(t, svc.DeleteResource(ctx, mentor, created.ID))
	assert.ErrorIs(t, svc.DeleteResource(ctx, mentor, created.ID), apperror.ErrNotFound)
}
