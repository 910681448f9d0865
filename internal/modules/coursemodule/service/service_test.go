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
	"viralacademy.com/academy/internal/modules/coursemodule/dto"
	"viralacademy.com/academy/pkg/apperror"
)

type fakeModuleRepo struct {
	courses map[uuid.UUID]bool
	modules map[uuid.UUID]*entity.Module
	calls   int
}

func (f *fakeModuleRepo) Append(_ context.Context, courseID uuid.UUID, m *entity.Module) error {
	f.calls++
	if !f.courses[courseID] {
		return gorm.ErrRecordNotFound
	}
	maxOrder := 0
	for _, existing := range f.modules {
		if existing.CourseID == courseID && existing.Order > maxOrder {
			maxOrder = existing.Order
		}
	}
	m.ID = uuid.New()
	m.CourseID = courseID
	if m.Order == 0 {
		m.Order = maxOrder + 1
	}
	f.modules[m.ID] = m
	return nil
}

func (f *fakeModuleRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Module, error) {
	f.calls++
	if m, ok := f.modules[id]; ok {
		return m, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeModuleRepo) Update(context.Context, *entity.Module) error {
	f.calls++
	return nil
}

func (f *fakeModuleRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.calls++
	if _, ok := f.modules[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.modules, id)
	return nil
}

func TestCreateModuleAppends(t *testing.T) {
	courseID := uuid.New()
	repo := &fakeModuleRepo{courses: map[uuid.UUID]bool{courseID: true}, modules: map[uuid.UUID]*entity.Module{}}
	repo.modules[uuid.New()] = &entity.Module{CourseID: courseID, Order: 4}
	svc := NewModuleService(repo)
	mentor := &authz.Identity{ID: uuid.New(), Role: entity.RoleMentor}

	first, err := svc.CreateModule(context.Background(), mentor, courseID, dto.CreateModuleRequest{Title: "Hooks"})
	require.NoError(t, err)
	second, err := svc.CreateModule(context.Background(), mentor, courseID, dto.CreateModuleRequest{Title: "Editing"})
	require.NoError(t, err)

	assert.Equal(t, 5, first.Order)
	assert.Equal(t, 6, second.Order)

	_, err = svc.CreateModule(context.Background(), mentor, uuid.New(), dto.CreateModuleRequest{Title: "Orphan"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCreateModuleKeepsExplicitOrder(t *testing.T) {
	courseID := uuid.New()
	repo := &fakeModuleRepo{courses: map[uuid.UUID]bool{courseID: true}, modules: map[uuid.UUID]*entity.Module{}}
	svc := NewModuleService(repo)
	mentor := &authz.Identity{ID: uuid.New(), Role: entity.RoleMentor}

	order := 5
	placed, err := svc.CreateModule(context.Background(), mentor, courseID, dto.CreateModuleRequest{Title: "Finale", Order: &order})
	require.NoError(t, err)
	assert.Equal(t, 5, placed.Order)

	next, err := svc.CreateModule(context.Background(), mentor, courseID, dto.CreateModuleRequest{Title: "Bonus"})
	require.NoError(t, err)
	assert.Equal(t, 6, next.Order)
}

func TestStudentCannotManageModules(t *testing.T) {
	repo := &fakeModuleRepo{courses: map[uuid.UUID]bool{}, modules: map[uuid.UUID]*entity.Module{}}
	svc := NewModuleService(repo)
	student := &authz.Identity{ID: uuid.New(), Role: entity.RoleStudent}

	_, err := svc.CreateModule(context.Background(), student, uuid.New(), dto.CreateModuleRequest{Title: "Hooks"})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	_, err = svc.UpdateModule(context.Background(), student, uuid.New(), dto.UpdateModuleRequest{Title: "Hooks"})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	assert.ErrorIs(t, svc.DeleteModule(context.Background(), nil, uuid.New()), apperror.ErrUnauthenticated)
	assert.Zero(t, repo.calls)
}

func TestUpdateAndDeleteModule(t *testing.T) {
	courseID := uuid.New()
	repo := &fakeModuleRepo{courses: map[uuid.UUID]bool{courseID: true}, modules: map[uuid.UUID]*entity.Module{}}
	svc := NewModuleService(repo)
	admin := &authz.Identity{ID: uuid.New(), Role: entity.RoleAdmin}

	created, err := svc.CreateModule(context.Background(), admin, courseID, dto.CreateModuleRequest{Title: "Intro"})
	require.NoError(t, err)

	order := 3
	updated, err := svc.UpdateModule(context.Background(), admin, created.ID, dto.UpdateModuleRequest{Title: " Basics ", Order: &order})
	require.NoError(t, err)
	assert.Equal(t, "Basics", updated.Title)
	assert.Equal(t, 3, updated.Order)

	require.NoError(t, svc.DeleteModule(context.Background(), admin, created.ID))
	assert.ErrorIs(t, svc.DeleteModule(context.Background(), admin, created.ID), apperror.ErrNotFound)
}
