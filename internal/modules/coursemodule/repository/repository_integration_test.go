//go:build integration

package repository_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"viralacademy.com/academy/internal/entity"
	"viralacademy.com/academy/internal/modules/coursemodule/repository"
	"viralacademy.com/academy/internal/testutil"
)

func TestAppendComputesOrder(t *testing.T) {
	db := testutil.NewPostgres(t)
	ctx := context.Background()

	mentor := testutil.CreateUser(t, db, entity.RoleMentor)
	course, existing, _ := testutil.CreateCourseTree(t, db, mentor.ID, 0)
	require.NoError(t, db.Model(existing).Update("sort_order", 7).Error)

	repo := repository.NewModuleRepository(db)

	const writers = 5
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.Append(ctx, course.ID, &entity.Module{Title: "Appended"})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var orders []int
	require.NoError(t, db.Model(&entity.Module{}).
		Where("course_id = ? AND id <> ?", course.ID, existing.ID).
		Order("sort_order").
		Pluck("sort_order", &orders).Error)
	assert.Equal(t, []int{8, 9, 10, 11, 12}, orders)
}

func TestDeleteModuleCascades(t *testing.T) {
	db := testutil.NewPostgres(t)
	ctx := context.Background()

	mentor := testutil.CreateUser(t, db, entity.RoleMentor)
	student := testutil.CreateUser(t, db, entity.RoleStudent)
	course, module, lessons := testutil.CreateCourseTree(t, db, mentor.ID, 3)
	for _, l := range lessons {
		require.NoError(t, db.Create(&entity.LessonProgress{UserID: student.ID, LessonID: l.ID}).Error)
	}

	repo := repository.NewModuleRepository(db)
	require.NoError(t, repo.Delete(ctx, module.ID))

	var count int64
	require.NoError(t, db.Model(&entity.Lesson{}).Where("module_id = ?", module.ID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&entity.LessonProgress{}).Where("user_id = ?", student.ID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&entity.Course{}).Where("id = ?", course.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	assert.Error(t, repo.Delete(ctx, module.ID))
}

func TestAppendKeepsExplicitOrder(t *testing.T) {
	db := testutil.NewPostgres(t)
	ctx := context.Background()

	mentor := testutil.CreateUser(t, db, entity.RoleMentor)
	course, _, _ := testutil.CreateCourseTree(t, db, mentor.ID, 0)

	repo := repository.NewModuleRepository(db)
	placed := &entity.Module{Title: "Finale", Order: 20}
	require.NoError(t, repo.Append(ctx, course.ID, placed))

	stored, err := repo.FindByID(ctx, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, stored.Order)

	next := &entity.Module{Title: "Bonus"}
	require.NoError(t, repo.Append(ctx, course.ID, next))
	assert.Equal(t, 21, next.Order)
}
