//go:build integration

package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"viralacademy.com/academy/internal/entity"
	"viralacademy.com/academy/internal/modules/course/repository"
	"viralacademy.com/academy/internal/testutil"
)

func TestDeleteCourseCascades(t *testing.T) {
	db := testutil.NewPostgres(t)
	ctx := context.Background()

	mentor := testutil.CreateUser(t, db, entity.RoleMentor)
	student := testutil.CreateUser(t, db, entity.RoleStudent)
	course, module, lessons := testutil.CreateCourseTree(t, db, mentor.ID, 2)
	for _, l := range lessons {
		require.NoError(t, db.Create(&entity.LessonProgress{UserID: student.ID, LessonID: l.ID}).Error)
	}
	require.NoError(t, db.Create(&entity.Enrollment{UserID: student.ID, CourseID: course.ID}).Error)
	require.NoError(t, db.Create(&entity.Resource{CourseID: course.ID, Title: "Hook templates", URL: "https://cdn.example.com/hooks.pdf", Kind: "pdf"}).Error)
	require.NoError(t, db.Create(&entity.Certificate{UserID: student.ID, CourseID: course.ID, Code: "VA-CASCADE-01"}).Error)
	event := &entity.LiveEvent{Title: "Office hours", StartsAt: time.Now().Add(time.Hour), HostID: mentor.ID, CourseID: &course.ID}
	require.NoError(t, db.Create(event).Error)

	other, _, _ := testutil.CreateCourseTree(t, db, mentor.ID, 1)

	repo := repository.NewCourseRepository(db)
	require.NoError(t, repo.Delete(ctx, course.ID))

	countWhere := func(model any, query string, arg uuid.UUID) int64 {
		var n int64
		require.NoError(t, db.Model(model).Where(query, arg).Count(&n).Error)
		return n
	}
	assert.Zero(t, countWhere(&entity.LessonProgress{}, "user_id = ?", student.ID))
	assert.Zero(t, countWhere(&entity.Lesson{}, "module_id = ?", module.ID))
	assert.Zero(t, countWhere(&entity.Module{}, "course_id = ?", course.ID))
	assert.Zero(t, countWhere(&entity.Enrollment{}, "course_id = ?", course.ID))
	assert.Zero(t, countWhere(&entity.Resource{}, "course_id = ?", course.ID))
	assert.Zero(t, countWhere(&entity.Certificate{}, "course_id = ?", course.ID))
	assert.Zero(t, countWhere(&entity.Course{}, "id = ?", course.ID))
	assert.Equal(t, int64(1), countWhere(&entity.Module{}, "course_id = ?", other.ID))

	var stored entity.LiveEvent
	require.NoError(t, db.First(&stored, "id = ?", event.ID).Error)
	assert.Nil(t, stored.CourseID)

	assert.Error(t, repo.Delete(ctx, course.ID))
}
