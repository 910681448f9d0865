//go:build integration

package testutil

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"viralacademy.com/academy/internal/entity"
)

func CreateUser(t *testing.T, db *gorm.DB, role string) *entity.User {
	t.Helper()
	user := &entity.User{
		Email:        uuid.NewString() + "@example.com",
		Name:         "Test " + role,
		PasswordHash: "x",
		Role:         role,
		Active:       true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func CreateCategory(t *testing.T, db *gorm.DB, staffOnly bool) *entity.Category {
	t.Helper()
	category := &entity.Category{Name: "Category", Slug: uuid.NewString(), StaffOnly: staffOnly}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	return category
}

func CreatePost(t *testing.T, db *gorm.DB, authorID, categoryID uuid.UUID) *entity.Post {
	t.Helper()
	post := &entity.Post{AuthorID: authorID, CategoryID: categoryID, Title: "Hello", Content: "<p>World</p>"}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}
	return post
}

// CreateCourseTree creates a course with one module holding lessons lessons.
func CreateCourseTree(t *testing.T, db *gorm.DB, authorID uuid.UUID, lessons int) (*entity.Course, *entity.Module, []entity.Lesson) {
	t.Helper()
	course := &entity.Course{Title: "Course", Slug: uuid.NewString(), Published: true, AuthorID: authorID, Order: 1}
	if err := db.Create(course).Error; err != nil {
		t.Fatalf("create course: %v", err)
	}
	module := &entity.Module{CourseID: course.ID, Title: "Module", Order: 1}
	if err := db.Create(module).Error; err != nil {
		t.Fatalf("create module: %v", err)
	}
	out := make([]entity.Lesson, 0, lessons)
	for i := 0; i < lessons; i++ {
		lesson := entity.Lesson{ModuleID: module.ID, Title: "Lesson", Order: i + 1}
		if err := db.Create(&lesson).Error; err != nil {
			t.Fatalf("create lesson: %v", err)
		}
		out = append(out, lesson)
	}
	return course, module, out
}
