package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Enrollment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_enrollments_user_course,priority:1" json:"user_id"`
	CourseID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_enrollments_user_course,priority:2;index" json:"course_id"`
	Course    Course    `gorm:"foreignKey:CourseID" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (e *Enrollment) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID, err = uuid.NewV7()
	}
	return
}

type LessonProgress struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_progress_user_lesson,priority:1" json:"user_id"`
	LessonID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_progress_user_lesson,priority:2;index" json:"lesson_id"`
	CompletedAt time.Time `gorm:"autoCreateTime" json:"completed_at"`
}

func (LessonProgress) TableName() string {
	return "lesson_progress"
}

func (p *LessonProgress) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID, err = uuid.NewV7()
	}
	return
}

type Certificate struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_certificates_user_course,priority:1" json:"user_id"`
	CourseID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_certificates_user_course,priority:2;index" json:"course_id"`
	Code     string    `gorm:"size:32;uniqueIndex;not null" json:"code"`
	User     User      `gorm:"foreignKey:UserID" json:"-"`
	Course   Course    `gorm:"foreignKey:CourseID" json:"-"`
	IssuedAt time.Time `gorm:"autoCreateTime" json:"issued_at"`
}

func (c *Certificate) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}
