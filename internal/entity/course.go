package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Course struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title        string    `gorm:"size:200;not null" json:"title"`
	Slug         string    `gorm:"size:220;uniqueIndex;not null" json:"slug"`
	Summary      string    `gorm:"size:500" json:"summary"`
	Description  string    `gorm:"type:text" json:"description"`
	ThumbnailURL *string   `gorm:"type:text" json:"thumbnail_url,omitempty"`
	Level        string    `gorm:"size:20" json:"level"`
	Published    bool      `gorm:"not null;default:false;index" json:"published"`
	Order        int       `gorm:"column:sort_order;not null;default:0" json:"order"`
	AuthorID     uuid.UUID `gorm:"type:uuid;not null" json:"author_id"`
	Author       User      `gorm:"foreignKey:AuthorID" json:"-"`
	Modules      []Module  `gorm:"foreignKey:CourseID" json:"-"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *Course) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}

type Module struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID    uuid.UUID `gorm:"type:uuid;not null;index" json:"course_id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Order       int       `gorm:"column:sort_order;not null;default:0" json:"order"`
	Lessons     []Lesson  `gorm:"foreignKey:ModuleID" json:"-"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Module) TableName() string {
	return "course_modules"
}

func (m *Module) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID, err = uuid.NewV7()
	}
	return
}

type Lesson struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ModuleID        uuid.UUID `gorm:"type:uuid;not null;index" json:"module_id"`
	Module          *Module   `gorm:"foreignKey:ModuleID" json:"-"`
	Title           string    `gorm:"size:200;not null" json:"title"`
	Content         string    `gorm:"type:text" json:"content"`
	VideoID         string    `gorm:"size:255" json:"-"`
	DurationSeconds int       `gorm:"not null;default:0" json:"duration_seconds"`
	IsPreview       bool      `gorm:"not null;default:false" json:"is_preview"`
	Order           int       `gorm:"column:sort_order;not null;default:0" json:"order"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (l *Lesson) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == uuid.Nil {
		l.ID, err = uuid.NewV7()
	}
	return
}

type Resource struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID  uuid.UUID `gorm:"type:uuid;not null;index" json:"course_id"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	URL       string    `gorm:"type:text;not null" json:"url"`
	Kind      string    `gorm:"size:20;not null" json:"kind"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (r *Resource) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}
