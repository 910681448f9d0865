package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Post struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AuthorID   uuid.UUID `gorm:"type:uuid;not null;index" json:"author_id"`
	Author     User      `gorm:"foreignKey:AuthorID" json:"-"`
	CategoryID uuid.UUID `gorm:"type:uuid;not null;index" json:"category_id"`
	Category   Category  `gorm:"foreignKey:CategoryID" json:"-"`
	Title      string    `gorm:"size:200;not null" json:"title"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	Pinned     bool      `gorm:"not null;default:false" json:"pinned"`
	ViewCount  int64     `gorm:"not null;default:0" json:"view_count"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID, err = uuid.NewV7()
	}
	return
}

type Comment struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	PostID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"post_id"`
	AuthorID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"author_id"`
	Author    User       `gorm:"foreignKey:AuthorID" json:"-"`
	ParentID  *uuid.UUID `gorm:"type:uuid;index" json:"parent_id,omitempty"`
	Content   string     `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}

// Like targets exactly one of PostID or CommentID. The two composite unique
// indexes make the (user, target) pair unique; NULL targets never collide.
type Like struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_likes_user_post,priority:1;uniqueIndex:idx_likes_user_comment,priority:1" json:"user_id"`
	PostID    *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_likes_user_post,priority:2;index" json:"post_id,omitempty"`
	CommentID *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_likes_user_comment,priority:2;index" json:"comment_id,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (l *Like) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == uuid.Nil {
		l.ID, err = uuid.NewV7()
	}
	return
}
