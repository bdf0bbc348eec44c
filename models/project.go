package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project is a published project idea, addressed publicly by its slug.
type Project struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Slug        string    `json:"slug" gorm:"type:text;not null;uniqueIndex"`
	Title       string    `json:"title" gorm:"type:text;not null"`
	Description string    `json:"description" gorm:"type:text;not null"`
	Content     string    `json:"content" gorm:"type:text;not null"`
	UserID      uuid.UUID `json:"userId" gorm:"type:uuid;not null;index"`
	CreatedAt   time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt   time.Time `json:"updatedAt"`

	User      *User      `json:"user,omitempty" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	Tags      []Tag      `json:"tags" gorm:"many2many:project_tags;constraint:OnDelete:CASCADE"`
	Likes     []Like     `json:"likes" gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE"`
	Bookmarks []Bookmark `json:"bookmarks" gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE"`
	Comments  []Comment  `json:"-" gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE"`

	Count *ProjectCount `json:"_count,omitempty" gorm:"-"`
}

// ProjectCount holds the aggregate relation counts returned with a project.
type ProjectCount struct {
	Comments  int64 `json:"comments"`
	Likes     int64 `json:"likes"`
	Bookmarks int64 `json:"bookmarks"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	assignID(&p.ID)
	return nil
}

// ProjectStats is the interaction summary of a single project.
type ProjectStats struct {
	Likes     []Like       `json:"likes"`
	Bookmarks []Bookmark   `json:"bookmarks"`
	Count     ProjectCount `json:"_count"`
}
