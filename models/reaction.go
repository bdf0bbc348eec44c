package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Like marks that a user liked a project. At most one per (user, project).
type Like struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_like_user_project"`
	ProjectID uuid.UUID `json:"projectId" gorm:"type:uuid;not null;index;uniqueIndex:idx_like_user_project"`
	CreatedAt time.Time `json:"createdAt"`

	User *User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

func (l *Like) BeforeCreate(tx *gorm.DB) error {
	assignID(&l.ID)
	return nil
}

// Bookmark marks that a user saved a project to their reading list.
type Bookmark struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_bookmark_user_project"`
	ProjectID uuid.UUID `json:"projectId" gorm:"type:uuid;not null;index;uniqueIndex:idx_bookmark_user_project"`
	CreatedAt time.Time `json:"createdAt"`

	User *User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

func (b *Bookmark) BeforeCreate(tx *gorm.DB) error {
	assignID(&b.ID)
	return nil
}
