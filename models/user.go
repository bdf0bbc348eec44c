package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the authorization level carried in a user's token.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User is a registered account. Deleting a user removes everything it owns.
type User struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Email      string    `json:"email" gorm:"type:text;not null;uniqueIndex"`
	Password   string    `json:"-" gorm:"type:text;not null"`
	Name       string    `json:"name" gorm:"type:text;not null"`
	Avatar     string    `json:"avatar" gorm:"type:text;not null"`
	Role       Role      `json:"role" gorm:"type:text;not null"`
	Bio        *string   `json:"bio" gorm:"type:text"`
	Location   *string   `json:"location" gorm:"type:text"`
	WebsiteURL *string   `json:"websiteUrl" gorm:"type:text"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	assignID(&u.ID)
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}
