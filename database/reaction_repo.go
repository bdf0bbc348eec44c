package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/webmaek/aventus/models"
)

type reaction interface {
	models.Like | models.Bookmark
}

// toggle deletes the (user, project) row of type T when it exists and creates it
// otherwise. It returns the affected row and whether the reaction is now active.
func toggle[T reaction](ctx context.Context, db *gorm.DB, slug string, userID uuid.UUID, build func(projectID uuid.UUID) *T) (*T, bool, error) {
	var (
		row    *T
		active bool
	)
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var project models.Project
		if err := tx.Select("id").Where("slug = ?", slug).First(&project).Error; err != nil {
			return notFound(err, "project")
		}

		var existing T
		err := tx.Where("project_id = ? AND user_id = ?", project.ID, userID).First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			row, active = &existing, false
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			created := build(project.ID)
			if err := tx.Omit("User").Create(created).Error; err != nil {
				return err
			}
			row, active = created, true
			return nil
		default:
			return err
		}
	})
	if err != nil {
		return nil, false, err
	}
	return row, active, nil
}

type LikeRepo struct {
	db *gorm.DB
}

func NewLikeRepo(db *gorm.DB) *LikeRepo {
	return &LikeRepo{db}
}

// Toggle likes or unlikes the project identified by slug on behalf of userID.
func (r *LikeRepo) Toggle(ctx context.Context, slug string, userID uuid.UUID) (*models.Like, bool, error) {
	return toggle(ctx, r.db, slug, userID, func(projectID uuid.UUID) *models.Like {
		return &models.Like{UserID: userID, ProjectID: projectID}
	})
}

type BookmarkRepo struct {
	db *gorm.DB
}

func NewBookmarkRepo(db *gorm.DB) *BookmarkRepo {
	return &BookmarkRepo{db}
}

// Toggle bookmarks or un-bookmarks the project identified by slug on behalf of userID.
func (r *BookmarkRepo) Toggle(ctx context.Context, slug string, userID uuid.UUID) (*models.Bookmark, bool, error) {
	return toggle(ctx, r.db, slug, userID, func(projectID uuid.UUID) *models.Bookmark {
		return &models.Bookmark{UserID: userID, ProjectID: projectID}
	})
}
