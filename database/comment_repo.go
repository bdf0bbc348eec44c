package database

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/webmaek/aventus/models"
)

type CommentRepo struct {
	db *gorm.DB
}

func NewCommentRepo(db *gorm.DB) *CommentRepo {
	return &CommentRepo{db}
}

// Create inserts comment on the project identified by slug.
func (r *CommentRepo) Create(ctx context.Context, slug string, comment *models.Comment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var project models.Project
		if err := tx.Select("id").Where("slug = ?", slug).First(&project).Error; err != nil {
			return notFound(err, "project")
		}
		comment.ProjectID = project.ID
		if err := tx.Omit("User").Create(comment).Error; err != nil {
			return err
		}
		return tx.Preload("User").First(comment, "id = ?", comment.ID).Error
	})
}

// FindByID returns comment id when it belongs to the project identified by slug.
func (r *CommentRepo) FindByID(ctx context.Context, slug string, id uuid.UUID) (*models.Comment, error) {
	db := r.db.WithContext(ctx)
	var comment models.Comment
	if err := db.Scopes(onProject(db, slug)).Preload("User").Where("id = ?", id).First(&comment).Error; err != nil {
		return nil, notFound(err, "comment")
	}
	return &comment, nil
}

// FindByProjectSlug lists the comments of a project, newest first, with authors.
// An unknown slug yields an empty list.
func (r *CommentRepo) FindByProjectSlug(ctx context.Context, slug string) ([]models.Comment, error) {
	comments := []models.Comment{}
	err := r.db.WithContext(ctx).
		Preload("User").
		Joins("JOIN projects ON projects.id = comments.project_id").
		Where("projects.slug = ?", slug).
		Order("comments.created_at DESC").
		Order("comments.id DESC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// UpdateOwned changes the content of comment id on project slug only when userID wrote it.
func (r *CommentRepo) UpdateOwned(ctx context.Context, slug string, id, userID uuid.UUID, content string) (*models.Comment, error) {
	var updated models.Comment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		scope := onProject(tx, slug)
		res := tx.Model(&models.Comment{}).
			Scopes(scope).
			Where("id = ? AND user_id = ?", id, userID).
			Update("content", content)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ownershipError(tx.Scopes(scope), &models.Comment{}, "id", id, "comment")
		}
		return tx.Preload("User").Where("id = ?", id).First(&updated).Error
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteOwned removes comment id from project slug only when userID wrote it.
func (r *CommentRepo) DeleteOwned(ctx context.Context, slug string, id, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		scope := onProject(tx, slug)
		res := tx.Scopes(scope).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Comment{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ownershipError(tx.Scopes(scope), &models.Comment{}, "id", id, "comment")
		}
		return nil
	})
}

// onProject restricts a comment query to the project identified by slug.
func onProject(db *gorm.DB, slug string) func(*gorm.DB) *gorm.DB {
	projectIDs := db.Session(&gorm.Session{NewDB: true}).Model(&models.Project{}).Select("id").Where("slug = ?", slug)
	return func(q *gorm.DB) *gorm.DB {
		return q.Where("project_id IN (?)", projectIDs)
	}
}
