package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/webmaek/aventus/models"
)

// ProjectFilter narrows project listings. Empty fields do not filter.
type ProjectFilter struct {
	Tag   string
	Query string
}

// ProjectFields are the mutable columns of a project. The slug is not among them.
type ProjectFields struct {
	Title       string
	Description string
	Content     string
}

type ProjectRepo struct {
	db *gorm.DB
}

func NewProjectRepo(db *gorm.DB) *ProjectRepo {
	return &ProjectRepo{db}
}

func withDetails(q *gorm.DB) *gorm.DB {
	return q.Preload("Tags").Preload("User").Preload("Likes").Preload("Bookmarks")
}

func applyFilter(q *gorm.DB, f ProjectFilter) *gorm.DB {
	if f.Tag != "" {
		q = q.Where(`EXISTS (SELECT 1 FROM project_tags JOIN tags ON tags.id = project_tags.tag_id
			WHERE project_tags.project_id = projects.id AND tags.name = ?)`, f.Tag)
	}
	if f.Query != "" {
		q = q.Where(`LOWER(projects.title) LIKE ? ESCAPE '\'`, likePattern(f.Query))
	}
	return q
}

func newestFirst(q *gorm.DB) *gorm.DB {
	return q.Order("projects.created_at DESC").Order("projects.id DESC")
}

// Feed returns up to limit projects, newest first, starting at the cursor
// project (inclusive). An unknown cursor yields an empty page.
func (r *ProjectRepo) Feed(ctx context.Context, f ProjectFilter, cursor *uuid.UUID, limit int) ([]*models.Project, error) {
	q := applyFilter(r.db.WithContext(ctx).Model(&models.Project{}), f)

	if cursor != nil {
		var anchor models.Project
		err := r.db.WithContext(ctx).Select("id", "created_at").Where("id = ?", *cursor).First(&anchor).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []*models.Project{}, nil
		}
		if err != nil {
			return nil, err
		}
		q = q.Where("(projects.created_at < ? OR (projects.created_at = ? AND projects.id <= ?))",
			anchor.CreatedAt, anchor.CreatedAt, anchor.ID)
	}

	var projects []*models.Project
	if err := newestFirst(withDetails(q)).Limit(limit).Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, r.attachCounts(ctx, projects)
}

// FindAll returns every project matching f, newest first.
func (r *ProjectRepo) FindAll(ctx context.Context, f ProjectFilter) ([]*models.Project, error) {
	var projects []*models.Project
	q := applyFilter(r.db.WithContext(ctx).Model(&models.Project{}), f)
	if err := newestFirst(withDetails(q)).Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, r.attachCounts(ctx, projects)
}

// Count returns the number of projects matching f.
func (r *ProjectRepo) Count(ctx context.Context, f ProjectFilter) (int64, error) {
	var total int64
	err := applyFilter(r.db.WithContext(ctx).Model(&models.Project{}), f).Count(&total).Error
	return total, err
}

// FindBySlug returns a project with tags, owner, likes, bookmarks and counts.
func (r *ProjectRepo) FindBySlug(ctx context.Context, slug string) (*models.Project, error) {
	var project models.Project
	if err := withDetails(r.db.WithContext(ctx)).Where("slug = ?", slug).First(&project).Error; err != nil {
		return nil, notFound(err, "project")
	}
	if err := r.attachCounts(ctx, []*models.Project{&project}); err != nil {
		return nil, err
	}
	return &project, nil
}

// FindByUser lists projects owned by userID, newest first.
func (r *ProjectRepo) FindByUser(ctx context.Context, userID uuid.UUID) ([]*models.Project, error) {
	var projects []*models.Project
	q := r.db.WithContext(ctx).Where("projects.user_id = ?", userID)
	if err := newestFirst(withDetails(q)).Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, r.attachCounts(ctx, projects)
}

// FindBookmarkedBy lists projects bookmarked by userID, newest first.
func (r *ProjectRepo) FindBookmarkedBy(ctx context.Context, userID uuid.UUID) ([]*models.Project, error) {
	var projects []*models.Project
	q := r.db.WithContext(ctx).Where(
		"EXISTS (SELECT 1 FROM bookmarks WHERE bookmarks.project_id = projects.id AND bookmarks.user_id = ?)", userID)
	if err := newestFirst(withDetails(q)).Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, r.attachCounts(ctx, projects)
}

// Stats returns the likes, bookmarks and relation counts of a project.
func (r *ProjectRepo) Stats(ctx context.Context, slug string) (*models.ProjectStats, error) {
	var project models.Project
	err := r.db.WithContext(ctx).
		Preload("Likes").
		Preload("Bookmarks").
		Select("id").
		Where("slug = ?", slug).
		First(&project).Error
	if err != nil {
		return nil, notFound(err, "project")
	}
	if err := r.attachCounts(ctx, []*models.Project{&project}); err != nil {
		return nil, err
	}
	return &models.ProjectStats{
		Likes:     project.Likes,
		Bookmarks: project.Bookmarks,
		Count:     *project.Count,
	}, nil
}

// Create inserts project and links it to its (already existing) tags.
func (r *ProjectRepo) Create(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Omit("Tags.*", "User").Create(project).Error
}

// UpdateOwned updates the project identified by slug only when userID owns it.
// tags replaces the tag set; nil leaves tags untouched.
func (r *ProjectRepo) UpdateOwned(ctx context.Context, slug string, userID uuid.UUID, fields ProjectFields, tags []models.Tag) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Project{}).
			Where("slug = ? AND user_id = ?", slug, userID).
			Updates(map[string]any{
				"title":       fields.Title,
				"description": fields.Description,
				"content":     fields.Content,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ownershipError(tx, &models.Project{}, "slug", slug, "project")
		}

		if tags == nil {
			return nil
		}
		var project models.Project
		if err := tx.Select("id").Where("slug = ?", slug).First(&project).Error; err != nil {
			return notFound(err, "project")
		}
		return tx.Model(&project).Association("Tags").Replace(tags)
	})
}

// DeleteOwned removes the project identified by slug, together with its comments,
// likes, bookmarks and tag links, only when userID owns it.
func (r *ProjectRepo) DeleteOwned(ctx context.Context, slug string, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owned := func() *gorm.DB {
			return tx.Model(&models.Project{}).Select("id").Where("slug = ? AND user_id = ?", slug, userID)
		}

		for _, dependent := range []any{&models.Comment{}, &models.Like{}, &models.Bookmark{}} {
			if err := tx.Where("project_id IN (?)", owned()).Delete(dependent).Error; err != nil {
				return err
			}
		}
		if err := tx.Exec("DELETE FROM project_tags WHERE project_id IN (?)", owned()).Error; err != nil {
			return err
		}

		res := tx.Where("slug = ? AND user_id = ?", slug, userID).Delete(&models.Project{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ownershipError(tx, &models.Project{}, "slug", slug, "project")
		}
		return nil
	})
}

// IDBySlug resolves a slug to the project's primary key.
func (r *ProjectRepo) IDBySlug(ctx context.Context, slug string) (uuid.UUID, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).Select("id").Where("slug = ?", slug).First(&project).Error; err != nil {
		return uuid.Nil, notFound(err, "project")
	}
	return project.ID, nil
}

// attachCounts fills Count on each project. Likes and bookmarks come from the
// preloaded slices; comments are counted in one grouped query.
func (r *ProjectRepo) attachCounts(ctx context.Context, projects []*models.Project) error {
	if len(projects) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
	}

	var rows []struct {
		ProjectID uuid.UUID
		Total     int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Select("project_id, COUNT(*) AS total").
		Where("project_id IN ?", ids).
		Group("project_id").
		Scan(&rows).Error
	if err != nil {
		return err
	}

	comments := make(map[uuid.UUID]int64, len(rows))
	for _, row := range rows {
		comments[row.ProjectID] = row.Total
	}

	for _, p := range projects {
		p.Count = &models.ProjectCount{
			Comments:  comments[p.ID],
			Likes:     int64(len(p.Likes)),
			Bookmarks: int64(len(p.Bookmarks)),
		}
	}
	return nil
}
