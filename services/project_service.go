package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/webmaek/aventus/database"
	"github.com/webmaek/aventus/errs"
	"github.com/webmaek/aventus/models"
)

const (
	DefaultFeedLimit = 10
	MaxFeedLimit     = 50
)

// FeedQuery selects one page of the project feed. Cursor is the id of the first
// project of the page; an empty cursor starts at the newest project.
type FeedQuery struct {
	Limit  int
	Cursor string
	Tag    string
	Query  string
}

type FeedPage struct {
	Projects   []*models.Project `json:"projects"`
	NextCursor *string           `json:"nextCursor,omitempty"`
}

type ProjectList struct {
	Data []*models.Project `json:"data"`
	Meta ListMeta          `json:"meta"`
}

type ListMeta struct {
	Total int64 `json:"total"`
}

// ProjectInput is the writable part of a project. Tags holds tag ids.
type ProjectInput struct {
	Title       string
	Description string
	Content     string
	Tags        []uuid.UUID
}

// ToggleResult reports the reaction row that was created or removed.
type ToggleResult[T any] struct {
	Row    *T   `json:"row"`
	Active bool `json:"active"`
}

type ProjectService struct {
	db     database.Database
	logger zerolog.Logger
}

func NewProjectService(db database.Database) *ProjectService {
	return &ProjectService{
		db:     db,
		logger: log.With().Str("serviceName", "projectService").Logger(),
	}
}

// ClampLimit applies the default and the bounds of a feed page size.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultFeedLimit
	case limit > MaxFeedLimit:
		return MaxFeedLimit
	default:
		return limit
	}
}

// Slugify derives the public slug of a project title.
func Slugify(title string) string {
	return slug.Make(title)
}

// Feed returns one page of projects, newest first. One extra row is read to
// learn whether a next page exists; its id becomes NextCursor.
func (s *ProjectService) Feed(ctx context.Context, q FeedQuery) (*FeedPage, error) {
	limit := ClampLimit(q.Limit)

	var cursor *uuid.UUID
	if q.Cursor != "" {
		id, err := uuid.Parse(q.Cursor)
		if err != nil {
			return &FeedPage{Projects: []*models.Project{}}, nil
		}
		cursor = &id
	}

	filter := database.ProjectFilter{Tag: q.Tag, Query: q.Query}
	projects, err := s.db.ProjectRepo().Feed(ctx, filter, cursor, limit+1)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "projects", err)
	}

	page := &FeedPage{Projects: projects}
	if len(projects) > limit {
		next := projects[limit].ID.String()
		page.Projects = projects[:limit]
		page.NextCursor = &next
	}
	return page, nil
}

// FindAll returns every project carrying tag (all projects when tag is empty)
// together with their total count.
func (s *ProjectService) FindAll(ctx context.Context, tag string) (*ProjectList, error) {
	filter := database.ProjectFilter{Tag: tag}

	var (
		projects []*models.Project
		total    int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		projects, err = s.db.ProjectRepo().FindAll(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.db.ProjectRepo().Count(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, errs.NewDatabaseError("find", "projects", err)
	}

	if projects == nil {
		projects = []*models.Project{}
	}
	return &ProjectList{Data: projects, Meta: ListMeta{Total: total}}, nil
}

func (s *ProjectService) FindOne(ctx context.Context, slug string) (*models.Project, error) {
	project, err := s.db.ProjectRepo().FindBySlug(ctx, slug)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "project", err)
	}
	return project, nil
}

func (s *ProjectService) GetProjectStats(ctx context.Context, slug string) (*models.ProjectStats, error) {
	stats, err := s.db.ProjectRepo().Stats(ctx, slug)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "project stats", err)
	}
	return stats, nil
}

// CreateOne publishes a project for userID. Unknown tag ids are ignored.
// A title whose slug is already taken is a conflict.
func (s *ProjectService) CreateOne(ctx context.Context, input ProjectInput, userID uuid.UUID) (*models.Project, error) {
	projectSlug := Slugify(input.Title)
	if projectSlug == "" {
		return nil, errs.NewInvalidFieldError("title", "must contain at least one letter or digit")
	}

	tags, err := s.db.TagRepo().FindByIDs(ctx, input.Tags)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "tags", err)
	}

	project := &models.Project{
		Slug:        projectSlug,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Content:     input.Content,
		UserID:      userID,
		Tags:        tags,
	}
	if err := s.db.ProjectRepo().Create(ctx, project); err != nil {
		dbErr := errs.NewDatabaseError("create", "project", err)
		if errs.IsConflict(dbErr) {
			return nil, fmt.Errorf("slug %q is taken: %w", projectSlug, errs.ErrConflict)
		}
		return nil, dbErr
	}

	s.logger.Info().Str("slug", project.Slug).Str("userId", userID.String()).Msg("Project created")
	return s.FindOne(ctx, project.Slug)
}

// UpdateOne replaces the content and the tag set of a project owned by userID.
// The slug never changes.
func (s *ProjectService) UpdateOne(ctx context.Context, input ProjectInput, slug string, userID uuid.UUID) (*models.Project, error) {
	tags, err := s.db.TagRepo().FindByIDs(ctx, input.Tags)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "tags", err)
	}

	fields := database.ProjectFields{
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Content:     input.Content,
	}
	if err := s.db.ProjectRepo().UpdateOwned(ctx, slug, userID, fields, tags); err != nil {
		return nil, errs.NewDatabaseError("update", "project", err)
	}
	return s.FindOne(ctx, slug)
}

func (s *ProjectService) DeleteOne(ctx context.Context, slug string, userID uuid.UUID) error {
	if err := s.db.ProjectRepo().DeleteOwned(ctx, slug, userID); err != nil {
		return errs.NewDatabaseError("delete", "project", err)
	}
	s.logger.Info().Str("slug", slug).Str("userId", userID.String()).Msg("Project deleted")
	return nil
}

func (s *ProjectService) GetUsersProjects(ctx context.Context, userID uuid.UUID) ([]*models.Project, error) {
	projects, err := s.db.ProjectRepo().FindByUser(ctx, userID)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "projects", err)
	}
	if projects == nil {
		projects = []*models.Project{}
	}
	return projects, nil
}

func (s *ProjectService) GetBookmarkedProjects(ctx context.Context, userID uuid.UUID) ([]*models.Project, error) {
	projects, err := s.db.ProjectRepo().FindBookmarkedBy(ctx, userID)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "bookmarked projects", err)
	}
	if projects == nil {
		projects = []*models.Project{}
	}
	return projects, nil
}

func (s *ProjectService) CreateComment(ctx context.Context, content string, userID uuid.UUID, slug string) (*models.Comment, error) {
	comment := &models.Comment{Content: content, UserID: userID}
	if err := s.db.CommentRepo().Create(ctx, slug, comment); err != nil {
		return nil, errs.NewDatabaseError("create", "comment", err)
	}
	return comment, nil
}

func (s *ProjectService) UpdateComment(ctx context.Context, content, slug string, id, userID uuid.UUID) (*models.Comment, error) {
	comment, err := s.db.CommentRepo().UpdateOwned(ctx, slug, id, userID, content)
	if err != nil {
		return nil, errs.NewDatabaseError("update", "comment", err)
	}
	return comment, nil
}

func (s *ProjectService) DeleteComment(ctx context.Context, slug string, id, userID uuid.UUID) error {
	if err := s.db.CommentRepo().DeleteOwned(ctx, slug, id, userID); err != nil {
		return errs.NewDatabaseError("delete", "comment", err)
	}
	return nil
}

func (s *ProjectService) FindOneComment(ctx context.Context, slug string, id uuid.UUID) (*models.Comment, error) {
	comment, err := s.db.CommentRepo().FindByID(ctx, slug, id)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "comment", err)
	}
	return comment, nil
}

func (s *ProjectService) GetComments(ctx context.Context, slug string) ([]models.Comment, error) {
	comments, err := s.db.CommentRepo().FindByProjectSlug(ctx, slug)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "comments", err)
	}
	return comments, nil
}

func (s *ProjectService) LikeProject(ctx context.Context, slug string, userID uuid.UUID) (*ToggleResult[models.Like], error) {
	like, active, err := s.db.LikeRepo().Toggle(ctx, slug, userID)
	if err != nil {
		return nil, toggleError("like", err)
	}
	return &ToggleResult[models.Like]{Row: like, Active: active}, nil
}

func (s *ProjectService) BookmarkProject(ctx context.Context, slug string, userID uuid.UUID) (*ToggleResult[models.Bookmark], error) {
	bookmark, active, err := s.db.BookmarkRepo().Toggle(ctx, slug, userID)
	if err != nil {
		return nil, toggleError("bookmark", err)
	}
	return &ToggleResult[models.Bookmark]{Row: bookmark, Active: active}, nil
}

// toggleError reports a lost race on the unique (user, project) index as a conflict.
func toggleError(entity string, err error) error {
	dbErr := errs.NewDatabaseError("toggle", entity, err)
	if errors.Is(dbErr, errs.ErrAlreadyExists) {
		return fmt.Errorf("%s changed concurrently: %w", entity, errs.ErrConflict)
	}
	return dbErr
}
