package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/webmaek/aventus/database"
	"github.com/webmaek/aventus/errs"
	"github.com/webmaek/aventus/models"
)

type TagService struct {
	db database.Database
}

func NewTagService(db database.Database) *TagService {
	return &TagService{db: db}
}

func (s *TagService) FindAll(ctx context.Context) ([]models.Tag, error) {
	tags, err := s.db.TagRepo().FindAll(ctx)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "tags", err)
	}
	if tags == nil {
		tags = []models.Tag{}
	}
	return tags, nil
}

// CreateOne adds a tag. Names are unique.
func (s *TagService) CreateOne(ctx context.Context, name string) (*models.Tag, error) {
	tag := &models.Tag{Name: strings.TrimSpace(name)}
	if err := s.db.TagRepo().Create(ctx, tag); err != nil {
		dbErr := errs.NewDatabaseError("create", "tag", err)
		if errs.IsConflict(dbErr) {
			return nil, fmt.Errorf("tag %q already exists: %w", tag.Name, errs.ErrConflict)
		}
		return nil, dbErr
	}
	return tag, nil
}
