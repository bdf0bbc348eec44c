package database

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/webmaek/aventus/models"
)

// ProfileFields are the user-editable profile columns. Nil pointers are left unchanged.
type ProfileFields struct {
	Name       *string
	Bio        *string
	Location   *string
	WebsiteURL *string
}

type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db}
}

func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

func (r *UserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

// FindAll lists every user, oldest first.
func (r *UserRepo) FindAll(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateProfile applies the non-nil fields and returns the updated user.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uuid.UUID, fields ProfileFields) (*models.User, error) {
	updates := map[string]any{}
	if fields.Name != nil {
		updates["name"] = *fields.Name
	}
	if fields.Bio != nil {
		updates["bio"] = *fields.Bio
	}
	if fields.Location != nil {
		updates["location"] = *fields.Location
	}
	if fields.WebsiteURL != nil {
		updates["website_url"] = *fields.WebsiteURL
	}

	if len(updates) > 0 {
		res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, notFound(gorm.ErrRecordNotFound, "user")
		}
	}
	return r.FindByID(ctx, id)
}

// SetAvatar stores the avatar URL of the user.
func (r *UserRepo) SetAvatar(ctx context.Context, id uuid.UUID, url string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("avatar", url)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "user")
	}
	return nil
}

// Delete removes the user and everything it owns: its projects (with their
// comments, likes, bookmarks and tag links) and its own comments, likes and bookmarks.
func (r *UserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owned := func() *gorm.DB {
			return tx.Model(&models.Project{}).Select("id").Where("user_id = ?", id)
		}

		for _, dependent := range []any{&models.Comment{}, &models.Like{}, &models.Bookmark{}} {
			if err := tx.Where("project_id IN (?) OR user_id = ?", owned(), id).Delete(dependent).Error; err != nil {
				return err
			}
		}
		if err := tx.Exec("DELETE FROM project_tags WHERE project_id IN (?)", owned()).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Project{}).Error; err != nil {
			return err
		}

		res := tx.Where("id = ?", id).Delete(&models.User{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return notFound(gorm.ErrRecordNotFound, "user")
		}
		return nil
	})
}
