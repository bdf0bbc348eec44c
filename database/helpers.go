package database

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/webmaek/aventus/errs"
)

// notFound turns gorm's missing-row error into the domain not-found error for entity.
func notFound(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.NewNotFound(entity)
	}
	return err
}

// ownershipError explains why a conditional write on (key, owner) touched no rows:
// the row is gone, or it belongs to someone else.
func ownershipError(tx *gorm.DB, model any, column string, key any, entity string) error {
	var count int64
	if err := tx.Model(model).Where(column+" = ?", key).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return errs.NewNotFound(entity)
	}
	return errs.NewForbiddenError(entity + " belongs to another user")
}

// likePattern escapes LIKE wildcards in q and wraps it for a substring match.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(q)) + "%"
}
