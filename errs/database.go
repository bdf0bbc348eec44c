package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrDatabaseQuery      = errors.New("database query failed")
	ErrDatabaseConnection = errors.New("database connection failed")
)

func NewAlreadyExists(entity string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusConflict,
		err:        fmt.Errorf("%s %w", entity, ErrAlreadyExists),
	}
}

func NewNotFound(entity string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusNotFound,
		err:        fmt.Errorf("%s %w", entity, ErrNotFound),
	}
}

// NewDatabaseError creates a new database error with details about the operation.
// Errors that already carry a domain meaning pass through unchanged.
func NewDatabaseError(operation, entity string, cause error) error {
	if cause == nil {
		return nil
	}
	var apiErr *ApiErr
	if errors.As(cause, &apiErr) {
		return cause
	}
	if IsNotFound(cause) || IsForbidden(cause) || IsConflict(cause) || IsBadRequest(cause) {
		return cause
	}

	details := fmt.Sprintf("Failed to %s %s", operation, entity)

	errStr := cause.Error()
	switch {
	case errors.Is(cause, gorm.ErrRecordNotFound), strings.Contains(errStr, "record not found"):
		apiErr := NewNotFound(entity)
		apiErr.Details = details
		return apiErr
	case errors.Is(cause, gorm.ErrDuplicatedKey),
		strings.Contains(errStr, "duplicate key"),
		strings.Contains(errStr, "UNIQUE constraint failed"):
		apiErr := NewAlreadyExists(entity)
		apiErr.Details = details
		apiErr.Cause = cause
		return apiErr
	case errors.Is(cause, gorm.ErrForeignKeyViolated), strings.Contains(errStr, "foreign key constraint"):
		return &ApiErr{
			StatusCode: http.StatusBadRequest,
			err:        fmt.Errorf("invalid reference in %s: %w", entity, ErrBadRequest),
			Details:    "The referenced resource does not exist or cannot be linked",
			Cause:      cause,
		}
	case strings.Contains(errStr, "connection refused"), strings.Contains(errStr, "failed to connect"):
		return &ApiErr{
			StatusCode: http.StatusServiceUnavailable,
			err:        ErrDatabaseConnection,
			Details:    "Unable to connect to database",
			Cause:      cause,
		}
	}

	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrDatabaseQuery,
		Details:    details,
		Cause:      cause,
	}
}
