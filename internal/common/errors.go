// Package common holds the error values, logging setup and retry policy
// shared by every punch package.
package common

import (
	"errors"
	"fmt"
)

// Storage lookups.
var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateEntry    = errors.New("duplicate entry")
	ErrDatabaseCorrupted = errors.New("database corrupted")
)

// Uploads and exports. Callers match these with errors.Is; messages are
// wrapped with the offending file or column.
var (
	ErrNoInspectionColumns = errors.New("no inspection columns found in CSV")
	ErrEmptyUpload         = errors.New("uploaded file is empty")
	ErrUploadTooLarge      = errors.New("uploaded file is too large")
	ErrInvalidMapping      = errors.New("invalid trade mapping")
	ErrInvalidRequest      = errors.New("invalid request")
)

// Work order lifecycle.
var ErrInvalidStatus = errors.New("invalid status")

// Configuration.
var (
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError pairs an underlying error with a message safe to show to
// inspectors and builders.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err == nil {
		return e.UserMessage
	}
	return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError wraps err with message.
func NewUserError(message string, err error) error {
	return &UserError{UserMessage: message, Err: err}
}

// UserMessage returns the message of the outermost UserError in err's chain,
// or err's own text when there is none.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr.UserMessage
	}
	return err.Error()
}
