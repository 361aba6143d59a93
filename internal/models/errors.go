package models

import (
	"errors"
	"fmt"
)

// ValidationError represents a validation error with field and message.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// Common validation errors for models.
var (
	// ErrDisplayNameRequired indicates a required display name field is empty.
	ErrDisplayNameRequired = errors.New("display name is required")

	// ErrEngineTypeRequired indicates a storage backend has no engine type.
	ErrEngineTypeRequired = errors.New("engine type is required")

	// ErrEngineTypeImmutable indicates an attempt to change a backend's
	// engine type after creation.
	ErrEngineTypeImmutable = errors.New("engine type cannot be changed after creation")

	// ErrMediaIDRequired indicates a media file is not bound to a media item.
	ErrMediaIDRequired = errors.New("media_id is required")

	// ErrStorageIDRequired indicates a media file is not bound to a storage backend.
	ErrStorageIDRequired = errors.New("storage_id is required")

	// ErrInvalidFileType indicates an unknown media file type.
	ErrInvalidFileType = errors.New("invalid file type: must be audio, video, audio_desc, or captions")

	// ErrInvalidMediaType indicates an unknown media type.
	ErrInvalidMediaType = errors.New("invalid media type: must be audio or video")
)
