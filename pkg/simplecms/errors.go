package simplecms

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrNotFound indicates a record (or resource kind) was not found
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateSlug indicates a record with the same slug already exists
	// for the kind. Slug collisions are surfaced, never auto-suffixed.
	ErrDuplicateSlug = errors.New("duplicate slug")

	// ErrDuplicateID indicates a record with the same id already exists for
	// the kind
	ErrDuplicateID = errors.New("duplicate id")

	// ErrStorageUnavailable indicates the persistence layer is unreachable.
	// Identifier allocation must fail with this error rather than fabricate
	// an id.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrInvalidPayload indicates a malformed field encoding in an update
	// payload
	ErrInvalidPayload = errors.New("invalid payload")

	// ErrUploadFailed indicates a media upload operation failed
	ErrUploadFailed = errors.New("upload failed")

	// ErrInvalidCredentials indicates a failed admin login attempt
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// InvalidPayloadError reports a malformed payload field by name. It unwraps
// to ErrInvalidPayload.
type InvalidPayloadError struct {
	Field  string
	Reason string
}

func (e *InvalidPayloadError) Error() string {
	return fmt.Sprintf("invalid payload field %q: %s", e.Field, e.Reason)
}

func (e *InvalidPayloadError) Unwrap() error {
	return ErrInvalidPayload
}

// RecordError represents an error related to record operations
type RecordError struct {
	Kind Kind
	ID   int64
	Op   string
	Err  error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record operation %s failed for %s/%d: %v", e.Op, e.Kind, e.ID, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}
