package simplecms

import (
	"io"

	"github.com/google/uuid"
)

// Request DTOs

// RecordPatch is a sparse update payload. A nil field was absent from the
// request and leaves the stored value unchanged; a non-nil pointer to an
// empty value is an explicit overwrite. Array fields replace wholesale;
// GalleryURLs is combined with fresh uploads by the reconciler.
type RecordPatch struct {
	Title      *string
	Summary    *string
	Body       *string
	Tags       *[]string
	Categories *[]string
	Status     *string
	Featured   *bool

	// ImageURL supplies the primary media URL directly. A fresh upload in
	// the same request takes precedence.
	ImageURL *string

	// GalleryURLs supplies the secondary media list. Fresh uploads are
	// appended after it.
	GalleryURLs *[]string

	AuthorID *uuid.UUID
}

// Upload is a file carried by a create/update request.
type Upload struct {
	Reader   io.Reader
	FileName string
	MimeType string
}

// CreateRecordRequest contains parameters for creating a record
type CreateRecordRequest struct {
	Kind    Kind
	Patch   RecordPatch
	Image   *Upload
	Gallery []Upload
}

// UpdateRecordRequest contains parameters for a partial record update
type UpdateRecordRequest struct {
	Kind    Kind
	ID      int64
	Patch   RecordPatch
	Image   *Upload
	Gallery []Upload
}

// CreateAuthorRequest contains parameters for creating an admin author
type CreateAuthorRequest struct {
	Email    string
	Name     string
	Password string
}
