package simplecms

import (
	"context"
	"io"
)

// Repository defines the interface for record and author persistence.
//
// CreateRecord and UpdateRecord enforce id and slug uniqueness per kind and
// surface violations as ErrDuplicateID / ErrDuplicateSlug. NextID is the
// identifier allocator: a single atomic find-and-increment of the counter
// for sequenceKey, creating it at zero on first use. Implementations must
// never realize NextID as a separate read followed by a write.
type Repository interface {
	CreateRecord(ctx context.Context, record *Record) error
	GetRecord(ctx context.Context, kind Kind, id int64) (*Record, error)
	GetRecordBySlug(ctx context.Context, kind Kind, slug string) (*Record, error)
	UpdateRecord(ctx context.Context, record *Record) error
	DeleteRecord(ctx context.Context, kind Kind, id int64) error
	ListRecords(ctx context.Context, kind Kind, filters RecordFilters) ([]*Record, error)
	IncrementViewCount(ctx context.Context, kind Kind, id int64) (int64, error)

	NextID(ctx context.Context, sequenceKey string) (int64, error)

	CreateAuthor(ctx context.Context, author *Author) error
	GetAuthorByEmail(ctx context.Context, email string) (*Author, error)
}

// MediaStore defines the interface for media storage backends.
//
// Delete is used only on best-effort cleanup paths; callers log and swallow
// its errors.
type MediaStore interface {
	Upload(ctx context.Context, reader io.Reader, params UploadParams) (*MediaRef, error)
	Delete(ctx context.Context, publicID string) error
}

// UploadParams contains parameters for uploading a media asset
type UploadParams struct {
	Folder   string
	FileName string
	MimeType string
}

// EventSink defines the interface for record lifecycle events
type EventSink interface {
	RecordCreated(ctx context.Context, record *Record) error
	RecordUpdated(ctx context.Context, record *Record) error
	RecordDeleted(ctx context.Context, kind Kind, id int64) error
}
