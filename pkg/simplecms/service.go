package simplecms

import "context"

// Service is the main interface for content operations
type Service interface {
	// Record operations
	CreateRecord(ctx context.Context, req CreateRecordRequest) (*Record, error)
	UpdateRecord(ctx context.Context, req UpdateRecordRequest) (*Record, error)
	DeleteRecord(ctx context.Context, kind Kind, id int64) error
	GetRecord(ctx context.Context, kind Kind, id int64) (*Record, error)
	GetRecordBySlug(ctx context.Context, kind Kind, slug string) (*Record, error)
	ListRecords(ctx context.Context, kind Kind, filters RecordFilters) ([]*Record, error)

	// TrackView increments and returns the record's view counter.
	TrackView(ctx context.Context, kind Kind, id int64) (int64, error)

	// Author operations
	CreateAuthor(ctx context.Context, req CreateAuthorRequest) (*Author, error)
	Authenticate(ctx context.Context, email, password string) (*Author, error)
}
