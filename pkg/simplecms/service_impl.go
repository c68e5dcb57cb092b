package simplecms

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"
)

// service implements the Service interface
type service struct {
	repository Repository
	media      MediaStore
	eventSink  EventSink
	now        func() time.Time
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithMediaStore sets the media storage backend
func WithMediaStore(store MediaStore) Option {
	return func(s *service) {
		s.media = store
	}
}

// WithEventSink sets the event sink for the service
func WithEventSink(sink EventSink) Option {
	return func(s *service) {
		s.eventSink = sink
	}
}

// WithClock overrides the time source, for tests
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		now: func() time.Time { return time.Now().UTC() },
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}

	return s, nil
}

// Record operations

func (s *service) CreateRecord(ctx context.Context, req CreateRecordRequest) (*Record, error) {
	if !req.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrNotFound, req.Kind)
	}

	uploads, err := s.uploadMedia(ctx, req.Kind, req.Image, req.Gallery)
	if err != nil {
		return nil, err
	}

	record, err := ReconcileRecord(req.Kind, nil, req.Patch, uploads, s.now())
	if err != nil {
		return nil, err
	}

	// Allocate the id last so validation failures leave no counter gap.
	id, err := s.repository.NextID(ctx, req.Kind.Spec().Key)
	if err != nil {
		return nil, err
	}
	record.ID = id

	if err := s.repository.CreateRecord(ctx, record); err != nil {
		return nil, &RecordError{Kind: req.Kind, ID: id, Op: "create", Err: err}
	}

	if s.eventSink != nil {
		if err := s.eventSink.RecordCreated(ctx, record); err != nil {
			slog.Warn("record created event failed", "kind", record.Kind, "id", record.ID, "error", err)
		}
	}

	return record, nil
}

func (s *service) UpdateRecord(ctx context.Context, req UpdateRecordRequest) (*Record, error) {
	existing, err := s.repository.GetRecord(ctx, req.Kind, req.ID)
	if err != nil {
		return nil, &RecordError{Kind: req.Kind, ID: req.ID, Op: "update", Err: err}
	}

	uploads, err := s.uploadMedia(ctx, req.Kind, req.Image, req.Gallery)
	if err != nil {
		return nil, err
	}

	record, err := ReconcileRecord(req.Kind, existing, req.Patch, uploads, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.repository.UpdateRecord(ctx, record); err != nil {
		return nil, &RecordError{Kind: req.Kind, ID: req.ID, Op: "update", Err: err}
	}

	s.cleanupReplacedMedia(ctx, existing, record)

	if s.eventSink != nil {
		if err := s.eventSink.RecordUpdated(ctx, record); err != nil {
			slog.Warn("record updated event failed", "kind", record.Kind, "id", record.ID, "error", err)
		}
	}

	return record, nil
}

func (s *service) DeleteRecord(ctx context.Context, kind Kind, id int64) error {
	record, err := s.repository.GetRecord(ctx, kind, id)
	if err != nil {
		return &RecordError{Kind: kind, ID: id, Op: "delete", Err: err}
	}

	if err := s.repository.DeleteRecord(ctx, kind, id); err != nil {
		return &RecordError{Kind: kind, ID: id, Op: "delete", Err: err}
	}

	// Best effort: orphaned assets are logged, never fatal.
	s.deleteMedia(ctx, record.Image.PublicID)
	for _, ref := range record.Gallery {
		s.deleteMedia(ctx, ref.PublicID)
	}

	if s.eventSink != nil {
		if err := s.eventSink.RecordDeleted(ctx, kind, id); err != nil {
			slog.Warn("record deleted event failed", "kind", kind, "id", id, "error", err)
		}
	}

	return nil
}

func (s *service) GetRecord(ctx context.Context, kind Kind, id int64) (*Record, error) {
	return s.repository.GetRecord(ctx, kind, id)
}

func (s *service) GetRecordBySlug(ctx context.Context, kind Kind, slug string) (*Record, error) {
	return s.repository.GetRecordBySlug(ctx, kind, slug)
}

func (s *service) ListRecords(ctx context.Context, kind Kind, filters RecordFilters) ([]*Record, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrNotFound, kind)
	}
	return s.repository.ListRecords(ctx, kind, filters)
}

func (s *service) TrackView(ctx context.Context, kind Kind, id int64) (int64, error) {
	return s.repository.IncrementViewCount(ctx, kind, id)
}

// Author operations

func (s *service) CreateAuthor(ctx context.Context, req CreateAuthorRequest) (*Author, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	author := &Author{
		ID:           uuid.New(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}

	if err := s.repository.CreateAuthor(ctx, author); err != nil {
		return nil, fmt.Errorf("failed to create author: %w", err)
	}

	return author, nil
}

func (s *service) Authenticate(ctx context.Context, email, password string) (*Author, error) {
	author, err := s.repository.GetAuthorByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(author.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return author, nil
}

// Helper methods

// uploadMedia uploads the request's files concurrently and waits for all of
// them before returning. Any failure aborts the enclosing operation; sibling
// uploads that already completed are accepted orphans.
func (s *service) uploadMedia(ctx context.Context, kind Kind, image *Upload, gallery []Upload) (UploadedMedia, error) {
	var uploaded UploadedMedia
	if image == nil && len(gallery) == 0 {
		return uploaded, nil
	}
	if s.media == nil {
		return uploaded, fmt.Errorf("%w: no media store configured", ErrUploadFailed)
	}

	folder := kind.Spec().MediaFolder
	refs := make([]*MediaRef, len(gallery))

	g, gctx := errgroup.WithContext(ctx)
	if image != nil {
		g.Go(func() error {
			ref, err := s.media.Upload(gctx, image.Reader, UploadParams{
				Folder:   folder,
				FileName: image.FileName,
				MimeType: image.MimeType,
			})
			if err != nil {
				return fmt.Errorf("%w: %s: %v", ErrUploadFailed, image.FileName, err)
			}
			uploaded.Image = ref
			return nil
		})
	}
	for i, up := range gallery {
		g.Go(func() error {
			ref, err := s.media.Upload(gctx, up.Reader, UploadParams{
				Folder:   folder,
				FileName: up.FileName,
				MimeType: up.MimeType,
			})
			if err != nil {
				return fmt.Errorf("%w: %s: %v", ErrUploadFailed, up.FileName, err)
			}
			refs[i] = ref
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return UploadedMedia{}, err
	}

	for _, ref := range refs {
		uploaded.Gallery = append(uploaded.Gallery, *ref)
	}
	return uploaded, nil
}

// cleanupReplacedMedia deletes assets that the update displaced: a replaced
// primary image and gallery entries no longer referenced.
func (s *service) cleanupReplacedMedia(ctx context.Context, before, after *Record) {
	if before.Image.PublicID != "" && before.Image != after.Image {
		s.deleteMedia(ctx, before.Image.PublicID)
	}

	kept := make(map[string]bool, len(after.Gallery))
	for _, ref := range after.Gallery {
		if ref.PublicID != "" {
			kept[ref.PublicID] = true
		}
	}
	for _, ref := range before.Gallery {
		if ref.PublicID != "" && !kept[ref.PublicID] {
			s.deleteMedia(ctx, ref.PublicID)
		}
	}
}

func (s *service) deleteMedia(ctx context.Context, publicID string) {
	if s.media == nil || publicID == "" {
		return
	}
	if err := s.media.Delete(ctx, publicID); err != nil {
		slog.Warn("best-effort media delete failed", "public_id", publicID, "error", err)
	}
}
