package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tendant/simple-cms/pkg/simplecms"
)

type recordKey struct {
	kind simplecms.Kind
	id   int64
}

type slugKey struct {
	kind simplecms.Kind
	slug string
}

// Repository implements simplecms.Repository using in-memory storage
type Repository struct {
	mu       sync.RWMutex
	records  map[recordKey]*simplecms.Record
	bySlug   map[slugKey]int64
	counters map[string]int64
	authors  map[string]*simplecms.Author // keyed by email
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		records:  make(map[recordKey]*simplecms.Record),
		bySlug:   make(map[slugKey]int64),
		counters: make(map[string]int64),
		authors:  make(map[string]*simplecms.Author),
	}
}

// Sequence operations

func (r *Repository) NextID(ctx context.Context, sequenceKey string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.counters[sequenceKey]++
	return r.counters[sequenceKey], nil
}

// Record operations

func (r *Repository) CreateRecord(ctx context.Context, record *simplecms.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := recordKey{record.Kind, record.ID}
	if _, exists := r.records[key]; exists {
		return simplecms.ErrDuplicateID
	}
	sk := slugKey{record.Kind, record.Slug}
	if _, exists := r.bySlug[sk]; exists {
		return simplecms.ErrDuplicateSlug
	}

	// Store a copy to avoid external modifications
	recordCopy := *record
	r.records[key] = &recordCopy
	r.bySlug[sk] = record.ID

	return nil
}

func (r *Repository) GetRecord(ctx context.Context, kind simplecms.Kind, id int64) (*simplecms.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.getLocked(kind, id)
}

func (r *Repository) getLocked(kind simplecms.Kind, id int64) (*simplecms.Record, error) {
	record, exists := r.records[recordKey{kind, id}]
	if !exists || record.DeletedAt != nil {
		return nil, simplecms.ErrNotFound
	}
	recordCopy := *record
	return &recordCopy, nil
}

func (r *Repository) GetRecordBySlug(ctx context.Context, kind simplecms.Kind, slug string) (*simplecms.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.bySlug[slugKey{kind, slug}]
	if !exists {
		return nil, simplecms.ErrNotFound
	}
	return r.getLocked(kind, id)
}

func (r *Repository) UpdateRecord(ctx context.Context, record *simplecms.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := recordKey{record.Kind, record.ID}
	prev, exists := r.records[key]
	if !exists || prev.DeletedAt != nil {
		return simplecms.ErrNotFound
	}

	if record.Slug != prev.Slug {
		sk := slugKey{record.Kind, record.Slug}
		if other, taken := r.bySlug[sk]; taken && other != record.ID {
			return simplecms.ErrDuplicateSlug
		}
		delete(r.bySlug, slugKey{record.Kind, prev.Slug})
		r.bySlug[sk] = record.ID
	}

	recordCopy := *record
	recordCopy.ViewCount = prev.ViewCount
	r.records[key] = &recordCopy

	return nil
}

func (r *Repository) DeleteRecord(ctx context.Context, kind simplecms.Kind, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, exists := r.records[recordKey{kind, id}]
	if !exists || record.DeletedAt != nil {
		return simplecms.ErrNotFound
	}

	now := time.Now().UTC()
	record.DeletedAt = &now
	record.UpdatedAt = now
	delete(r.bySlug, slugKey{kind, record.Slug})
	return nil
}

func (r *Repository) ListRecords(ctx context.Context, kind simplecms.Kind, filters simplecms.RecordFilters) ([]*simplecms.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*simplecms.Record
	for key, record := range r.records {
		if key.kind != kind || record.DeletedAt != nil {
			continue
		}
		if !matches(record, filters) {
			continue
		}
		recordCopy := *record
		result = append(result, &recordCopy)
	}

	// Sort by created_at descending, id as tiebreaker
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	result = page(result, filters.Offset, filters.Limit)
	return result, nil
}

func (r *Repository) IncrementViewCount(ctx context.Context, kind simplecms.Kind, id int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, exists := r.records[recordKey{kind, id}]
	if !exists || record.DeletedAt != nil {
		return 0, simplecms.ErrNotFound
	}
	record.ViewCount++
	return record.ViewCount, nil
}

// Author operations

func (r *Repository) CreateAuthor(ctx context.Context, author *simplecms.Author) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(author.Email)
	if _, exists := r.authors[email]; exists {
		return simplecms.ErrDuplicateID
	}
	authorCopy := *author
	r.authors[email] = &authorCopy
	return nil
}

func (r *Repository) GetAuthorByEmail(ctx context.Context, email string) (*simplecms.Author, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	author, exists := r.authors[strings.ToLower(email)]
	if !exists {
		return nil, simplecms.ErrNotFound
	}
	authorCopy := *author
	return &authorCopy, nil
}

func matches(record *simplecms.Record, filters simplecms.RecordFilters) bool {
	if filters.Status != nil && record.Status != *filters.Status {
		return false
	}
	if filters.Featured != nil && record.Featured != *filters.Featured {
		return false
	}
	if filters.Tag != nil && !contains(record.Tags, *filters.Tag) {
		return false
	}
	if filters.Category != nil && !contains(record.Categories, *filters.Category) {
		return false
	}
	return true
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

func page(records []*simplecms.Record, offset, limit *int) []*simplecms.Record {
	if offset != nil {
		if *offset >= len(records) {
			return nil
		}
		records = records[*offset:]
	}
	if limit != nil && *limit < len(records) {
		records = records[:*limit]
	}
	return records
}
