// Package postgres implements simplecms.Repository on PostgreSQL via pgx.
//
// Expected schema (see schema.sql): a records table keyed by (kind, id) with
// a partial unique index on (kind, slug) for live rows, a counters table
// keyed by sequence key, and an authors table keyed by email.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements simplecms.Repository using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// mapError translates driver errors into the domain taxonomy.
func mapError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			if strings.Contains(pgErr.ConstraintName, "slug") {
				return simplecms.ErrDuplicateSlug
			}
			if strings.Contains(pgErr.ConstraintName, "pkey") {
				return simplecms.ErrDuplicateID
			}
			return fmt.Errorf("duplicate entry in %s: %w", operation, simplecms.ErrDuplicateID)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%w: referenced record missing", simplecms.ErrNotFound)
		case "42P01": // undefined_table
			return fmt.Errorf("%w: schema missing, run migrations", simplecms.ErrStorageUnavailable)
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", simplecms.ErrStorageUnavailable, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return simplecms.ErrNotFound
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

// Sequence operations

func (r *Repository) NextID(ctx context.Context, sequenceKey string) (int64, error) {
	// Single atomic find-and-increment; never read-then-write.
	query := `
		INSERT INTO counters (key, seq) VALUES ($1, 1)
		ON CONFLICT (key) DO UPDATE SET seq = counters.seq + 1
		RETURNING seq`

	var seq int64
	if err := r.db.QueryRow(ctx, query, sequenceKey).Scan(&seq); err != nil {
		return 0, mapError("next id", err)
	}
	return seq, nil
}

// Record operations

func (r *Repository) CreateRecord(ctx context.Context, record *simplecms.Record) error {
	gallery, err := json.Marshal(record.Gallery)
	if err != nil {
		return fmt.Errorf("failed to encode gallery: %w", err)
	}

	query := `
		INSERT INTO records (
			kind, id, title, slug, summary, body, tags, categories,
			image_url, image_public_id, gallery, status, featured,
			view_count, author_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	_, err = r.db.Exec(ctx, query,
		record.Kind, record.ID, record.Title, record.Slug, record.Summary, record.Body,
		record.Tags, record.Categories, record.Image.URL, record.Image.PublicID,
		gallery, record.Status, record.Featured, record.ViewCount, record.AuthorID,
		record.CreatedAt, record.UpdatedAt)

	if err != nil {
		return mapError("create record", err)
	}

	return nil
}

const recordColumns = `
	kind, id, title, slug, summary, body, tags, categories,
	image_url, image_public_id, gallery, status, featured,
	view_count, author_id, created_at, updated_at`

func scanRecord(row pgx.Row) (*simplecms.Record, error) {
	var record simplecms.Record
	var gallery []byte
	err := row.Scan(
		&record.Kind, &record.ID, &record.Title, &record.Slug, &record.Summary, &record.Body,
		&record.Tags, &record.Categories, &record.Image.URL, &record.Image.PublicID,
		&gallery, &record.Status, &record.Featured, &record.ViewCount, &record.AuthorID,
		&record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(gallery) > 0 {
		if err := json.Unmarshal(gallery, &record.Gallery); err != nil {
			return nil, fmt.Errorf("failed to decode gallery: %w", err)
		}
	}
	return &record, nil
}

func (r *Repository) GetRecord(ctx context.Context, kind simplecms.Kind, id int64) (*simplecms.Record, error) {
	query := `SELECT ` + recordColumns + `
		FROM records WHERE kind = $1 AND id = $2 AND deleted_at IS NULL`

	record, err := scanRecord(r.db.QueryRow(ctx, query, kind, id))
	if err != nil {
		return nil, mapError("get record", err)
	}
	return record, nil
}

func (r *Repository) GetRecordBySlug(ctx context.Context, kind simplecms.Kind, slug string) (*simplecms.Record, error) {
	query := `SELECT ` + recordColumns + `
		FROM records WHERE kind = $1 AND slug = $2 AND deleted_at IS NULL`

	record, err := scanRecord(r.db.QueryRow(ctx, query, kind, slug))
	if err != nil {
		return nil, mapError("get record by slug", err)
	}
	return record, nil
}

func (r *Repository) UpdateRecord(ctx context.Context, record *simplecms.Record) error {
	gallery, err := json.Marshal(record.Gallery)
	if err != nil {
		return fmt.Errorf("failed to encode gallery: %w", err)
	}

	query := `
		UPDATE records SET
			title = $3, slug = $4, summary = $5, body = $6, tags = $7,
			categories = $8, image_url = $9, image_public_id = $10,
			gallery = $11, status = $12, featured = $13, author_id = $14,
			updated_at = $15
		WHERE kind = $1 AND id = $2 AND deleted_at IS NULL`

	tag, err := r.db.Exec(ctx, query,
		record.Kind, record.ID, record.Title, record.Slug, record.Summary, record.Body,
		record.Tags, record.Categories, record.Image.URL, record.Image.PublicID,
		gallery, record.Status, record.Featured, record.AuthorID, record.UpdatedAt)
	if err != nil {
		return mapError("update record", err)
	}
	if tag.RowsAffected() == 0 {
		return simplecms.ErrNotFound
	}

	return nil
}

func (r *Repository) DeleteRecord(ctx context.Context, kind simplecms.Kind, id int64) error {
	// Soft delete; the partial slug index frees the slug for reuse.
	query := `UPDATE records SET deleted_at = NOW(), updated_at = NOW()
		WHERE kind = $1 AND id = $2 AND deleted_at IS NULL`

	tag, err := r.db.Exec(ctx, query, kind, id)
	if err != nil {
		return mapError("delete record", err)
	}
	if tag.RowsAffected() == 0 {
		return simplecms.ErrNotFound
	}
	return nil
}

func (r *Repository) ListRecords(ctx context.Context, kind simplecms.Kind, filters simplecms.RecordFilters) ([]*simplecms.Record, error) {
	query := `SELECT ` + recordColumns + `
		FROM records WHERE kind = $1 AND deleted_at IS NULL`
	args := []interface{}{kind}

	if filters.Status != nil {
		args = append(args, *filters.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filters.Featured != nil {
		args = append(args, *filters.Featured)
		query += fmt.Sprintf(" AND featured = $%d", len(args))
	}
	if filters.Tag != nil {
		args = append(args, *filters.Tag)
		query += fmt.Sprintf(" AND $%d = ANY(tags)", len(args))
	}
	if filters.Category != nil {
		args = append(args, *filters.Category)
		query += fmt.Sprintf(" AND $%d = ANY(categories)", len(args))
	}

	query += " ORDER BY created_at DESC, id DESC"

	if filters.Limit != nil {
		args = append(args, *filters.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filters.Offset != nil {
		args = append(args, *filters.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list records", err)
	}
	defer rows.Close()

	var records []*simplecms.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, mapError("list records", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list records", err)
	}

	return records, nil
}

func (r *Repository) IncrementViewCount(ctx context.Context, kind simplecms.Kind, id int64) (int64, error) {
	query := `UPDATE records SET view_count = view_count + 1
		WHERE kind = $1 AND id = $2 AND deleted_at IS NULL
		RETURNING view_count`

	var count int64
	if err := r.db.QueryRow(ctx, query, kind, id).Scan(&count); err != nil {
		return 0, mapError("increment view count", err)
	}
	return count, nil
}

// Author operations

func (r *Repository) CreateAuthor(ctx context.Context, author *simplecms.Author) error {
	query := `
		INSERT INTO authors (id, email, name, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(ctx, query,
		author.ID, strings.ToLower(author.Email), author.Name, author.PasswordHash, author.CreatedAt)
	if err != nil {
		return mapError("create author", err)
	}
	return nil
}

func (r *Repository) GetAuthorByEmail(ctx context.Context, email string) (*simplecms.Author, error) {
	query := `SELECT id, email, name, password_hash, created_at
		FROM authors WHERE email = $1`

	var author simplecms.Author
	err := r.db.QueryRow(ctx, query, strings.ToLower(email)).Scan(
		&author.ID, &author.Email, &author.Name, &author.PasswordHash, &author.CreatedAt)
	if err != nil {
		return nil, mapError("get author", err)
	}
	return &author, nil
}
