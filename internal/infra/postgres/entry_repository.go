package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"bloglist/internal/domain/entry"
	"bloglist/internal/domain/repository"
)

var _ repository.EntryRepository = (*EntryRepository)(nil)

const (
	pgCodeUniqueViolation = "23505"
	pgCodeCheckViolation  = "23514"
)

// EntryRepository implements repository.EntryRepository backed by PostgreSQL.
type EntryRepository struct {
	pool *pgxpool.Pool
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(pool *pgxpool.Pool) *EntryRepository {
	return &EntryRepository{pool: pool}
}

const selectEntrySQL = `
SELECT e.id, e.title, e.author, e.url, e.likes, e.created_at, e.updated_at,
	u.id, u.username, u.name
FROM entries e
INNER JOIN users u ON u.id = e.user_id`

// Create inserts a new entry. The owner projection is not rewritten.
func (r *EntryRepository) Create(ctx context.Context, e *entry.Entry) error {
	if e == nil {
		return fmt.Errorf("entry is nil")
	}
	if e.Owner.IsZero() {
		return fmt.Errorf("entry owner is required")
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	now := time.Now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = e.CreatedAt
	}

	const query = `
INSERT INTO entries (id, title, author, url, likes, user_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		e.ID,
		e.Title,
		nullableString(e.Author),
		e.URL,
		e.Likes,
		e.Owner.ID,
		e.CreatedAt,
		e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert entry: %w", mapEntryError(err))
	}
	return nil
}

// Update replaces the mutable fields of an entry. The owner column is never written.
func (r *EntryRepository) Update(ctx context.Context, e *entry.Entry) error {
	if e == nil {
		return fmt.Errorf("entry is nil")
	}
	if e.ID == uuid.Nil {
		return fmt.Errorf("entry id is required")
	}
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = time.Now().UTC()
	}

	const query = `
UPDATE entries
SET title = $1,
	author = $2,
	url = $3,
	likes = $4,
	updated_at = $5
WHERE id = $6`

	ct, err := r.pool.Exec(ctx, query,
		e.Title,
		nullableString(e.Author),
		e.URL,
		e.Likes,
		e.UpdatedAt,
		e.ID,
	)
	if err != nil {
		return fmt.Errorf("update entry: %w", mapEntryError(err))
	}
	if ct.RowsAffected() == 0 {
		return entry.ErrNotFound
	}
	return nil
}

// Delete removes an entry by ID. The owner's entry_ids array is left as is.
func (r *EntryRepository) Delete(ctx context.Context, id entry.ID) error {
	if id == uuid.Nil {
		return fmt.Errorf("entry id is required")
	}
	ct, err := r.pool.Exec(ctx, `DELETE FROM entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return entry.ErrNotFound
	}
	return nil
}

// Get retrieves a single entry by ID.
func (r *EntryRepository) Get(ctx context.Context, id entry.ID) (*entry.Entry, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("entry id is required")
	}

	row := r.pool.QueryRow(ctx, selectEntrySQL+` WHERE e.id = $1`, id)
	ent, err := scanEntry(row)
	if err != nil {
		if errorsIsNoRows(err) {
			return nil, entry.ErrNotFound
		}
		return nil, err
	}
	return ent, nil
}

// List returns every entry in insertion order.
func (r *EntryRepository) List(ctx context.Context) ([]*entry.Entry, error) {
	rows, err := r.pool.Query(ctx, selectEntrySQL+` ORDER BY e.created_at, e.id`)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// ListByIDs returns the entries whose id is in ids. Unknown ids are skipped.
func (r *EntryRepository) ListByIDs(ctx context.Context, ids []entry.ID) ([]*entry.Entry, error) {
	if len(ids) == 0 {
		return []*entry.Entry{}, nil
	}
	rows, err := r.pool.Query(ctx, selectEntrySQL+` WHERE e.id = ANY($1::uuid[]) ORDER BY e.created_at, e.id`, ids)
	if err != nil {
		return nil, fmt.Errorf("list entries by ids: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows pgx.Rows) ([]*entry.Entry, error) {
	entries := []*entry.Entry{}
	for rows.Next() {
		ent, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, ent)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

func scanEntry(row pgx.Row) (*entry.Entry, error) {
	var (
		ent    entry.Entry
		author *string
	)
	if err := row.Scan(
		&ent.ID,
		&ent.Title,
		&author,
		&ent.URL,
		&ent.Likes,
		&ent.CreatedAt,
		&ent.UpdatedAt,
		&ent.Owner.ID,
		&ent.Owner.Username,
		&ent.Owner.Name,
	); err != nil {
		return nil, fmt.Errorf("scan entry: %w", err)
	}
	if author != nil {
		ent.Author = *author
	}
	return &ent, nil
}

func mapEntryError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgCodeCheckViolation {
		return fmt.Errorf("%w: %s", entry.ErrNegativeLikes, pgErr.ConstraintName)
	}
	return err
}

func errorsIsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func nullableString(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
