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
	"bloglist/internal/domain/user"
)

var _ repository.UserRepository = (*UserRepository)(nil)

// UserRepository implements repository.UserRepository backed by PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const selectUserSQL = `SELECT id, username, name, password_hash, entry_ids, created_at FROM users`

// Get retrieves a user by ID.
func (r *UserRepository) Get(ctx context.Context, id user.ID) (*user.User, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("user id is required")
	}
	u, err := scanUser(r.pool.QueryRow(ctx, selectUserSQL+` WHERE id = $1`, id))
	if err != nil {
		if errorsIsNoRows(err) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetByUsername retrieves a user by exact username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, user.ErrNotFound
	}
	u, err := scanUser(r.pool.QueryRow(ctx, selectUserSQL+` WHERE username = $1`, username))
	if err != nil {
		if errorsIsNoRows(err) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return u, nil
}

// List returns all users in registration order.
func (r *UserRepository) List(ctx context.Context) ([]*user.User, error) {
	rows, err := r.pool.Query(ctx, selectUserSQL+` ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []*user.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	if u == nil {
		return fmt.Errorf("user is nil")
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	const query = `
INSERT INTO users (id, username, name, password_hash, created_at)
VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, query, u.ID, u.Username, u.Name, u.PasswordHash, u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgCodeUniqueViolation {
			return user.ErrUsernameTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// AppendEntry adds entryID to the end of the user's entry list.
func (r *UserRepository) AppendEntry(ctx context.Context, id user.ID, entryID entry.ID) error {
	const query = `UPDATE users SET entry_ids = array_append(entry_ids, $1::uuid) WHERE id = $2`
	ct, err := r.pool.Exec(ctx, query, entryID, id)
	if err != nil {
		return fmt.Errorf("append user entry: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return user.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	if err := row.Scan(&u.ID, &u.Username, &u.Name, &u.PasswordHash, &u.Entries, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}
