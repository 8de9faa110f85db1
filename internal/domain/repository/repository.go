package repository

import (
	"context"
	"time"

	"bloglist/internal/domain/entry"
	"bloglist/internal/domain/user"
)

// EntryRepository defines storage operations for entries.
// Get, Update and Delete return entry.ErrNotFound for unknown ids.
// Returned entries carry the owner's public projection.
type EntryRepository interface {
	Get(ctx context.Context, id entry.ID) (*entry.Entry, error)
	List(ctx context.Context) ([]*entry.Entry, error)
	ListByIDs(ctx context.Context, ids []entry.ID) ([]*entry.Entry, error)
	Create(ctx context.Context, e *entry.Entry) error
	Update(ctx context.Context, e *entry.Entry) error
	Delete(ctx context.Context, id entry.ID) error
}

// UserRepository defines storage operations for users.
// Get and GetByUsername return user.ErrNotFound for unknown users;
// Create returns user.ErrUsernameTaken on a duplicate username.
type UserRepository interface {
	Get(ctx context.Context, id user.ID) (*user.User, error)
	GetByUsername(ctx context.Context, username string) (*user.User, error)
	List(ctx context.Context) ([]*user.User, error)
	Create(ctx context.Context, u *user.User) error
	AppendEntry(ctx context.Context, id user.ID, entryID entry.ID) error
}

// Session is a login that has not been revoked.
type Session struct {
	ID        string
	UserID    user.ID
	ExpiresAt time.Time
}

// SessionRepository stores login sessions keyed by token id.
type SessionRepository interface {
	Save(ctx context.Context, s Session) error
	Exists(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
}
