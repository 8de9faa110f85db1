package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrUnknownActor is returned when an authenticated identity does not resolve to a stored user.
var ErrUnknownActor = errors.New("unknown actor")

// Identity is the acting user resolved from a verified bearer token.
type Identity struct {
	UserID   uuid.UUID
	Username string
	// SessionID is the token identifier used to revoke the login.
	SessionID string
}

// IsZero reports whether no user is attached.
func (i Identity) IsZero() bool {
	return i.UserID == uuid.Nil
}

type contextKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext extracts the identity stored by WithIdentity.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	if !ok || id.IsZero() {
		return Identity{}, false
	}
	return id, true
}
