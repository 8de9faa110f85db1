package user

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"bloglist/internal/domain/entry"
)

var (
	// ErrInvalidUser signals invalid registration parameters.
	ErrInvalidUser = errors.New("invalid user")
	// ErrNotFound is returned when no user matches.
	ErrNotFound = errors.New("user not found")
	// ErrUsernameTaken is returned when the username is already registered.
	ErrUsernameTaken = errors.New("username must be unique")
	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

const (
	MinUsernameLength = 3
	MinPasswordLength = 3
	MaxPasswordLength = 72 // bcrypt input limit
)

// ID is the unique identifier for a user.
type ID = uuid.UUID

// User is a registered account. Entries lists owned entry ids in creation order
// and is never shortened when an entry is deleted.
type User struct {
	ID           ID
	Username     string
	Name         string
	PasswordHash string
	Entries      []entry.ID
	CreatedAt    time.Time
}

// Public returns the projection embedded in entries.
func (u *User) Public() entry.Owner {
	return entry.Owner{ID: u.ID, Username: u.Username, Name: u.Name}
}

// Params contains parameters for registering a user.
type Params struct {
	ID           ID
	Username     string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}

// New creates a new User with validation.
func New(params Params) (*User, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}
	return &User{
		ID:           params.ID,
		Username:     strings.TrimSpace(params.Username),
		Name:         strings.TrimSpace(params.Name),
		PasswordHash: params.PasswordHash,
		CreatedAt:    params.CreatedAt,
	}, nil
}

func validateParams(params Params) error {
	if params.ID == uuid.Nil {
		return fmt.Errorf("%w: id is required", ErrInvalidUser)
	}
	if err := ValidateUsername(params.Username); err != nil {
		return err
	}
	if params.PasswordHash == "" {
		return fmt.Errorf("%w: password hash is required", ErrInvalidUser)
	}
	return nil
}

// ValidateUsername checks the username length rule.
func ValidateUsername(username string) error {
	if len([]rune(strings.TrimSpace(username))) < MinUsernameLength {
		return fmt.Errorf("%w: username must be at least %d characters", ErrInvalidUser, MinUsernameLength)
	}
	return nil
}

// ValidatePassword checks a plain password before hashing.
func ValidatePassword(password string) error {
	if len([]rune(password)) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidUser, MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return fmt.Errorf("%w: password must be at most %d bytes", ErrInvalidUser, MaxPasswordLength)
	}
	return nil
}
