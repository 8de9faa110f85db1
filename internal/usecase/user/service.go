package user

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainEntry "bloglist/internal/domain/entry"
	"bloglist/internal/domain/repository"
	domainUser "bloglist/internal/domain/user"
)

// PasswordHasher hashes plain passwords.
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// Service handles registration and listing of users.
type Service struct {
	users   repository.UserRepository
	entries repository.EntryRepository
	hasher  PasswordHasher
	logger  *slog.Logger
}

// NewService creates a new user service.
func NewService(users repository.UserRepository, entries repository.EntryRepository, hasher PasswordHasher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{users: users, entries: entries, hasher: hasher, logger: logger}
}

// RegisterParams contains the fields of a registration request.
type RegisterParams struct {
	Username string
	Name     string
	Password string
}

// Register validates params, hashes the password and stores the user.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*domainUser.User, error) {
	if err := domainUser.ValidateUsername(params.Username); err != nil {
		return nil, err
	}
	if err := domainUser.ValidatePassword(params.Password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return nil, err
	}

	u, err := domainUser.New(domainUser.Params{
		ID:           uuid.New(),
		Username:     params.Username,
		Name:         params.Name,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.logger.Info("user registered", "user_id", u.ID, "username", u.Username)
	return u, nil
}

// Profile is a user together with the entries they still own.
type Profile struct {
	User    *domainUser.User
	Entries []*domainEntry.Entry
}

// List returns every user with their entries resolved. Ids of deleted
// entries remain in User.Entries but are not resolved.
func (s *Service) List(ctx context.Context) ([]Profile, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	var ids []domainEntry.ID
	for _, u := range users {
		ids = append(ids, u.Entries...)
	}
	entries, err := s.entries.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve user entries: %w", err)
	}
	byID := make(map[domainEntry.ID]*domainEntry.Entry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}

	profiles := make([]Profile, 0, len(users))
	for _, u := range users {
		p := Profile{User: u, Entries: []*domainEntry.Entry{}}
		for _, id := range u.Entries {
			if e, ok := byID[id]; ok {
				p.Entries = append(p.Entries, e)
			}
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}
