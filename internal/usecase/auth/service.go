package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"bloglist/internal/domain/identity"
	"bloglist/internal/domain/repository"
	"bloglist/internal/domain/user"
	platformAuth "bloglist/internal/platform/auth"
)

// TokenIssuer signs bearer tokens.
type TokenIssuer interface {
	Issue(userID uuid.UUID, username string) (platformAuth.Issued, error)
}

// PasswordChecker compares a stored hash with a plain password.
type PasswordChecker interface {
	Compare(hash, plain string) bool
}

// Service handles login and logout.
type Service struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	tokens   TokenIssuer
	checker  PasswordChecker
	logger   *slog.Logger
}

// NewService creates a new auth service. sessions may be nil, in which case
// tokens cannot be revoked before they expire.
func NewService(users repository.UserRepository, sessions repository.SessionRepository, tokens TokenIssuer, checker PasswordChecker, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{users: users, sessions: sessions, tokens: tokens, checker: checker, logger: logger}
}

// LoginResult is returned on successful login.
type LoginResult struct {
	Token     string
	Username  string
	Name      string
	ExpiresAt time.Time
}

// Login checks credentials and issues a token.
func (s *Service) Login(ctx context.Context, username, password string) (LoginResult, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return LoginResult{}, user.ErrInvalidCredentials
		}
		return LoginResult{}, fmt.Errorf("lookup user: %w", err)
	}
	if !s.checker.Compare(u.PasswordHash, password) {
		return LoginResult{}, user.ErrInvalidCredentials
	}

	issued, err := s.tokens.Issue(u.ID, u.Username)
	if err != nil {
		return LoginResult{}, err
	}

	if s.sessions != nil {
		session := repository.Session{ID: issued.ID, UserID: u.ID, ExpiresAt: issued.ExpiresAt}
		if err := s.sessions.Save(ctx, session); err != nil {
			return LoginResult{}, fmt.Errorf("save session: %w", err)
		}
	}

	s.logger.Info("user logged in", "user_id", u.ID)
	return LoginResult{Token: issued.Token, Username: u.Username, Name: u.Name, ExpiresAt: issued.ExpiresAt}, nil
}

// Logout revokes the session behind actor's token.
func (s *Service) Logout(ctx context.Context, actor identity.Identity) error {
	if actor.IsZero() {
		return identity.ErrUnknownActor
	}
	if s.sessions == nil || actor.SessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, actor.SessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// SessionActive reports whether the session is still valid. Without a
// session store every verified token is active.
func (s *Service) SessionActive(ctx context.Context, sessionID string) (bool, error) {
	if s.sessions == nil {
		return true, nil
	}
	return s.sessions.Exists(ctx, sessionID)
}
