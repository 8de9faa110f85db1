package redis

import (
	"context"
	"fmt"
	"time"

	"bloglist/internal/domain/repository"
)

var _ repository.SessionRepository = (*SessionRepository)(nil)

type sessionClient interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Exists(ctx context.Context, keys ...string) (int64, error)
	Delete(ctx context.Context, keys ...string) error
}

// SessionRepository stores login sessions in Redis. A session expires with its token.
type SessionRepository struct {
	client sessionClient
	now    func() time.Time
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(client sessionClient) *SessionRepository {
	return &SessionRepository{client: client, now: time.Now}
}

func sessionKey(id string) string {
	return "session:" + id
}

// Save stores s until its expiry.
func (r *SessionRepository) Save(ctx context.Context, s repository.Session) error {
	if s.ID == "" {
		return fmt.Errorf("session id is required")
	}
	ttl := s.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return fmt.Errorf("session has already expired")
	}
	if err := r.client.Set(ctx, sessionKey(s.ID), s.UserID.String(), ttl); err != nil {
		return fmt.Errorf("store session in redis: %w", err)
	}
	return nil
}

// Exists reports whether the session is still active.
func (r *SessionRepository) Exists(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	n, err := r.client.Exists(ctx, sessionKey(id))
	if err != nil {
		return false, fmt.Errorf("check session in redis: %w", err)
	}
	return n > 0, nil
}

// Delete revokes the session.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Delete(ctx, sessionKey(id)); err != nil {
		return fmt.Errorf("delete session from redis: %w", err)
	}
	return nil
}
