package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"bloglist/internal/domain/entry"
	"bloglist/internal/domain/identity"
	"bloglist/internal/domain/repository"
	"bloglist/internal/domain/user"
	platformAuth "bloglist/internal/platform/auth"
)

type stubUserRepo struct {
	byName map[string]*user.User
	err    error
}

func (s *stubUserRepo) Get(ctx context.Context, id user.ID) (*user.User, error) {
	return nil, user.ErrNotFound
}

func (s *stubUserRepo) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	u, ok := s.byName[username]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (s *stubUserRepo) List(ctx context.Context) ([]*user.User, error) {
	return nil, nil
}

func (s *stubUserRepo) Create(ctx context.Context, u *user.User) error {
	return nil
}

func (s *stubUserRepo) AppendEntry(ctx context.Context, id user.ID, entryID entry.ID) error {
	return nil
}

type stubSessions struct {
	saved   map[string]repository.Session
	saveErr error
}

func newStubSessions() *stubSessions {
	return &stubSessions{saved: map[string]repository.Session{}}
}

func (s *stubSessions) Save(ctx context.Context, session repository.Session) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved[session.ID] = session
	return nil
}

func (s *stubSessions) Exists(ctx context.Context, id string) (bool, error) {
	_, ok := s.saved[id]
	return ok, nil
}

func (s *stubSessions) Delete(ctx context.Context, id string) error {
	delete(s.saved, id)
	return nil
}

type stubIssuer struct{}

func (stubIssuer) Issue(userID uuid.UUID, username string) (platformAuth.Issued, error) {
	return platformAuth.Issued{Token: "token-" + username, ID: "jti-" + username, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

type prefixChecker struct{}

func (prefixChecker) Compare(hash, plain string) bool {
	return hash == "hashed:"+plain
}

func newTestService(sessions repository.SessionRepository) (*Service, *user.User) {
	root := &user.User{ID: uuid.New(), Username: "root", Name: "Superuser", PasswordHash: "hashed:sekret"}
	users := &stubUserRepo{byName: map[string]*user.User{"root": root}}
	return NewService(users, sessions, stubIssuer{}, prefixChecker{}, nil), root
}

func TestService_Login(t *testing.T) {
	sessions := newStubSessions()
	svc, root := newTestService(sessions)
	ctx := context.Background()

	res, err := svc.Login(ctx, "root", "sekret")
	require.NoError(t, err)
	require.Equal(t, "token-root", res.Token)
	require.Equal(t, "Superuser", res.Name)
	require.Equal(t, root.ID, sessions.saved["jti-root"].UserID)

	active, err := svc.SessionActive(ctx, "jti-root")
	require.NoError(t, err)
	require.True(t, active)
}

func TestService_Login_InvalidCredentials(t *testing.T) {
	svc, _ := newTestService(newStubSessions())
	ctx := context.Background()

	_, err := svc.Login(ctx, "root", "wrong")
	require.ErrorIs(t, err, user.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody", "sekret")
	require.ErrorIs(t, err, user.ErrInvalidCredentials)
}

func TestService_Login_Failures(t *testing.T) {
	sessions := newStubSessions()
	sessions.saveErr = errors.New("redis down")
	svc, _ := newTestService(sessions)

	_, err := svc.Login(context.Background(), "root", "sekret")
	require.Error(t, err)
	require.NotErrorIs(t, err, user.ErrInvalidCredentials)

	broken := NewService(&stubUserRepo{err: errors.New("db down")}, nil, stubIssuer{}, prefixChecker{}, nil)
	_, err = broken.Login(context.Background(), "root", "sekret")
	require.Error(t, err)
	require.NotErrorIs(t, err, user.ErrInvalidCredentials)
}

func TestService_Logout(t *testing.T) {
	sessions := newStubSessions()
	svc, root := newTestService(sessions)
	ctx := context.Background()

	_, err := svc.Login(ctx, "root", "sekret")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, identity.Identity{UserID: root.ID, SessionID: "jti-root"}))
	active, err := svc.SessionActive(ctx, "jti-root")
	require.NoError(t, err)
	require.False(t, active)

	require.ErrorIs(t, svc.Logout(ctx, identity.Identity{}), identity.ErrUnknownActor)
}

func TestService_WithoutSessionStore(t *testing.T) {
	svc, root := newTestService(nil)
	ctx := context.Background()

	_, err := svc.Login(ctx, "root", "sekret")
	require.NoError(t, err)

	active, err := svc.SessionActive(ctx, "anything")
	require.NoError(t, err)
	require.True(t, active)
	require.NoError(t, svc.Logout(ctx, identity.Identity{UserID: root.ID, SessionID: "jti-root"}))
}
