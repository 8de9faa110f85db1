package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	domainEntry "bloglist/internal/domain/entry"
	"bloglist/internal/domain/repository"
	domainUser "bloglist/internal/domain/user"
	platformAuth "bloglist/internal/platform/auth"
	"bloglist/internal/platform/server"
	usecaseAuth "bloglist/internal/usecase/auth"
	usecaseEntry "bloglist/internal/usecase/entry"
	usecaseUser "bloglist/internal/usecase/user"
)

const testAPIBasePath = "/api"

func apiPath(route string) string {
	return testAPIBasePath + route
}

// testServer wraps httptest.Server for integration testing.
type testServer struct {
	*httptest.Server
	router http.Handler
}

// newTestServer creates a test HTTP server with the given handlers.
func newTestServer(cfg RouterConfig) *testServer {
	if cfg.APIBasePath == "" {
		cfg.APIBasePath = testAPIBasePath
	}
	router := NewRouter(cfg)
	srv := httptest.NewServer(router)
	return &testServer{
		Server: srv,
		router: router,
	}
}

// get performs a GET request to the test server.
func (ts *testServer) get(t *testing.T, path string) *http.Response {
	t.Helper()
	return ts.do(t, http.MethodGet, path, "", nil)
}

// do performs a request with an optional bearer token and JSON body.
func (ts *testServer) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req, err := http.NewRequest(method, ts.URL+path, &buf)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	return resp
}

// decodeJSON decodes response body as JSON.
func decodeJSON(t *testing.T, resp *http.Response, dest interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
}

// assertStatus checks HTTP status code.
func assertStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Errorf("status = %d, want %d", resp.StatusCode, want)
	}
}

// assertContentType checks Content-Type header.
func assertContentType(t *testing.T, resp *http.Response, want string) {
	t.Helper()
	got := resp.Header.Get("Content-Type")
	if got != want {
		t.Errorf("Content-Type = %q, want %q", got, want)
	}
}

// assertErrorResponse validates error response structure and returns the message.
func assertErrorResponse(t *testing.T, resp *http.Response, expectedStatus int) map[string]string {
	t.Helper()
	assertStatus(t, resp, expectedStatus)
	assertContentType(t, resp, "application/json")

	var result map[string]string
	decodeJSON(t, resp, &result)
	if _, ok := result["error"]; !ok {
		t.Error("error response missing 'error' field")
	}
	return result
}

// In-memory repositories for isolated handler testing

type memStore struct {
	mu      sync.Mutex
	entries []*domainEntry.Entry
	users   []*domainUser.User
}

type memEntryRepo struct{ s *memStore }

func (m memEntryRepo) Get(ctx context.Context, id domainEntry.ID) (*domainEntry.Entry, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, e := range m.s.entries {
		if e.ID == id {
			cp := *e
			return &cp, nil
		}
	}
	return nil, domainEntry.ErrNotFound
}

func (m memEntryRepo) List(ctx context.Context) ([]*domainEntry.Entry, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := make([]*domainEntry.Entry, 0, len(m.s.entries))
	for _, e := range m.s.entries {
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

func (m memEntryRepo) ListByIDs(ctx context.Context, ids []domainEntry.ID) ([]*domainEntry.Entry, error) {
	var out []*domainEntry.Entry
	for _, id := range ids {
		if e, err := m.Get(ctx, id); err == nil {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m memEntryRepo) Create(ctx context.Context, e *domainEntry.Entry) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	cp := *e
	m.s.entries = append(m.s.entries, &cp)
	return nil
}

func (m memEntryRepo) Update(ctx context.Context, e *domainEntry.Entry) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for i, cur := range m.s.entries {
		if cur.ID == e.ID {
			cp := *e
			cp.Owner = cur.Owner
			m.s.entries[i] = &cp
			return nil
		}
	}
	return domainEntry.ErrNotFound
}

func (m memEntryRepo) Delete(ctx context.Context, id domainEntry.ID) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for i, cur := range m.s.entries {
		if cur.ID == id {
			m.s.entries = append(m.s.entries[:i], m.s.entries[i+1:]...)
			return nil
		}
	}
	return domainEntry.ErrNotFound
}

type memUserRepo struct{ s *memStore }

func (m memUserRepo) Get(ctx context.Context, id domainUser.ID) (*domainUser.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, u := range m.s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domainUser.ErrNotFound
}

func (m memUserRepo) GetByUsername(ctx context.Context, username string) (*domainUser.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, u := range m.s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, domainUser.ErrNotFound
}

func (m memUserRepo) List(ctx context.Context) ([]*domainUser.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return append([]*domainUser.User(nil), m.s.users...), nil
}

func (m memUserRepo) Create(ctx context.Context, u *domainUser.User) error {
	if _, err := m.GetByUsername(ctx, u.Username); err == nil {
		return domainUser.ErrUsernameTaken
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.users = append(m.s.users, u)
	return nil
}

func (m memUserRepo) AppendEntry(ctx context.Context, id domainUser.ID, entryID domainEntry.ID) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, u := range m.s.users {
		if u.ID == id {
			u.Entries = append(u.Entries, entryID)
			return nil
		}
	}
	return domainUser.ErrNotFound
}

type memSessions struct {
	mu    sync.Mutex
	saved map[string]repository.Session
}

func (m *memSessions) Save(ctx context.Context, session repository.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved[session.ID] = session
	return nil
}

func (m *memSessions) Exists(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.saved[id]
	return ok, nil
}

func (m *memSessions) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.saved, id)
	return nil
}

type stubChecker struct {
	err error
}

func (c stubChecker) HealthCheck(context.Context) error {
	return c.err
}

// testApp wires real services over in-memory repositories behind the router.
type testApp struct {
	*testServer
	store *memStore
	auth  *usecaseAuth.Service
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	store := &memStore{}
	entries := memEntryRepo{s: store}
	users := memUserRepo{s: store}
	sessions := &memSessions{saved: map[string]repository.Session{}}

	hasher := platformAuth.NewPasswordHasher(4)
	tokens := platformAuth.NewTokenManager("test-secret", time.Hour, "bloglist-test")

	entrySvc := usecaseEntry.NewService(entries, users, nil, nil, nil)
	userSvc := usecaseUser.NewService(users, entries, hasher, nil)
	authSvc := usecaseAuth.NewService(users, sessions, tokens, hasher, nil)

	bearer := server.BearerAuth(tokens, authSvc, nil)
	ts := newTestServer(RouterConfig{
		EntryHandler:  NewEntryHandler(entrySvc, bearer),
		UserHandler:   NewUserHandler(userSvc),
		AuthHandler:   NewAuthHandler(authSvc, bearer),
		HealthHandler: &HealthHandler{},
	})
	t.Cleanup(ts.Close)

	return &testApp{testServer: ts, store: store, auth: authSvc}
}

// register creates a user through the API and returns its id.
func (a *testApp) register(t *testing.T, username, name, password string) uuid.UUID {
	t.Helper()
	resp := a.do(t, http.MethodPost, apiPath("/users"), "", map[string]string{
		"username": username,
		"name":     name,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created userResponse
	decodeJSON(t, resp, &created)
	return created.ID
}

// login returns a bearer token for an existing user.
func (a *testApp) login(t *testing.T, username, password string) string {
	t.Helper()
	resp := a.do(t, http.MethodPost, apiPath("/login"), "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body loginResponse
	decodeJSON(t, resp, &body)
	return body.Token
}

// createEntry posts an entry as the token's user.
func (a *testApp) createEntry(t *testing.T, token string, body map[string]any) entryResponse {
	t.Helper()
	resp := a.do(t, http.MethodPost, apiPath("/entries"), token, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created entryResponse
	decodeJSON(t, resp, &created)
	return created
}
