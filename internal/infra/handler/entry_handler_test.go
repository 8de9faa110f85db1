package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryHandler_Create(t *testing.T) {
	app := newTestApp(t)
	rootID := app.register(t, "root", "Superuser", "sekret")
	token := app.login(t, "root", "sekret")

	created := app.createEntry(t, token, map[string]any{
		"title":  "Go To Statement Considered Harmful",
		"author": "Edsger W. Dijkstra",
		"url":    "http://www.u.arizona.edu/~rubinson/copyright_violations/Go_To_Considered_Harmful.html",
	})

	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, 0, created.Likes)
	require.NotNil(t, created.Author)
	assert.Equal(t, "Edsger W. Dijkstra", *created.Author)
	require.NotNil(t, created.User)
	assert.Equal(t, rootID, created.User.ID)
	assert.Equal(t, "root", created.User.Username)

	var users []userResponse
	decodeJSON(t, app.get(t, apiPath("/users")), &users)
	require.Len(t, users, 1)
	require.Len(t, users[0].Entries, 1)
	assert.Equal(t, created.ID, users[0].Entries[0].ID)
}

func TestEntryHandler_Create_Errors(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "root", "Superuser", "sekret")
	token := app.login(t, "root", "sekret")

	tests := []struct {
		name       string
		token      string
		body       any
		wantStatus int
		wantError  string
	}{
		{
			name:       "missing token",
			body:       map[string]any{"title": "t", "url": "http://u"},
			wantStatus: http.StatusUnauthorized,
			wantError:  "UNAUTHORIZED",
		},
		{
			name:       "forged token",
			token:      "not-a-jwt",
			body:       map[string]any{"title": "t", "url": "http://u"},
			wantStatus: http.StatusUnauthorized,
			wantError:  "UNAUTHORIZED",
		},
		{
			name:       "missing title",
			token:      token,
			body:       map[string]any{"url": "http://u"},
			wantStatus: http.StatusBadRequest,
			wantError:  "title or url missing",
		},
		{
			name:       "blank url",
			token:      token,
			body:       map[string]any{"title": "t", "url": "   "},
			wantStatus: http.StatusBadRequest,
			wantError:  "title or url missing",
		},
		{
			name:       "negative likes",
			token:      token,
			body:       map[string]any{"title": "t", "url": "http://u", "likes": -1},
			wantStatus: http.StatusBadRequest,
			wantError:  "likes must be a non-negative integer",
		},
		{
			name:       "malformed json",
			token:      token,
			body:       `{"title":`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := app.do(t, http.MethodPost, apiPath("/entries"), tt.token, tt.body)
			body := assertErrorResponse(t, resp, tt.wantStatus)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, body["error"])
			}
		})
	}

	var entries []entryResponse
	decodeJSON(t, app.get(t, apiPath("/entries")), &entries)
	assert.Empty(t, entries)
}

func TestEntryHandler_Delete(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "root", "Superuser", "sekret")
	app.register(t, "mluukkai", "Matti Luukkainen", "salainen")
	rootToken := app.login(t, "root", "sekret")
	otherToken := app.login(t, "mluukkai", "salainen")

	created := app.createEntry(t, rootToken, map[string]any{"title": "React patterns", "url": "https://reactpatterns.com/", "likes": 7})
	path := apiPath("/entries/" + created.ID.String())

	resp := app.do(t, http.MethodDelete, path, otherToken, nil)
	body := assertErrorResponse(t, resp, http.StatusForbidden)
	assert.Equal(t, "cant delete other users blogs", body["error"])

	resp = app.do(t, http.MethodDelete, path, "", nil)
	assertErrorResponse(t, resp, http.StatusUnauthorized)

	resp = app.do(t, http.MethodDelete, path, rootToken, nil)
	resp.Body.Close()
	assertStatus(t, resp, http.StatusNoContent)

	var entries []entryResponse
	decodeJSON(t, app.get(t, apiPath("/entries")), &entries)
	assert.Empty(t, entries)

	// the owner's list keeps the id of the deleted entry
	assert.Equal(t, []uuid.UUID{created.ID}, app.store.users[0].Entries)

	resp = app.do(t, http.MethodDelete, path, rootToken, nil)
	body = assertErrorResponse(t, resp, http.StatusNotFound)
	assert.Equal(t, "entry not found", body["error"])

	resp = app.do(t, http.MethodDelete, apiPath("/entries/not-an-id"), rootToken, nil)
	assertErrorResponse(t, resp, http.StatusBadRequest)
}

func TestEntryHandler_Update(t *testing.T) {
	app := newTestApp(t)
	rootID := app.register(t, "root", "Superuser", "sekret")
	token := app.login(t, "root", "sekret")
	created := app.createEntry(t, token, map[string]any{"title": "Canonical string reduction", "url": "http://www.cs.utexas.edu/~EWD/", "likes": 12})
	path := apiPath("/entries/" + created.ID.String())

	resp := app.do(t, http.MethodPut, path, "", map[string]any{"likes": 13})
	assertStatus(t, resp, http.StatusOK)
	var updated entryResponse
	decodeJSON(t, resp, &updated)
	assert.Equal(t, 13, updated.Likes)
	assert.Equal(t, created.Title, updated.Title)
	require.NotNil(t, updated.User)
	assert.Equal(t, rootID, updated.User.ID)

	resp = app.do(t, http.MethodPut, path, "", map[string]any{"likes": -5})
	body := assertErrorResponse(t, resp, http.StatusBadRequest)
	assert.Equal(t, "likes must be a non-negative integer", body["error"])

	resp = app.do(t, http.MethodPut, apiPath("/entries/"+uuid.NewString()), "", map[string]any{"likes": 1})
	assertErrorResponse(t, resp, http.StatusNotFound)

	resp = app.do(t, http.MethodPut, path, "", `{"likes":"many"}`)
	assertErrorResponse(t, resp, http.StatusBadRequest)
}

func TestEntryHandler_Stats(t *testing.T) {
	app := newTestApp(t)

	var empty statsResponse
	resp := app.get(t, apiPath("/entries/stats"))
	assertStatus(t, resp, http.StatusOK)
	decodeJSON(t, resp, &empty)
	assert.Zero(t, empty.Count)
	assert.Nil(t, empty.Favorite)

	app.register(t, "root", "Superuser", "sekret")
	token := app.login(t, "root", "sekret")
	app.createEntry(t, token, map[string]any{"title": "First class tests", "url": "http://blog.cleancoder.com/", "likes": 3})
	app.createEntry(t, token, map[string]any{"title": "TDD harms architecture", "url": "http://blog.cleancoder.com/tdd", "likes": 67})

	var stats statsResponse
	decodeJSON(t, app.get(t, apiPath("/entries/stats")), &stats)
	assert.Equal(t, 2, stats.Count)
	assert.Equal(t, 70, stats.TotalLikes)
	assert.Equal(t, 67, stats.MostLikes)
	require.NotNil(t, stats.Favorite)
	assert.Equal(t, "TDD harms architecture", stats.Favorite.Title)
}

func TestEntryHandler_List(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "root", "Superuser", "sekret")
	token := app.login(t, "root", "sekret")
	app.createEntry(t, token, map[string]any{"title": "a", "url": "http://a"})
	app.createEntry(t, token, map[string]any{"title": "b", "url": "http://b"})

	resp := app.get(t, apiPath("/entries"))
	assertStatus(t, resp, http.StatusOK)
	assertContentType(t, resp, "application/json")

	var entries []entryResponse
	decodeJSON(t, resp, &entries)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].Title)
	assert.Equal(t, "b", entries[1].Title)
	assert.Nil(t, entries[0].Author)
}
