package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	domainEntry "bloglist/internal/domain/entry"
	"bloglist/internal/domain/identity"
	usecaseEntry "bloglist/internal/usecase/entry"
)

var errInvalidEntryID = errors.New("malformatted id")

// EntryHandler exposes entry endpoints.
type EntryHandler struct {
	service *usecaseEntry.Service
	auth    func(http.Handler) http.Handler
}

// NewEntryHandler creates a new EntryHandler. auth guards create and delete.
func NewEntryHandler(service *usecaseEntry.Service, auth func(http.Handler) http.Handler) *EntryHandler {
	return &EntryHandler{service: service, auth: auth}
}

// RegisterRoutes registers entry handlers on the router.
func (h *EntryHandler) RegisterRoutes(r chiRouter) {
	r.Get("/entries", h.handleList)
	r.Get("/entries/stats", h.handleStats)
	r.Post("/entries", protect(h.auth, h.handleCreate))
	r.Put("/entries/{id}", h.handleUpdate)
	r.Delete("/entries/{id}", protect(h.auth, h.handleDelete))
}

func (h *EntryHandler) handleList(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	resp := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, toEntryResponse(e))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *EntryHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	resp := statsResponse{
		Count:      stats.Count,
		TotalLikes: stats.TotalLikes,
		MostLikes:  stats.MostLikes,
	}
	if stats.Favorite != nil {
		fav := toEntryResponse(stats.Favorite)
		resp.Favorite = &fav
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *EntryHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createEntryRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	actor, _ := identity.FromContext(r.Context())
	created, err := h.service.Create(r.Context(), actor, domainEntry.CreateInput{
		Title:  req.Title,
		Author: req.Author,
		URL:    req.URL,
		Likes:  req.Likes,
	})
	if err != nil {
		writeEntryError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toEntryResponse(created))
}

func (h *EntryHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := entryIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var req updateEntryRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	updated, err := h.service.Update(r.Context(), id, domainEntry.Patch{
		Title:  req.Title,
		Author: req.Author,
		URL:    req.URL,
		Likes:  req.Likes,
	})
	if err != nil {
		writeEntryError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toEntryResponse(updated))
}

func (h *EntryHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := entryIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	actor, _ := identity.FromContext(r.Context())
	if err := h.service.Delete(r.Context(), actor, id); err != nil {
		writeEntryError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func entryIDParam(r *http.Request) (domainEntry.ID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, errInvalidEntryID
	}
	return id, nil
}

// writeEntryError maps service errors onto status codes using the sentinel's message.
func writeEntryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domainEntry.ErrMissingTitleOrURL):
		writeError(w, http.StatusBadRequest, domainEntry.ErrMissingTitleOrURL)
	case errors.Is(err, domainEntry.ErrNegativeLikes):
		writeError(w, http.StatusBadRequest, domainEntry.ErrNegativeLikes)
	case errors.Is(err, domainEntry.ErrInvalidEntry):
		writeError(w, http.StatusBadRequest, domainEntry.ErrInvalidEntry)
	case errors.Is(err, identity.ErrUnknownActor):
		writeUnauthorized(w, "token missing or invalid")
	case errors.Is(err, domainEntry.ErrNotOwner):
		writeError(w, http.StatusForbidden, domainEntry.ErrNotOwner)
	case errors.Is(err, domainEntry.ErrNotFound):
		writeError(w, http.StatusNotFound, domainEntry.ErrNotFound)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func toEntryResponse(e *domainEntry.Entry) entryResponse {
	resp := entryResponse{
		ID:    e.ID,
		Title: e.Title,
		URL:   e.URL,
		Likes: e.Likes,
	}
	if e.Author != "" {
		author := e.Author
		resp.Author = &author
	}
	if !e.Owner.IsZero() {
		resp.User = &ownerResponse{
			ID:       e.Owner.ID,
			Username: e.Owner.Username,
			Name:     e.Owner.Name,
		}
	}
	return resp
}

type createEntryRequest struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url"`
	Likes  *int   `json:"likes"`
}

type updateEntryRequest struct {
	Title  *string `json:"title"`
	Author *string `json:"author"`
	URL    *string `json:"url"`
	Likes  *int    `json:"likes"`
}

type entryResponse struct {
	ID     domainEntry.ID `json:"id"`
	Title  string         `json:"title"`
	Author *string        `json:"author,omitempty"`
	URL    string         `json:"url"`
	Likes  int            `json:"likes"`
	User   *ownerResponse `json:"user,omitempty"`
}

type ownerResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Name     string    `json:"name"`
}

type statsResponse struct {
	Count      int            `json:"count"`
	TotalLikes int            `json:"total_likes"`
	MostLikes  int            `json:"most_likes"`
	Favorite   *entryResponse `json:"favorite,omitempty"`
}
