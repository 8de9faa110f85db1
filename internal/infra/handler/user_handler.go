package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	domainEntry "bloglist/internal/domain/entry"
	domainUser "bloglist/internal/domain/user"
	usecaseUser "bloglist/internal/usecase/user"
)

// UserHandler exposes registration and the user listing.
type UserHandler struct {
	service *usecaseUser.Service
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(service *usecaseUser.Service) *UserHandler {
	return &UserHandler{service: service}
}

// RegisterRoutes wires user routes.
func (h *UserHandler) RegisterRoutes(r chiRouter) {
	r.Get("/users", h.handleList)
	r.Post("/users", h.handleRegister)
}

func (h *UserHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := validateRequest(req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	u, err := h.service.Register(r.Context(), usecaseUser.RegisterParams{
		Username: req.Username,
		Name:     req.Name,
		Password: req.Password,
	})
	switch {
	case err == nil:
	case errors.Is(err, domainUser.ErrInvalidUser):
		writeError(w, http.StatusBadRequest, err)
		return
	case errors.Is(err, domainUser.ErrUsernameTaken):
		writeError(w, http.StatusConflict, domainUser.ErrUsernameTaken)
		return
	default:
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(usecaseUser.Profile{User: u}))
}

func (h *UserHandler) handleList(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	resp := make([]userResponse, 0, len(profiles))
	for _, p := range profiles {
		resp = append(resp, toUserResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

func toUserResponse(p usecaseUser.Profile) userResponse {
	resp := userResponse{
		ID:       p.User.ID,
		Username: p.User.Username,
		Name:     p.User.Name,
		Entries:  make([]userEntryResponse, 0, len(p.Entries)),
	}
	for _, e := range p.Entries {
		resp.Entries = append(resp.Entries, toUserEntryResponse(e))
	}
	return resp
}

func toUserEntryResponse(e *domainEntry.Entry) userEntryResponse {
	resp := userEntryResponse{
		ID:    e.ID,
		Title: e.Title,
		URL:   e.URL,
		Likes: e.Likes,
	}
	if e.Author != "" {
		author := e.Author
		resp.Author = &author
	}
	return resp
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Name     string `json:"name"`
	Password string `json:"password" validate:"required,min=3,max=72"`
}

type userResponse struct {
	ID       uuid.UUID           `json:"id"`
	Username string              `json:"username"`
	Name     string              `json:"name"`
	Entries  []userEntryResponse `json:"entries"`
}

type userEntryResponse struct {
	ID     domainEntry.ID `json:"id"`
	Title  string         `json:"title"`
	Author *string        `json:"author,omitempty"`
	URL    string         `json:"url"`
	Likes  int            `json:"likes"`
}
