package handler

import (
	"errors"
	"net/http"

	"bloglist/internal/domain/identity"
	domainUser "bloglist/internal/domain/user"
	usecaseAuth "bloglist/internal/usecase/auth"
)

// AuthHandler exposes login and logout.
type AuthHandler struct {
	service *usecaseAuth.Service
	auth    func(http.Handler) http.Handler
}

// NewAuthHandler creates an AuthHandler. auth guards logout.
func NewAuthHandler(service *usecaseAuth.Service, auth func(http.Handler) http.Handler) *AuthHandler {
	return &AuthHandler{service: service, auth: auth}
}

// RegisterRoutes wires auth routes.
func (h *AuthHandler) RegisterRoutes(r chiRouter) {
	r.Post("/login", h.handleLogin)
	r.Post("/logout", protect(h.auth, h.handleLogout))
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := validateRequest(req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domainUser.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, domainUser.ErrInvalidCredentials)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token:    res.Token,
		Username: res.Username,
		Name:     res.Name,
	})
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	actor, _ := identity.FromContext(r.Context())
	if err := h.service.Logout(r.Context(), actor); err != nil {
		if errors.Is(err, identity.ErrUnknownActor) {
			writeUnauthorized(w, "token missing or invalid")
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Name     string `json:"name"`
}
