package handler

import (
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouterConfig bundles handler dependencies.
type RouterConfig struct {
	EntryHandler  *EntryHandler
	UserHandler   *UserHandler
	AuthHandler   *AuthHandler
	HealthHandler *HealthHandler

	APIBasePath string
	Middlewares []func(http.Handler) http.Handler
	// OpenAPIHandler serves the API description under the base path.
	OpenAPIHandler http.Handler
	// PrometheusHandler is mounted at /metrics outside the base path.
	PrometheusHandler http.Handler
}

// NewRouter wires handlers and middlewares.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Compress(5))

	for _, mw := range cfg.Middlewares {
		if mw == nil {
			continue
		}
		r.Use(mw)
	}

	if cfg.PrometheusHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.PrometheusHandler)
	}

	r.Route(mountPoint(cfg.APIBasePath), func(api chi.Router) {
		if cfg.EntryHandler != nil {
			cfg.EntryHandler.RegisterRoutes(api)
		}
		if cfg.UserHandler != nil {
			cfg.UserHandler.RegisterRoutes(api)
		}
		if cfg.AuthHandler != nil {
			cfg.AuthHandler.RegisterRoutes(api)
		}
		if cfg.HealthHandler != nil {
			api.Get("/health", cfg.HealthHandler.ServeHTTP)
		}
		if cfg.OpenAPIHandler != nil {
			api.Method(http.MethodGet, "/openapi.yaml", cfg.OpenAPIHandler)
		}
	})
	return r
}

// normalizeAPIBasePath turns "api/", " /api " and "/api" into "/api".
// Blank input yields "".
func normalizeAPIBasePath(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	return path.Clean("/" + trimmed)
}

func mountPoint(base string) string {
	if p := normalizeAPIBasePath(base); p != "" {
		return p
	}
	return "/"
}
