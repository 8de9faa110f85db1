package handler

import (
	"context"
	"net/http"
	"time"
)

// HealthChecker defines dependencies that can be health-checked.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler handles /health endpoint. A nil Cache means caching is disabled.
type HealthHandler struct {
	DB    HealthChecker
	Cache HealthChecker
}

type healthComponent struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// ServeHTTP responds with dependency status.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	components := []healthComponent{}

	for _, dep := range []struct {
		name    string
		checker HealthChecker
	}{
		{name: "database", checker: h.DB},
		{name: "redis", checker: h.Cache},
	} {
		if dep.checker == nil {
			continue
		}
		c := healthComponent{Name: dep.name, Status: "healthy"}
		if err := dep.checker.HealthCheck(ctx); err != nil {
			status = http.StatusServiceUnavailable
			c.Status = "unhealthy"
			c.Error = err.Error()
		}
		components = append(components, c)
	}

	writeJSON(w, status, map[string]any{
		"status":     statusLabel(status),
		"components": components,
		"checked_at": time.Now().UTC(),
	})
}

func statusLabel(code int) string {
	if code == http.StatusOK {
		return "healthy"
	}
	return "unhealthy"
}
