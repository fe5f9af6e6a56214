package httpx

import (
	"context"
	"net/http"
	"time"
)

// HealthCheck is one dependency checked by HealthHandler.
type HealthCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

// HealthHandler reports healthy only when every check passes within two seconds
func HealthHandler(checks ...HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		for _, c := range checks {
			if err := c.Ping(ctx); err != nil {
				RespondJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status":    "unhealthy",
					"component": c.Name,
					"error":     err.Error(),
				})
				return
			}
		}

		RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	}
}
