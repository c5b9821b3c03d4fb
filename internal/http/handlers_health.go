package httpx

import (
	"context"
	"net/http"
	"time"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck is one dependency probed by /healthz.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type healthReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// healthHandler reports liveness plus the result of each check.
// Any failing check turns the response into a 503.
func healthHandler(checks []HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := healthReport{Status: "ok"}
		status := http.StatusOK

		if len(checks) > 0 {
			ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
			defer cancel()

			report.Checks = make(map[string]string, len(checks))
			for _, c := range checks {
				if c.Check == nil {
					continue
				}
				if err := c.Check(ctx); err != nil {
					report.Checks[c.Name] = err.Error()
					report.Status = "degraded"
					status = http.StatusServiceUnavailable
					continue
				}
				report.Checks[c.Name] = "ok"
			}
		}

		w.Header().Set("Cache-Control", "no-store")
		if r.Method == http.MethodHead {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			return
		}
		WriteJSON(w, status, report)
	}
}
