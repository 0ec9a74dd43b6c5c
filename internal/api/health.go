package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"anara-skills/registrar/internal/models/dtos"
)

// HealthChecks maps a dependency name to its probe.
type HealthChecks map[string]func(ctx context.Context) error

// HealthCheckHandler handles GET /healthCheck
func HealthCheckHandler(checks HealthChecks, upSince time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		names := make([]string, 0, len(checks))
		for name := range checks {
			names = append(names, name)
		}
		sort.Strings(names)

		statuses := make(map[string]dtos.ServiceStatus, len(checks))
		overallStatus := "ok"
		for _, name := range names {
			st := dtos.ServiceStatus{Status: "ok", Details: "connected"}
			if err := checks[name](r.Context()); err != nil {
				st = dtos.ServiceStatus{Status: "down", Details: err.Error()}
				overallStatus = "down"
			}
			statuses[name] = st
		}

		resp := dtos.HealthResponse{
			Services: statuses,
			Status:   overallStatus,
			Uptime:   time.Since(upSince).Round(time.Second).String(),
		}

		code := http.StatusOK
		if overallStatus != "ok" {
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
