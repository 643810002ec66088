// Package handler implements the HTTP handlers for the login and support
// chains plus the health and version endpoints.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/menezmethod/handoff/internal/version"
)

// UserCounter reports how many users can log in.
type UserCounter interface {
	Count() int
}

// Health handles liveness checks. It always returns 200 if the server is running.
// Response includes "version" so you can see which handoff build is running.
//
//	GET /health
func Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":  "ok",
			"version": version.Version,
		})
	}
}

// Ready handles readiness checks. It returns 200 only when at least one
// user is registered, since an empty store rejects every login.
//
//	GET /health/ready
func Ready(users UserCounter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if users == nil || users.Count() == 0 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"status":  "unavailable",
				"error":   "no users registered",
				"version": version.Version,
			})
			return
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":  "ready",
			"users":   users.Count(),
			"version": version.Version,
		})
	}
}

// VersionInfo handles version info. Returns JSON with version and optional commit.
//
//	GET /version
func VersionInfo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		out := map[string]string{"version": version.Version}
		if version.Commit != "" {
			out["commit"] = version.Commit
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}
