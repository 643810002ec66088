package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/menezmethod/handoff/internal/apierror"
	"github.com/menezmethod/handoff/internal/httpmw"
)

// SessionResponse describes the caller's verified session.
type SessionResponse struct {
	Email     string    `json:"email"`
	Admin     bool      `json:"admin"`
	ID        string    `json:"id"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Session returns the claims of the caller's session token. It must run
// behind httpmw.Auth.
//
//	GET /v1/session
func Session() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := httpmw.ClaimsFromContext(r.Context())
		if claims == nil {
			apierror.Write(w, apierror.Unauthorized("Missing session."))
			return
		}

		resp := SessionResponse{
			Email: claims.Subject,
			Admin: claims.Admin,
			ID:    claims.ID,
		}
		if claims.IssuedAt != nil {
			resp.IssuedAt = claims.IssuedAt.Time
		}
		if claims.ExpiresAt != nil {
			resp.ExpiresAt = claims.ExpiresAt.Time
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
