package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/menezmethod/handoff/internal/apierror"
	"github.com/menezmethod/handoff/internal/middleware"
)

// Authenticator runs credentials through the login chain.
type Authenticator interface {
	LogIn(ctx context.Context, c middleware.Credentials) (bool, error)
}

// TokenIssuer issues session tokens for accepted logins.
type TokenIssuer interface {
	Issue(email string, admin bool) (string, time.Time, error)
}

// AdminChecker reports whether an email is an admin identity.
type AdminChecker interface {
	IsAdmin(email string) bool
}

// LoginRequest is the body of POST /v1/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned for an accepted login. Decisions lists the
// "<link>: <message>" lines the chain reported.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Admin     bool      `json:"admin"`
	Decisions []string  `json:"decisions,omitempty"`
}

// Login handles login attempts. A tripped throttle answers 429 and calls
// onAbort, when set, with the fatal error.
//
//	POST /v1/login
func Login(a Authenticator, tokens TokenIssuer, admins AdminChecker, onAbort func(error), logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apierror.Write(w, apierror.InvalidRequest("Invalid JSON in request body: "+err.Error()))
			return
		}

		req.Email = strings.TrimSpace(req.Email)
		if req.Email == "" {
			apierror.Write(w, apierror.InvalidParam("email", "email is required"))
			return
		}

		var (
			mu        sync.Mutex
			decisions []string
		)
		ctx := middleware.WithDecisionReporter(r.Context(), middleware.DecisionReporterFunc(func(link, message string) {
			mu.Lock()
			decisions = append(decisions, link+": "+message)
			mu.Unlock()
		}))

		ok, err := a.LogIn(ctx, middleware.Credentials{Email: req.Email, Password: req.Password})
		switch {
		case middleware.IsFatal(err):
			logger.Error("login throttle tripped", "err", err)
			apierror.Write(w, apierror.LoginThrottled())
			if onAbort != nil {
				onAbort(err)
			}
			return
		case err != nil:
			logger.Warn("login interrupted", "err", err)
			apierror.Write(w, apierror.Unavailable("Login could not be completed."))
			return
		case !ok:
			apierror.Write(w, apierror.InvalidCredentials())
			return
		}

		admin := admins != nil && admins.IsAdmin(req.Email)
		token, expires, err := tokens.Issue(req.Email, admin)
		if err != nil {
			logger.Error("issue session token failed", "err", err)
			apierror.Write(w, apierror.Internal("Could not issue session token."))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		if err := json.NewEncoder(w).Encode(LoginResponse{
			Token:     token,
			ExpiresAt: expires,
			Admin:     admin,
			Decisions: decisions,
		}); err != nil {
			logger.Error("failed to encode login response", "err", err)
		}
	}
}
