// Package server configures and runs the HTTP server.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/menezmethod/handoff/internal/auth"
	"github.com/menezmethod/handoff/internal/config"
	"github.com/menezmethod/handoff/internal/handler"
	"github.com/menezmethod/handoff/internal/httpmw"
	"github.com/menezmethod/handoff/internal/middleware"
	"github.com/menezmethod/handoff/internal/support"
)

// Deps are the components the routes are served from.
type Deps struct {
	Auth    *auth.Server
	Tokens  *auth.TokenIssuer
	Roles   *middleware.RoleCheck
	Desk    *support.Desk
	Limiter *httpmw.RateLimiter
	// OnAbort is called when the login throttle trips. Nil keeps serving.
	OnAbort func(error)
}

// New creates a configured *http.Server with all routes and middleware wired.
func New(cfg config.Config, deps Deps, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	rl := deps.Limiter
	if rl == nil {
		rl = httpmw.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	api := func(h http.Handler) http.Handler {
		return httpmw.Chain(h, httpmw.Stack(logger, rl)...)
	}

	// Health and metrics, not rate limited.
	mux.HandleFunc("GET /health", handler.Health())
	mux.HandleFunc("GET /health/ready", handler.Ready(deps.Auth.Store()))
	mux.HandleFunc("GET /version", handler.VersionInfo())
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.Handle("POST /v1/login", api(handler.Login(deps.Auth, deps.Tokens, deps.Roles, deps.OnAbort, logger)))
	mux.Handle("GET /v1/session", api(httpmw.Auth(deps.Tokens)(handler.Session())))
	mux.Handle("POST /v1/support", api(handler.Support(deps.Desk, logger)))

	return &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}
}

// Shutdown gracefully shuts down the server with the given context.
func Shutdown(ctx context.Context, srv *http.Server, logger *slog.Logger) {
	logger.Info("shutting down server")
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "err", err)
	}
}
