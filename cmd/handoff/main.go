package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/menezmethod/handoff/internal/auth"
	"github.com/menezmethod/handoff/internal/config"
	"github.com/menezmethod/handoff/internal/httpmw"
	"github.com/menezmethod/handoff/internal/logging"
	"github.com/menezmethod/handoff/internal/middleware"
	"github.com/menezmethod/handoff/internal/observability"
	"github.com/menezmethod/handoff/internal/server"
	"github.com/menezmethod/handoff/internal/stats"
	"github.com/menezmethod/handoff/internal/support"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (optional, env vars work without it)")
	flag.Parse()

	// Load configuration: defaults -> YAML file -> env vars.
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(os.Stdout, logging.ParseLevel(cfg.Log.Level), cfg.Log.Format, cfg.Log.CloudFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load registered users.
	store, err := auth.LoadStore(cfg.Auth.UsersFile, cfg.Auth.BcryptCost)
	if err != nil {
		logger.Error("failed to load users", "err", err)
		os.Exit(1)
	}
	logger.Info("users loaded", "count", store.Count())

	chain, err := middleware.NewLoginChain(store, cfg.Throttle.RequestsPerMinute, nil, cfg.Auth.AdminEmails...)
	if err != nil {
		logger.Error("failed to build login chain", "err", err)
		os.Exit(1)
	}

	recorder, closeStats, err := newRecorder(ctx, cfg.Stats, logger)
	if err != nil {
		logger.Error("failed to set up login stats", "err", err)
		os.Exit(1)
	}
	defer closeStats()

	authSrv := auth.NewServer(store, logger, auth.WithRecorder(recorder))
	authSrv.SetMiddleware(chain.Head)

	secret := cfg.Auth.TokenSecret
	if secret == "" {
		secret = randomSecret()
		logger.Warn("auth.token_secret not set, using a random secret; sessions will not survive a restart")
	}
	tokens, err := auth.NewTokenIssuer(secret, cfg.Auth.TokenIssuer, cfg.Auth.TokenTTL)
	if err != nil {
		logger.Error("failed to create token issuer", "err", err)
		os.Exit(1)
	}

	limiter := httpmw.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	limiter.StartJanitor(ctx, time.Minute)

	deps := server.Deps{
		Auth:    authSrv,
		Tokens:  tokens,
		Roles:   chain.Roles,
		Desk:    support.NewDesk(support.DefaultChain(), nil, logger),
		Limiter: limiter,
	}
	if cfg.Throttle.ExitOnAbort {
		deps.OnAbort = func(err error) {
			logger.Error("login throttle tripped, stopping server", "err", err)
			stop()
		}
	}

	srv := server.New(cfg, deps, logger)

	// Optional OpenTelemetry tracing: wrap handler so all requests are traced.
	tp, err := observability.Setup(ctx, cfg.Observability)
	if err != nil {
		logger.Error("otel tracer provider failed", "err", err)
		os.Exit(1)
	}
	if tp != nil {
		srv.Handler = observability.HTTPHandler(srv.Handler, cfg.Observability.OTelServiceName)
		logger.Info("opentelemetry tracing enabled", "endpoint", cfg.Observability.OTelEndpoint)
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", cfg.Server.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serveErr:
		logger.Error("server error", "err", err)
		exitCode = 1
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := tp.Shutdown(shutdownCtx); err != nil {
		logger.Warn("otel shutdown failed", "err", err)
	}
	server.Shutdown(shutdownCtx, srv, logger)
	logger.Info("server stopped")

	if exitCode != 0 {
		closeStats()
		os.Exit(exitCode)
	}
}

// newRecorder returns the configured login stats recorder and a function
// releasing its resources.
func newRecorder(ctx context.Context, cfg config.Stats, logger *slog.Logger) (stats.Recorder, func(), error) {
	if cfg.Backend != "redis" {
		return stats.NewMemory(), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, err
	}
	logger.Info("login stats recorded in redis", "addr", cfg.RedisAddr, "prefix", cfg.RedisPrefix)

	rec := stats.NewRedis(rdb, stats.WithPrefix(cfg.RedisPrefix), stats.WithTTL(cfg.RedisTTL))
	return rec, func() { _ = rdb.Close() }, nil
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
