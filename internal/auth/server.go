package auth

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/menezmethod/handoff/internal/middleware"
	"github.com/menezmethod/handoff/internal/stats"
)

const tracerName = "github.com/menezmethod/handoff/internal/auth"

// Server runs logins through a credential-check chain. It is the final
// consumer of a chain that lets credentials through.
type Server struct {
	store    *Store
	recorder stats.Recorder
	logger   *slog.Logger
	now      func() time.Time

	mu    sync.RWMutex
	chain middleware.Middleware
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithRecorder sets where login outcomes are recorded.
func WithRecorder(r stats.Recorder) ServerOption {
	return func(s *Server) { s.recorder = r }
}

// NewServer returns a Server over store with no middleware configured. A nil
// logger uses slog.Default.
func NewServer(store *Store, logger *slog.Logger, opts ...ServerOption) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		store:    store,
		recorder: stats.Nop{},
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetMiddleware sets the head of the credential-check chain.
func (s *Server) SetMiddleware(m middleware.Middleware) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chain = m
}

// Store returns the credential store.
func (s *Server) Store() *Store { return s.store }

// Register adds a user to the store.
func (s *Server) Register(email, password string) error {
	return s.store.Register(email, password)
}

// LogIn runs c through the chain. It returns true when the chain accepts.
// A rejection is (false, nil); a fatal chain signal is returned as the
// error. With no chain set every login is accepted.
func (s *Server) LogIn(ctx context.Context, c middleware.Credentials) (bool, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "auth.LogIn")
	defer span.End()

	s.mu.RLock()
	chain := s.chain
	s.mu.RUnlock()
	if chain == nil {
		chain = &middleware.Link{}
	}

	ok, err := chain.Check(ctx, c)

	outcome := stats.Rejected
	switch {
	case middleware.IsFatal(err):
		outcome = stats.Aborted
		span.SetStatus(codes.Error, err.Error())
		s.logger.ErrorContext(ctx, "login chain aborted", "err", err)
	case err != nil:
		span.SetStatus(codes.Error, err.Error())
		s.logger.WarnContext(ctx, "login interrupted", "err", err)
	case ok:
		outcome = stats.Accepted
		middleware.ReportDecision(ctx, "Server", "Authorization successful!")
		s.logger.InfoContext(ctx, "login accepted", "email", c.Email)
	default:
		s.logger.DebugContext(ctx, "login rejected", "email", c.Email)
	}
	span.SetAttributes(attribute.String("auth.outcome", string(outcome)))

	if recErr := s.recorder.Record(ctx, stats.Event{Outcome: outcome, At: s.now()}); recErr != nil {
		s.logger.WarnContext(ctx, "record login stats failed", "err", recErr)
	}

	return ok && err == nil, err
}
