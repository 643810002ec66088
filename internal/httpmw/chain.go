// Package httpmw provides HTTP middleware for request IDs, panic recovery,
// metrics, logging, session-token authentication and per-client rate
// limiting.
package httpmw

import (
	"log/slog"
	"net/http"
)

// Middleware wraps an http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Chain wraps h so that mw[0] sees the request first and the response last.
func Chain(h http.Handler, mw ...Middleware) http.Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}

// Stack returns the middleware every API route runs behind, outermost
// first:
//
//	RequestID → Recover → Metrics → Logging → RateLimit → handler
//
// The request ID is assigned before anything can fail, so panics, log
// lines and 429 responses all carry it. Rejected requests are still
// counted and logged.
func Stack(logger *slog.Logger, rl *RateLimiter) []Middleware {
	return []Middleware{
		RequestID(),
		Recover(logger),
		Metrics(),
		Logging(logger),
		RateLimit(rl),
	}
}
