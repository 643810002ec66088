package middleware

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const reporterContextKey contextKey = "reporter"

// DecisionReporter receives one human-readable line per chain decision.
type DecisionReporter interface {
	Report(link, message string)
}

// DecisionReporterFunc adapts a function to DecisionReporter.
type DecisionReporterFunc func(link, message string)

// Report implements DecisionReporter.
func (f DecisionReporterFunc) Report(link, message string) { f(link, message) }

// WriterReporter prints "<link>: <message>" lines to an io.Writer.
type WriterReporter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterReporter returns a DecisionReporter writing to w.
func NewWriterReporter(w io.Writer) *WriterReporter {
	return &WriterReporter{w: w}
}

// Report implements DecisionReporter.
func (r *WriterReporter) Report(link, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = fmt.Fprintf(r.w, "%s: %s\n", link, message)
}

// WithDecisionReporter returns a context whose chain decisions are sent to r.
func WithDecisionReporter(ctx context.Context, r DecisionReporter) context.Context {
	return context.WithValue(ctx, reporterContextKey, r)
}

// DecisionReporterFromContext returns the reporter set by WithDecisionReporter, or nil.
func DecisionReporterFromContext(ctx context.Context) DecisionReporter {
	r, _ := ctx.Value(reporterContextKey).(DecisionReporter)
	return r
}

// ReportDecision sends a decision line to the context's reporter, if any.
func ReportDecision(ctx context.Context, link, message string) {
	if r := DecisionReporterFromContext(ctx); r != nil {
		r.Report(link, message)
	}
}
