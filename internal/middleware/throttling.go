package middleware

import (
	"context"
	"sync"
	"time"
)

// ThrottleWindow is the length of the throttling counter window.
const ThrottleWindow = 60 * time.Second

// Throttling counts every check in a fixed one-minute window. Going over
// the limit is fatal: Check returns a *FatalError wrapping
// ErrRateLimitExceeded instead of a plain rejection.
type Throttling struct {
	Link

	limit int
	clock Clock

	mu          sync.Mutex
	windowStart time.Time
	count       int
}

// NewThrottling allows requestsPerMinute checks per window. A nil clock
// uses the system clock.
func NewThrottling(requestsPerMinute int, clock Clock) *Throttling {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Throttling{
		limit:       requestsPerMinute,
		clock:       clock,
		windowStart: clock.Now(),
	}
}

const throttlingName = "ThrottlingMiddleware"

// Limit returns the configured per-minute limit.
func (m *Throttling) Limit() int { return m.limit }

// Check implements Middleware. The throttle runs before the rest of the
// chain.
func (m *Throttling) Check(ctx context.Context, c Credentials) (bool, error) {
	if !m.admit() {
		ReportDecision(ctx, throttlingName, "Request limit exceeded!")
		decisionsTotal.WithLabelValues(throttlingName, decisionAbort).Inc()
		ThrottleAborts.Inc()
		return false, &FatalError{Link: throttlingName, Err: ErrRateLimitExceeded}
	}

	decisionsTotal.WithLabelValues(throttlingName, decisionForward).Inc()
	return m.Forward(ctx, c)
}

// admit resets an elapsed window, counts this check and reports whether the
// count is still within the limit.
func (m *Throttling) admit() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	if now.After(m.windowStart.Add(ThrottleWindow)) {
		m.count = 0
		m.windowStart = now
	}

	m.count++
	return m.count <= m.limit
}
