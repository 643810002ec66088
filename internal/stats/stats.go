// Package stats records login outcomes for reporting.
//
// Recording is best effort: callers log a failed Record and carry on, it
// never changes the outcome of a login.
package stats

import (
	"context"
	"time"
)

// Outcome is the result of one login attempt.
type Outcome string

const (
	Accepted Outcome = "accepted"
	Rejected Outcome = "rejected"
	Aborted  Outcome = "aborted"
)

// Event is one recorded login attempt.
type Event struct {
	Outcome Outcome
	At      time.Time
}

// Recorder stores login events.
type Recorder interface {
	Record(ctx context.Context, ev Event) error
}

// Nop discards every event.
type Nop struct{}

// Record implements Recorder.
func (Nop) Record(context.Context, Event) error { return nil }
