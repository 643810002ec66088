package stats

import (
	"context"
	"sync"
)

// Memory keeps per-outcome totals in process memory.
type Memory struct {
	mu     sync.Mutex
	totals map[Outcome]int64
}

// NewMemory returns an empty Memory recorder.
func NewMemory() *Memory {
	return &Memory{totals: make(map[Outcome]int64)}
}

// Record implements Recorder.
func (m *Memory) Record(_ context.Context, ev Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totals[ev.Outcome]++
	return nil
}

// Total returns how many events with outcome o were recorded.
func (m *Memory) Total(o Outcome) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totals[o]
}

// Totals returns a copy of all totals.
func (m *Memory) Totals() map[Outcome]int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[Outcome]int64, len(m.totals))
	for k, v := range m.totals {
		out[k] = v
	}
	return out
}
