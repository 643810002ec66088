package support

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "handoff",
	Subsystem: "support",
	Name:      "requests_total",
	Help:      "Support requests by the handler that took them (none when unprocessed).",
}, []string{"handler"})

// SampleRequests are the requests replayed by Desk.RunSamples.
var SampleRequests = []Request{
	NewRequest(TypeGeneral, "Information about new products"),
	NewRequest(TypeTechnical, "Internet connection problems"),
	NewRequest(TypeComplaint, "Unsatisfactory service"),
}

// Desk submits requests to a chain and writes exactly one line per request.
type Desk struct {
	head   Handler
	out    io.Writer
	logger *slog.Logger
}

// NewDesk returns a Desk that sends requests to head and writes outcomes to
// out. A nil out discards them and a nil logger uses slog.Default.
func NewDesk(head Handler, out io.Writer, logger *slog.Logger) *Desk {
	if out == nil {
		out = io.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Desk{head: head, out: out, logger: logger}
}

// Submit runs req through the chain and reports the outcome.
func (d *Desk) Submit(req Request) Outcome {
	outcome := d.head.Handle(req)

	label := outcome.Handler
	if !outcome.Handled {
		label = "none"
	}
	requestsTotal.WithLabelValues(label).Inc()

	if _, err := fmt.Fprintln(d.out, outcome.Message); err != nil {
		d.logger.Error("write support outcome", "err", err)
	}
	d.logger.Debug("support request processed",
		"type", req.Type(),
		"handler", label,
		"handled", outcome.Handled,
	)
	return outcome
}

// RunSamples submits SampleRequests, each under a "Processing request N:"
// header followed by a blank line.
func (d *Desk) RunSamples() []Outcome {
	outcomes := make([]Outcome, 0, len(SampleRequests))
	for i, req := range SampleRequests {
		fmt.Fprintf(d.out, "Processing request %d:\n", i+1)
		outcomes = append(outcomes, d.Submit(req))
		fmt.Fprintln(d.out)
	}
	return outcomes
}
