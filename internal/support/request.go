// Package support routes customer-service requests through a chain of
// handlers. Each handler either handles a request completely or forwards it
// to the next handler. A chain that runs out of handlers reports that the
// request cannot be processed.
package support

// Request types understood by the default chain.
const (
	TypeGeneral   = "general"
	TypeTechnical = "technical"
	TypeComplaint = "complaint"
)

// Request is a customer-service request. It is immutable once created.
type Request struct {
	typ     string
	content string
}

// NewRequest creates a request of the given type.
func NewRequest(typ, content string) Request {
	return Request{typ: typ, content: content}
}

// Type returns the request type used by handler predicates.
func (r Request) Type() string { return r.typ }

// Content returns the free-form request body.
func (r Request) Content() string { return r.content }
