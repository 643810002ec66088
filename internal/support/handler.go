package support

import "errors"

// UnprocessedMessage is reported when a request reaches the end of a chain
// without being handled.
const UnprocessedMessage = "Request cannot be processed."

var (
	// ErrCycle is returned when a handler appears twice in a chain.
	ErrCycle = errors.New("support: handler linked more than once")
	// ErrNilLink is returned when a chain is built with a nil handler.
	ErrNilLink = errors.New("support: nil handler")
)

// Outcome describes what happened to a request.
type Outcome struct {
	// Handler is the name of the handler that took the request. It is
	// empty when no handler did.
	Handler string
	Handled bool
	Message string
}

// Unprocessed returns the outcome of a request that no handler accepted.
func Unprocessed() Outcome {
	return Outcome{Message: UnprocessedMessage}
}

// Handler handles a request or forwards it to the next handler.
type Handler interface {
	Handle(req Request) Outcome
	// SetNext links next after this handler and returns next, so chains can
	// be written as a.SetNext(b).SetNext(c).
	SetNext(next Handler) Handler
}

// Link holds the next handler and supplies the default forwarding
// behavior. Concrete handlers embed it and call Forward when they decline
// a request. A bare *Link is itself a Handler that forwards everything.
type Link struct {
	next Handler
}

// SetNext links next after l. It panics if doing so would close a cycle.
func (l *Link) SetNext(next Handler) Handler {
	for h := next; h != nil; {
		lk, ok := h.(interface{ link() *Link })
		if !ok {
			break
		}
		if lk.link() == l {
			panic(ErrCycle)
		}
		h = lk.link().next
	}
	l.next = next
	return next
}

// Forward passes req to the next handler, or reports it as unprocessed
// when there is none.
func (l *Link) Forward(req Request) Outcome {
	if l.next == nil {
		return Unprocessed()
	}
	return l.next.Handle(req)
}

// Handle forwards req unchanged.
func (l *Link) Handle(req Request) Outcome {
	return l.Forward(req)
}

// Next returns the linked handler, or nil.
func (l *Link) Next() Handler { return l.next }

func (l *Link) link() *Link { return l }
