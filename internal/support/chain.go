package support

import "reflect"

// Build links handlers in the given order and returns the head of the
// chain. An empty list yields a bare Link, which reports every request as
// unprocessed. The last handler keeps whatever it was already linked to.
// Build links nothing when it returns an error.
func Build(handlers ...Handler) (Handler, error) {
	if len(handlers) == 0 {
		return &Link{}, nil
	}

	members := make(map[any]struct{}, len(handlers))
	for _, h := range handlers {
		if h == nil {
			return nil, ErrNilLink
		}
		id, ok := identity(h)
		if !ok {
			continue
		}
		if _, dup := members[id]; dup {
			return nil, ErrCycle
		}
		members[id] = struct{}{}
	}

	// The tail already hanging off the last handler must not lead back into
	// the chain being built.
	if lk, ok := handlers[len(handlers)-1].(interface{ link() *Link }); ok {
		for h := lk.link().next; h != nil; {
			if id, ok := identity(h); ok {
				if _, in := members[id]; in {
					return nil, ErrCycle
				}
			}
			next, ok := h.(interface{ link() *Link })
			if !ok {
				break
			}
			h = next.link().next
		}
	}

	prev := make([]Handler, len(handlers)-1)
	for i := range prev {
		if lk, ok := handlers[i].(interface{ link() *Link }); ok {
			prev[i] = lk.link().next
		}
	}
	for i := 0; i < len(handlers)-1; i++ {
		if err := link(handlers[i], handlers[i+1]); err != nil {
			for j := 0; j < i; j++ {
				if lk, ok := handlers[j].(interface{ link() *Link }); ok {
					lk.link().next = prev[j]
				}
			}
			return nil, err
		}
	}
	return handlers[0], nil
}

// identity returns a key that is equal for the same handler and never
// panics when hashed: the embedded *Link, or the pointer itself.
func identity(h Handler) (any, bool) {
	if lk, ok := h.(interface{ link() *Link }); ok {
		return lk.link(), true
	}
	if v := reflect.ValueOf(h); v.Kind() == reflect.Pointer {
		return v.Pointer(), true
	}
	return nil, false
}

// link converts the SetNext cycle panic into ErrCycle.
func link(h, next Handler) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if r == ErrCycle {
				err = ErrCycle
				return
			}
			panic(r)
		}
	}()
	h.SetNext(next)
	return nil
}

// DefaultChain returns general → technical → complaints → escalation.
func DefaultChain() Handler {
	general := NewGeneralHandler()
	general.
		SetNext(NewTechnicalHandler()).
		SetNext(NewComplaintsHandler()).
		SetNext(NewEscalationHandler())
	return general
}
