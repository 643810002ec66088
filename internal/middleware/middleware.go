// Package middleware provides the credential-check chain run before a login
// is accepted.
//
// Each middleware inspects the credentials and either rejects them, accepts
// them outright, or delegates to the next middleware through Forward. A
// chain that runs out of middleware accepts: an empty chain authorizes
// everything, so at least one link is needed to impose a restriction.
//
//	head := middleware.NewThrottling(2, nil)
//	head.LinkWith(middleware.NewUserExists(store)).
//		LinkWith(middleware.NewRoleCheck())
//
// Rejections are reported as (false, nil). The only error kinds are a
// cancelled context and *FatalError, which signals that the caller must stop
// serving logins altogether.
package middleware

import (
	"context"
	"errors"
	"reflect"
)

// ErrCycle is returned (or panicked with, from LinkWith) when linking would
// make the chain loop.
var ErrCycle = errors.New("middleware: link would create a cycle")

// ErrNilLink is returned when a chain is built with a nil middleware.
var ErrNilLink = errors.New("middleware: nil link")

// Credentials is an email/password pair presented for login.
type Credentials struct {
	Email    string
	Password string
}

// Middleware checks credentials and decides whether to delegate.
type Middleware interface {
	Check(ctx context.Context, c Credentials) (bool, error)
	// LinkWith sets next as the following middleware and returns next.
	LinkWith(next Middleware) Middleware
}

// Link holds the next middleware and the default delegation. Concrete
// middleware embed it and call Forward where they want the rest of the
// chain to run. A bare *Link is a Middleware that accepts everything.
type Link struct {
	next Middleware
}

// LinkWith implements Middleware. It panics with ErrCycle if next already
// leads back to l.
func (l *Link) LinkWith(next Middleware) Middleware {
	for m := next; m != nil; {
		lk, ok := m.(interface{ link() *Link })
		if !ok {
			break
		}
		if lk.link() == l {
			panic(ErrCycle)
		}
		m = lk.link().next
	}
	l.next = next
	return next
}

// Forward runs the rest of the chain. With no next middleware it accepts.
func (l *Link) Forward(ctx context.Context, c Credentials) (bool, error) {
	if l.next == nil {
		return true, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return l.next.Check(ctx, c)
}

// Check implements Middleware by delegating.
func (l *Link) Check(ctx context.Context, c Credentials) (bool, error) {
	return l.Forward(ctx, c)
}

// Next returns the linked middleware, or nil.
func (l *Link) Next() Middleware { return l.next }

func (l *Link) link() *Link { return l }

// Chain links mw in order and returns the head. With no arguments it
// returns an open chain that accepts every check. The last middleware keeps
// whatever it was already linked to. Chain links nothing when it returns an
// error.
func Chain(mw ...Middleware) (Middleware, error) {
	if len(mw) == 0 {
		return &Link{}, nil
	}

	members := make(map[any]struct{}, len(mw))
	for _, m := range mw {
		if m == nil {
			return nil, ErrNilLink
		}
		id, ok := identity(m)
		if !ok {
			continue
		}
		if _, dup := members[id]; dup {
			return nil, ErrCycle
		}
		members[id] = struct{}{}
	}

	// The tail already hanging off the last middleware must not lead back
	// into the chain being built.
	if lk, ok := mw[len(mw)-1].(interface{ link() *Link }); ok {
		for m := lk.link().next; m != nil; {
			if id, ok := identity(m); ok {
				if _, in := members[id]; in {
					return nil, ErrCycle
				}
			}
			next, ok := m.(interface{ link() *Link })
			if !ok {
				break
			}
			m = next.link().next
		}
	}

	prev := make([]Middleware, len(mw)-1)
	for i := range prev {
		if lk, ok := mw[i].(interface{ link() *Link }); ok {
			prev[i] = lk.link().next
		}
	}
	for i := 0; i < len(mw)-1; i++ {
		if err := linkWith(mw[i], mw[i+1]); err != nil {
			for j := 0; j < i; j++ {
				if lk, ok := mw[j].(interface{ link() *Link }); ok {
					lk.link().next = prev[j]
				}
			}
			return nil, err
		}
	}
	return mw[0], nil
}

// identity returns a key that is equal for the same middleware and never
// panics when hashed: the embedded *Link, or the pointer itself. Other
// values have no stable identity.
func identity(m Middleware) (any, bool) {
	if lk, ok := m.(interface{ link() *Link }); ok {
		return lk.link(), true
	}
	if v := reflect.ValueOf(m); v.Kind() == reflect.Pointer {
		return v.Pointer(), true
	}
	return nil, false
}

func linkWith(m, next Middleware) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if r == ErrCycle {
				err = ErrCycle
				return
			}
			panic(r)
		}
	}()
	m.LinkWith(next)
	return nil
}
