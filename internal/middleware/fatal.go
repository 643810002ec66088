package middleware

import (
	"errors"
	"fmt"
)

// ErrRateLimitExceeded is wrapped in a *FatalError when the throttling link
// sees more checks than its per-minute limit.
var ErrRateLimitExceeded = errors.New("login rate limit exceeded")

// FatalError is an unrecoverable chain outcome. Unlike a rejection, the
// caller is expected to stop accepting logins (the console demo exits).
type FatalError struct {
	Link string
	Err  error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s: fatal: %v", e.Link, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

// IsFatal reports whether err carries a *FatalError.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}
