package fetch

import "fmt"

// Error is the pipeline's classified outcome, carrying the HTTP status a
// caller should respond with (spec.md §7). It wraps the underlying cause so
// callers can still unwrap to the original upstream.HTTPError,
// upstream.TransportError, selector.ErrNoCredentialsAvailable, or
// ledger.ErrLedgerUnavailable.
type Error struct {
	StatusCode int
	Cause      error
	// Body is the upstream's own error body, forwarded verbatim when the
	// failure was an upstream HTTP error (spec.md §7: "propagated
	// transparently"). Nil for every other failure kind.
	Body []byte
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetch: status %d: %v", e.StatusCode, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func newError(status int, cause error) *Error {
	return &Error{StatusCode: status, Cause: cause}
}
