package regions

import (
	"errors"
	"fmt"

	"regionck/internal/source"
)

// AbortError is returned when a region operation hits an internal
// invariant violation. It is never caused by user code in a consistent
// pipeline; the caller must stop checking the current function.
type AbortError struct {
	Span source.Span
	Msg  string
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("region check aborted at %s: %s", e.Span, e.Msg)
}

// IsAbort reports whether err carries an AbortError.
func IsAbort(err error) bool {
	var ae *AbortError
	return errors.As(err, &ae)
}

// Aborter reports fatal internal-consistency failures.
type Aborter interface {
	Abort(span source.Span, msg string) error
}

// abort routes msg through ab and guarantees a non-nil error back, so a
// reporter that only records the diagnostic still stops the operation.
func abort(ab Aborter, span source.Span, msg string) error {
	var err error
	if ab != nil {
		err = ab.Abort(span, msg)
	}
	if err == nil {
		err = &AbortError{Span: span, Msg: msg}
	}
	return err
}
