package port

import (
	"errors"
	"fmt"
)

var ErrSessionDrained = errors.New("session already drained")
var ErrSessionClosed = errors.New("session closed")

// SchemaError reports a malformed schema or an invalid reduction
// annotation, detected at session construction.
type SchemaError struct {
	Ptr    string // schema location, as a JSON pointer
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Ptr == "" {
		return fmt.Sprintf("schema: %s", e.Reason)
	}
	return fmt.Sprintf("schema at %q: %s", e.Ptr, e.Reason)
}

// ValidationError reports a document failing schema validation. The
// add that produced it leaves the accumulator unchanged.
type ValidationError struct {
	Path   string // failing document location, as a JSON pointer
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("document at %q: %s", e.Path, e.Reason)
}

// IOError reports a spill storage failure. It is fatal for its
// session: once returned, every further add and drain fails with it.
type IOError struct {
	Op  string // failing spill operation
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("spill %s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ReductionError reports a reduction strategy that cannot be applied
// to its operands, surfaced during add or during the cross-segment
// reduction of drain.
type ReductionError struct {
	Path     string
	Strategy string
	Reason   string
}

func (e *ReductionError) Error() string {
	return fmt.Sprintf("reduce %s at %q: %s", e.Strategy, e.Path, e.Reason)
}
