package timetable

import (
	"errors"
	"fmt"
)

// ErrEmptyResult marks a run whose fetch window contained no periods.
// It is the only non-fatal condition in the pipeline: callers degrade to
// a clean no-op exit (or to the placeholder calendar when summary
// synthesis is enabled).
var ErrEmptyResult = errors.New("no periods in the requested window")

// NotFoundError reports a reference lookup that matched no catalog entity
type NotFoundError struct {
	Kind ElementKind
	Key  string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s entity matches %s", e.Kind, e.Key)
}

// AmbiguousError reports a reference lookup that matched more than one
// catalog entity. With identifier-keyed lookups this is a programming
// invariant violation; only long-name lookups can legitimately hit it.
type AmbiguousError struct {
	Kind    ElementKind
	Key     string
	Matches int
}

// Error implements the error interface
func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("%d %s entities match %s", e.Matches, e.Kind, e.Key)
}

// MalformedRecordError is fatal for the whole run: a raw record carried
// an unparsable date/time or a reference that does not resolve. The
// offending record is dumped verbatim for diagnosis.
type MalformedRecordError struct {
	Reason string
	Record string
	Err    error
}

// Error implements the error interface
func (e *MalformedRecordError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed record (%s): %v\nrecord: %s", e.Reason, e.Err, e.Record)
	}
	return fmt.Sprintf("malformed record (%s)\nrecord: %s", e.Reason, e.Record)
}

// Unwrap returns the underlying cause
func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}
