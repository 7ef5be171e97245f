// Package ics renders period groups into the iCalendar wire format and
// reads previously generated files back for the incremental merge path.
package ics

import (
	"fmt"
	"time"
)

// Layouts of the rendered date-time values. Events carry local
// wall-clock text tagged with the calendar's fixed zone; all-day values
// are bare dates.
const (
	DateTimeLayout = "20060102T150405"
	DateLayout     = "20060102"
)

// Event statuses produced by the cell-state mapping
const (
	StatusConfirmed = "CONFIRMED"
	StatusTentative = "TENTATIVE"
	StatusCancelled = "CANCELLED"
)

// Event is the serialization-facing view of a period
type Event struct {
	ID          int
	Start       time.Time
	End         time.Time
	AllDay      bool // rendered as a date range, end exclusive
	Location    string
	Summary     string
	Description string
	Status      string
	Category    string
	Priority    int // calendar priority, already inverted from source priority
	Opaque      bool
}

// ParseError reports a previously generated calendar file that cannot
// be read back: missing or unbalanced markers, or a required event
// field that is absent.
type ParseError struct {
	Path   string
	Reason string
	Err    error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot parse calendar %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("cannot parse calendar %s: %s", e.Path, e.Reason)
}

// Unwrap returns the underlying cause
func (e *ParseError) Unwrap() error {
	return e.Err
}
