package ics

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"go.uber.org/zap"
)

// Literal, line-anchored block markers. The round-trip parser depends
// on each marker appearing exactly once per block, unnested.
const (
	beginCalendarMarker = "BEGIN:VCALENDAR"
	endCalendarMarker   = "END:VCALENDAR"
	beginEventMarker    = "BEGIN:VEVENT"
	endEventMarker      = "END:VEVENT"
)

// ValidateMarkers checks the structural marker contract of a calendar
// payload: exactly one wrapper block, and within it only balanced,
// unnested event blocks.
func ValidateMarkers(data []byte) error {
	var (
		beginCal, endCal int
		inEvent          bool
		eventBlocks      int
	)

	for _, rawLine := range bytes.Split(data, []byte("\n")) {
		line := strings.TrimRight(string(rawLine), "\r")
		switch line {
		case beginCalendarMarker:
			beginCal++
		case endCalendarMarker:
			endCal++
		case beginEventMarker:
			if inEvent {
				return fmt.Errorf("nested %s marker in event block %d", beginEventMarker, eventBlocks+1)
			}
			inEvent = true
		case endEventMarker:
			if !inEvent {
				return fmt.Errorf("%s marker without matching %s", endEventMarker, beginEventMarker)
			}
			inEvent = false
			eventBlocks++
		}
	}

	if beginCal != 1 || endCal != 1 {
		return fmt.Errorf("want exactly one wrapper block, found %d %s and %d %s markers",
			beginCal, beginCalendarMarker, endCal, endCalendarMarker)
	}
	if inEvent {
		return fmt.Errorf("unterminated %s block", beginEventMarker)
	}

	return nil
}

// ValidateFile checks the marker contract of an existing calendar file.
// Used to reject a malformed merge input before any fetch is attempted.
func ValidateFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &ParseError{Path: path, Reason: "cannot read file", Err: err}
	}
	if err := ValidateMarkers(data); err != nil {
		return &ParseError{Path: path, Reason: "marker validation failed", Err: err}
	}
	return nil
}

// ParseFile reads a previously generated calendar file back into
// events. Required fields that are absent fail the parse; the optional
// priority and transparency fields fall back to defaults with a
// warning.
func ParseFile(path string, logger *zap.Logger) ([]Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Reason: "cannot read file", Err: err}
	}
	if err := ValidateMarkers(data); err != nil {
		return nil, &ParseError{Path: path, Reason: "marker validation failed", Err: err}
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Path: path, Reason: "calendar parse failed", Err: err}
	}

	var events []Event
	for _, ve := range cal.Events() {
		ev, err := parseEvent(ve, logger)
		if err != nil {
			return nil, &ParseError{Path: path, Reason: "event reconstruction failed", Err: err}
		}
		events = append(events, ev)
	}

	logger.Info("Previous calendar parsed",
		zap.String("path", path),
		zap.Int("event_count", len(events)))

	return events, nil
}

func parseEvent(ve *ical.VEvent, logger *zap.Logger) (Event, error) {
	var ev Event

	uid, err := requiredValue(ve, ical.ComponentPropertyUniqueId)
	if err != nil {
		return ev, err
	}
	ev.ID, err = strconv.Atoi(uid)
	if err != nil {
		return ev, fmt.Errorf("non-numeric UID %q: %w", uid, err)
	}

	ev.Start, ev.AllDay, err = parseEventTime(ve, ical.ComponentPropertyDtStart)
	if err != nil {
		return ev, err
	}
	var endAllDay bool
	ev.End, endAllDay, err = parseEventTime(ve, ical.ComponentPropertyDtEnd)
	if err != nil {
		return ev, err
	}
	if ev.AllDay && endAllDay {
		// Serialized all-day ranges are end exclusive, undo the +1
		ev.End = ev.End.AddDate(0, 0, -1)
	}

	if ev.Location, err = requiredValue(ve, ical.ComponentPropertyLocation); err != nil {
		return ev, err
	}
	if ev.Summary, err = requiredValue(ve, ical.ComponentPropertySummary); err != nil {
		return ev, err
	}
	if ev.Description, err = requiredValue(ve, ical.ComponentPropertyDescription); err != nil {
		return ev, err
	}
	if ev.Status, err = requiredValue(ve, ical.ComponentProperty("STATUS")); err != nil {
		return ev, err
	}
	if ev.Category, err = requiredValue(ve, ical.ComponentProperty("CATEGORIES")); err != nil {
		return ev, err
	}

	// Optional fields: warn and fall back
	if p := ve.GetProperty(ical.ComponentProperty("PRIORITY")); p != nil {
		ev.Priority, err = strconv.Atoi(strings.TrimSpace(p.Value))
		if err != nil {
			return ev, fmt.Errorf("non-numeric PRIORITY %q: %w", p.Value, err)
		}
	} else {
		logger.Warn("Event without PRIORITY, defaulting", zap.Int("uid", ev.ID), zap.Int("priority", 5))
		ev.Priority = 5
	}
	if p := ve.GetProperty(ical.ComponentProperty("TRANSP")); p != nil {
		ev.Opaque = strings.EqualFold(p.Value, "OPAQUE")
	} else {
		logger.Warn("Event without TRANSP, defaulting to opaque", zap.Int("uid", ev.ID))
		ev.Opaque = true
	}

	return ev, nil
}

// parseEventTime reads a DTSTART/DTEND value back into a local
// wall-clock time, reporting whether the value was date-only
func parseEventTime(ve *ical.VEvent, prop ical.ComponentProperty) (time.Time, bool, error) {
	p := ve.GetProperty(prop)
	if p == nil || p.Value == "" {
		return time.Time{}, false, fmt.Errorf("missing required field %s", string(prop))
	}

	if strings.Contains(p.Value, "T") {
		t, err := time.ParseInLocation(DateTimeLayout, p.Value, time.Local)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("invalid %s value %q: %w", string(prop), p.Value, err)
		}
		return t, false, nil
	}

	t, err := time.ParseInLocation(DateLayout, p.Value, time.Local)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid %s value %q: %w", string(prop), p.Value, err)
	}
	return t, true, nil
}

func requiredValue(ve *ical.VEvent, prop ical.ComponentProperty) (string, error) {
	p := ve.GetProperty(prop)
	if p == nil {
		return "", fmt.Errorf("missing required field %s", string(prop))
	}
	return p.Value, nil
}
