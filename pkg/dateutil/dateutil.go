package dateutil

import (
	"fmt"
	"time"
)

const (
	// UntisDateLayout is the yyyyMMdd date format used by the WebUntis API.
	UntisDateLayout = "20060102"
	// UntisTimeLayout is the zero-padded HHmm time format used by the WebUntis API.
	UntisTimeLayout = "1504"
)

// StartOfDay returns the start of the day (00:00:00) for the given date
func StartOfDay(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
}

// StartOfWeek returns the Monday of the week for the given date
func StartOfWeek(date time.Time) time.Time {
	weekday := int(date.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday = 7
	}
	daysFromMonday := weekday - 1
	return StartOfDay(date.AddDate(0, 0, -daysFromMonday))
}

// GetWeekNumber returns the ISO week number for the given date
func GetWeekNumber(date time.Time) (year int, week int) {
	year, week = date.ISOWeek()
	return
}

// IsSameDay returns true if two dates are on the same day
func IsSameDay(date1, date2 time.Time) bool {
	return date1.Year() == date2.Year() &&
		date1.Month() == date2.Month() &&
		date1.Day() == date2.Day()
}

// DaysBetween returns the number of whole calendar days from a to b.
// Both arguments are truncated to midnight first, so periods at 07:45
// and 18:00 on adjacent days are exactly one day apart.
func DaysBetween(a, b time.Time) int {
	a = StartOfDay(a)
	b = StartOfDay(b)
	return int(b.Sub(a).Hours() / 24)
}

// ParseUntisDate parses a yyyyMMdd date string into a local wall-clock
// time at midnight. The internal model is timezone-naive, so everything
// is anchored in time.Local.
func ParseUntisDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(UntisDateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid untis date %q: %w", s, err)
	}
	return t, nil
}

// ParseUntisTime parses a zero-padded HHmm time string and applies it to
// the given date, producing a single local timestamp.
func ParseUntisTime(date time.Time, s string) (time.Time, error) {
	if len(s) != 4 {
		return time.Time{}, fmt.Errorf("invalid untis time %q: want 4 digits", s)
	}
	t, err := time.ParseInLocation(UntisTimeLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid untis time %q: %w", s, err)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, date.Location()), nil
}

// FormatUntisDate formats a date as yyyyMMdd
func FormatUntisDate(date time.Time) string {
	return date.Format(UntisDateLayout)
}

// ParseDate parses a date string in the formats accepted on the
// configuration surface (ISO date, German date, or untis yyyyMMdd).
func ParseDate(dateStr string) (time.Time, error) {
	formats := []string{
		"2006-01-02",
		"02.01.2006",
		UntisDateLayout,
	}

	for _, format := range formats {
		if t, err := time.ParseInLocation(format, dateStr, time.Local); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unsupported date format: %q", dateStr)
}
