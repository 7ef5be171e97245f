package timetable

import (
	"fmt"
	"strings"

	"github.com/JameDevOfficial/WebUntisTest/internal/ics"
)

// Lesson code of the additional-lesson marker and its rendered category
const (
	lessonCodeAdditional = "UNTIS_ADDITIONAL"
	categoryAdditional   = "Additional"
)

// CalendarEvent maps a period onto its serialization-facing view
func (p *Period) CalendarEvent() ics.Event {
	status := statusFromCellState(p.CellState)

	return ics.Event{
		ID:          p.ID,
		Start:       p.Start,
		End:         p.End,
		AllDay:      p.LessonCode == SummaryLessonCode,
		Location:    p.roomLongName(),
		Summary:     p.courseLongName(),
		Description: p.description(),
		Status:      status,
		Category:    categoryFromLessonCode(p.LessonCode),
		Priority:    10 - p.Priority,
		Opaque:      status == ics.StatusConfirmed,
	}
}

func (p *Period) roomLongName() string {
	if p.Room.Element == nil {
		return ""
	}
	return p.Room.Element.LongName
}

func (p *Period) courseLongName() string {
	if p.Course.Element == nil {
		return ""
	}
	return p.Course.Element.LongName
}

// description joins the free-text fields and appends the reschedule
// annotation when the facet is present
func (p *Period) description() string {
	var parts []string
	for _, s := range []string{p.LessonText, p.PeriodText, p.SubstText} {
		if s != "" {
			parts = append(parts, s)
		}
	}

	if p.Reschedule != nil {
		role := "target"
		if p.Reschedule.IsSource {
			role = "source"
		}
		parts = append(parts, fmt.Sprintf("Rescheduled (%s): %s to %s",
			role,
			p.Reschedule.Start.Format("02.01.2006 15:04"),
			p.Reschedule.End.Format("15:04")))
	}

	return strings.Join(parts, " ")
}

// statusFromCellState maps the scheduling service's cell state onto a
// calendar status
func statusFromCellState(state CellState) string {
	switch state {
	case CellStateStandard, CellStateConfirmed:
		return ics.StatusConfirmed
	case CellStateAdditional, CellStateTentative:
		return ics.StatusTentative
	case CellStateCancel, CellStateCancelled:
		return ics.StatusCancelled
	default:
		return ics.StatusConfirmed
	}
}

// cellStateFromStatus is the reconstruction direction of the status
// mapping, used on the round-trip path. The mapping is lossy: STANDARD
// and CONFIRMED both render as CONFIRMED, so reconstruction lands on
// the calendar-native state.
func cellStateFromStatus(status string) CellState {
	switch status {
	case ics.StatusTentative:
		return CellStateTentative
	case ics.StatusCancelled:
		return CellStateCancelled
	default:
		return CellStateConfirmed
	}
}

// categoryFromLessonCode maps a lesson code onto the rendered category
func categoryFromLessonCode(code string) string {
	if code == lessonCodeAdditional {
		return categoryAdditional
	}
	return code
}

// lessonCodeFromCategory restores the lesson code from a rendered
// category so a reconstructed period re-serializes identically
func lessonCodeFromCategory(category string) string {
	if category == categoryAdditional {
		return lessonCodeAdditional
	}
	return category
}
