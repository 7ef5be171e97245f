package timetable

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/JameDevOfficial/WebUntisTest/internal/untis"
	"github.com/JameDevOfficial/WebUntisTest/pkg/dateutil"
)

// CellState is the scheduling service's status code for a period
type CellState string

const (
	CellStateStandard   CellState = "STANDARD"
	CellStateAdditional CellState = "ADDITIONAL"
	CellStateCancel     CellState = "CANCEL"
	CellStateConfirmed  CellState = "CONFIRMED"
	CellStateTentative  CellState = "TENTATIVE"
	CellStateCancelled  CellState = "CANCELLED"
)

// DefaultPriority is used when the source record omits a priority
const DefaultPriority = 5

// RefLink is a non-owning reference to one catalog entity plus the
// per-period overlay fields. Created fresh for every period.
type RefLink struct {
	Element *Element
	OrgID   int
	Missing bool
	State   string
}

// RescheduleInfo is the optional reschedule facet of a period
type RescheduleInfo struct {
	Start    time.Time
	End      time.Time
	IsSource bool
}

// Period is one scheduled lesson occurrence. Start and end are local
// wall-clock times; the fixed output zone is only attached at
// serialization time.
type Period struct {
	ID           int
	LessonID     int
	LessonNumber int
	LessonCode   string
	LessonText   string
	PeriodText   string
	SubstText    string
	Start        time.Time
	End          time.Time
	Room         RefLink
	Course       RefLink
	StudentGroup string
	Code         int
	CellState    CellState
	Priority     int
	IsStandard   bool
	IsCancelled  bool
	IsEvent      bool
	Reschedule   *RescheduleInfo
	RoomCapacity int
	StudentCount int

	// PreExist marks periods reconstructed from a previous calendar
	// file, as opposed to freshly fetched ones.
	PreExist bool
}

// Cancelled reports whether the period does not take place
func (p *Period) Cancelled() bool {
	return p.IsCancelled || p.CellState == CellStateCancel || p.CellState == CellStateCancelled
}

// CourseName returns the course short name, or "" without a course
func (p *Period) CourseName() string {
	if p.Course.Element == nil {
		return ""
	}
	return p.Course.Element.Name
}

// NewPeriodFromRaw normalizes one raw timetable record into a Period,
// resolving its room and course references against the catalog. Any
// malformed field or failed resolution is fatal for the whole run.
func NewPeriodFromRaw(raw untis.RawPeriod, catalog *Catalog) (*Period, error) {
	date, err := dateutil.ParseUntisDate(raw.Date.String())
	if err != nil {
		return nil, malformed("unparsable date", raw, err)
	}

	start, err := dateutil.ParseUntisTime(date, raw.StartTime.String())
	if err != nil {
		return nil, malformed("unparsable start time", raw, err)
	}

	// The end time inherits the record's date; the summary-synthesis
	// path is the only producer of already-resolved end instants and it
	// does not pass through here.
	end, err := dateutil.ParseUntisTime(date, raw.EndTime.String())
	if err != nil {
		return nil, malformed("unparsable end time", raw, err)
	}
	if end.Before(start) {
		return nil, malformed("end before start", raw, nil)
	}

	roomRef, err := uniqueRef(raw, untis.ElementTypeRoom)
	if err != nil {
		return nil, err
	}
	courseRef, err := uniqueRef(raw, untis.ElementTypeCourse)
	if err != nil {
		return nil, err
	}

	room, err := catalog.Resolve(KindRoom, roomRef.ID)
	if err != nil {
		return nil, malformed("room resolution failed", raw, err)
	}
	course, err := catalog.Resolve(KindCourse, courseRef.ID)
	if err != nil {
		return nil, malformed("course resolution failed", raw, err)
	}

	priority := DefaultPriority
	if raw.Priority != nil {
		priority = *raw.Priority
	}

	cellState := CellState(raw.CellState)
	if cellState == "" {
		cellState = CellStateStandard
	}

	p := &Period{
		ID:           raw.ID,
		LessonID:     raw.LessonID,
		LessonNumber: raw.LessonNumber,
		LessonCode:   raw.LessonCode,
		LessonText:   raw.LessonText,
		PeriodText:   raw.PeriodText,
		SubstText:    raw.SubstText,
		Start:        start,
		End:          end,
		Room:         RefLink{Element: room, OrgID: roomRef.OrgID, Missing: roomRef.Missing, State: roomRef.State},
		Course:       RefLink{Element: course, OrgID: courseRef.OrgID, Missing: courseRef.Missing, State: courseRef.State},
		StudentGroup: raw.StudentGroup,
		Code:         raw.Code,
		CellState:    cellState,
		Priority:     priority,
		IsStandard:   raw.Is.Standard,
		IsCancelled:  raw.Is.Cancelled,
		IsEvent:      raw.Is.Event,
		RoomCapacity: raw.RoomCapacity,
		StudentCount: raw.StudentCount,
	}

	if raw.Reschedule != nil {
		reDate, err := dateutil.ParseUntisDate(raw.Reschedule.Date.String())
		if err != nil {
			return nil, malformed("unparsable reschedule date", raw, err)
		}
		reStart, err := dateutil.ParseUntisTime(reDate, raw.Reschedule.StartTime.String())
		if err != nil {
			return nil, malformed("unparsable reschedule start time", raw, err)
		}
		reEnd, err := dateutil.ParseUntisTime(reDate, raw.Reschedule.EndTime.String())
		if err != nil {
			return nil, malformed("unparsable reschedule end time", raw, err)
		}
		p.Reschedule = &RescheduleInfo{Start: reStart, End: reEnd, IsSource: raw.Reschedule.IsSource}
	}

	return p, nil
}

// uniqueRef selects the single element reference of the given type from
// the record's nested element list
func uniqueRef(raw untis.RawPeriod, elementType int) (untis.RawElementRef, error) {
	var found untis.RawElementRef
	matches := 0
	for _, ref := range raw.Elements {
		if ref.Type == elementType {
			found = ref
			matches++
		}
	}
	if matches != 1 {
		return untis.RawElementRef{}, malformed(
			fmt.Sprintf("expected exactly one element of type %d, found %d", elementType, matches), raw, nil)
	}
	return found, nil
}

// malformed builds a MalformedRecordError carrying the full record dump
func malformed(reason string, raw untis.RawPeriod, err error) error {
	dump, marshalErr := json.Marshal(raw)
	if marshalErr != nil {
		dump = []byte(fmt.Sprintf("%+v", raw))
	}
	return &MalformedRecordError{Reason: reason, Record: string(dump), Err: err}
}

// SortPeriods orders periods chronologically by start, ties broken by
// identifier. This is the ordering every downstream stage relies on.
func SortPeriods(periods []*Period) {
	sort.SliceStable(periods, func(i, j int) bool {
		if periods[i].Start.Equal(periods[j].Start) {
			return periods[i].ID < periods[j].ID
		}
		return periods[i].Start.Before(periods[j].Start)
	})
}
