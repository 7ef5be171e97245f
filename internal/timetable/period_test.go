package timetable

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/JameDevOfficial/WebUntisTest/internal/untis"
)

// testCatalog returns a catalog with one room and one course, the
// baseline every normalizer test resolves against
func testCatalog() *Catalog {
	c := NewCatalog(nil)
	c.AddIfAbsent(Element{Kind: KindRoom, ID: 10, Name: "R101", LongName: "Raum 101", Capacity: 30})
	c.AddIfAbsent(Element{Kind: KindCourse, ID: 20, Name: "GK", LongName: "Gemeinschaftskunde"})
	c.AddIfAbsent(Element{Kind: KindCourse, ID: 21, Name: "Wi", LongName: "Wirtschaft"})
	return c
}

// rawPeriod builds a well-formed raw record for the given day and times
func rawPeriod(id int, date, start, end int) untis.RawPeriod {
	return untis.RawPeriod{
		ID:        id,
		LessonID:  id * 100,
		Date:      untis.UntisDate(date),
		StartTime: untis.UntisTime(start),
		EndTime:   untis.UntisTime(end),
		CellState: "STANDARD",
		Is:        untis.RawIsFlags{Standard: true},
		Elements: []untis.RawElementRef{
			{Type: untis.ElementTypeRoom, ID: 10, State: "REGULAR"},
			{Type: untis.ElementTypeCourse, ID: 20, State: "REGULAR"},
		},
	}
}

func TestNewPeriodFromRaw(t *testing.T) {
	catalog := testCatalog()

	raw := rawPeriod(1, 20250113, 745, 930)
	raw.StudentGroup = "GK-1"
	raw.SubstText = "Vertretung"

	p, err := NewPeriodFromRaw(raw, catalog)
	if err != nil {
		t.Fatalf("NewPeriodFromRaw failed: %v", err)
	}

	wantStart := time.Date(2025, 1, 13, 7, 45, 0, 0, time.Local)
	wantEnd := time.Date(2025, 1, 13, 9, 30, 0, 0, time.Local)
	if !p.Start.Equal(wantStart) {
		t.Errorf("Start = %v, want %v", p.Start, wantStart)
	}
	if !p.End.Equal(wantEnd) {
		t.Errorf("End = %v, want %v", p.End, wantEnd)
	}
	if p.End.Before(p.Start) {
		t.Error("end must not precede start")
	}

	if p.Room.Element == nil || p.Room.Element.ID != 10 {
		t.Errorf("room link = %+v, want catalog entity 10", p.Room.Element)
	}
	if p.Course.Element == nil || p.Course.Element.ID != 20 {
		t.Errorf("course link = %+v, want catalog entity 20", p.Course.Element)
	}

	if p.Priority != DefaultPriority {
		t.Errorf("Priority = %d, want default %d", p.Priority, DefaultPriority)
	}
	if p.StudentGroup != "GK-1" || p.SubstText != "Vertretung" {
		t.Errorf("text fields not carried: %+v", p)
	}
	if p.PreExist {
		t.Error("freshly normalized period must not be marked preExist")
	}
}

func TestNewPeriodFromRawExplicitPriority(t *testing.T) {
	catalog := testCatalog()
	raw := rawPeriod(1, 20250113, 745, 930)
	prio := 8
	raw.Priority = &prio

	p, err := NewPeriodFromRaw(raw, catalog)
	if err != nil {
		t.Fatalf("NewPeriodFromRaw failed: %v", err)
	}
	if p.Priority != 8 {
		t.Errorf("Priority = %d, want 8", p.Priority)
	}
}

func TestNewPeriodFromRawReschedule(t *testing.T) {
	catalog := testCatalog()
	raw := rawPeriod(1, 20250113, 745, 930)
	raw.Reschedule = &untis.RawReschedule{
		Date:      20250115,
		StartTime: 1000,
		EndTime:   1130,
		IsSource:  true,
	}

	p, err := NewPeriodFromRaw(raw, catalog)
	if err != nil {
		t.Fatalf("NewPeriodFromRaw failed: %v", err)
	}
	if p.Reschedule == nil {
		t.Fatal("reschedule facet missing")
	}

	wantStart := time.Date(2025, 1, 15, 10, 0, 0, 0, time.Local)
	if !p.Reschedule.Start.Equal(wantStart) {
		t.Errorf("Reschedule.Start = %v, want %v", p.Reschedule.Start, wantStart)
	}
	if !p.Reschedule.IsSource {
		t.Error("IsSource flag lost")
	}
}

func TestNewPeriodFromRawMalformed(t *testing.T) {
	catalog := testCatalog()

	tests := []struct {
		name   string
		mutate func(*untis.RawPeriod)
	}{
		{"bad date", func(r *untis.RawPeriod) { r.Date = 20251341 }},
		{"bad start time", func(r *untis.RawPeriod) { r.StartTime = 2960 }},
		{"end before start", func(r *untis.RawPeriod) { r.StartTime = 1100; r.EndTime = 930 }},
		{"no room element", func(r *untis.RawPeriod) { r.Elements = r.Elements[1:] }},
		{"two course elements", func(r *untis.RawPeriod) {
			r.Elements = append(r.Elements, untis.RawElementRef{Type: untis.ElementTypeCourse, ID: 21})
		}},
		{"unknown room id", func(r *untis.RawPeriod) { r.Elements[0].ID = 77 }},
		{"unknown course id", func(r *untis.RawPeriod) { r.Elements[1].ID = 77 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := rawPeriod(1, 20250113, 745, 930)
			tt.mutate(&raw)

			_, err := NewPeriodFromRaw(raw, catalog)

			var malformedErr *MalformedRecordError
			if !errors.As(err, &malformedErr) {
				t.Fatalf("error = %v, want MalformedRecordError", err)
			}
			// The offending record is dumped for diagnosis
			if !strings.Contains(malformedErr.Record, "\"id\":1") {
				t.Errorf("record dump missing: %q", malformedErr.Record)
			}
		})
	}
}

func TestPeriodCancelled(t *testing.T) {
	tests := []struct {
		name   string
		period Period
		want   bool
	}{
		{"standard", Period{CellState: CellStateStandard}, false},
		{"cell state CANCEL", Period{CellState: CellStateCancel}, true},
		{"cell state CANCELLED", Period{CellState: CellStateCancelled}, true},
		{"is flag only", Period{CellState: CellStateStandard, IsCancelled: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.period.Cancelled(); got != tt.want {
				t.Errorf("Cancelled() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSortPeriods(t *testing.T) {
	base := time.Date(2025, 1, 13, 8, 0, 0, 0, time.Local)
	periods := []*Period{
		{ID: 3, Start: base.Add(2 * time.Hour)},
		{ID: 2, Start: base},
		{ID: 1, Start: base},
	}

	SortPeriods(periods)

	gotIDs := []int{periods[0].ID, periods[1].ID, periods[2].ID}
	wantIDs := []int{1, 2, 3}
	for i := range wantIDs {
		if gotIDs[i] != wantIDs[i] {
			t.Fatalf("order = %v, want %v", gotIDs, wantIDs)
		}
	}
}
