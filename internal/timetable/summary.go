package timetable

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/JameDevOfficial/WebUntisTest/pkg/dateutil"
)

// SummaryLessonCode tags synthesized week-overview placeholder periods.
// Previous summaries are recognized by this code on the merge path and
// never carried forward.
const SummaryLessonCode = "SUMMARY"

// summaryIDBase namespaces synthesized identifiers away from real
// period identifiers. Allocation is deterministic: the counter walks
// upward and skips over any identifier already in use.
const summaryIDBase = 1_000_000_000

// SummaryOptions controls week-overview synthesis
type SummaryOptions struct {
	// GapSplit starts a new day group when the dates of two successive
	// periods within a week are more than one calendar day apart.
	GapSplit bool
	// RangeStart and RangeEnd label the placeholder produced for an
	// empty fetch window.
	RangeStart time.Time
	RangeEnd   time.Time
}

// idAllocator hands out synthesized period identifiers that collide
// neither with fetched periods nor with one another
type idAllocator struct {
	next int
	used map[int]struct{}
}

func newIDAllocator(periods []*Period) *idAllocator {
	used := make(map[int]struct{}, len(periods))
	for _, p := range periods {
		used[p.ID] = struct{}{}
	}
	return &idAllocator{next: summaryIDBase, used: used}
}

func (a *idAllocator) alloc() int {
	for {
		id := a.next
		a.next++
		if _, taken := a.used[id]; !taken {
			a.used[id] = struct{}{}
			return id
		}
	}
}

// Summarize derives the multi-day placeholder periods for the given
// period set. It never mutates its input; callers append the returned
// summaries themselves. The input is expected in chronological order.
func Summarize(periods []*Period, opts SummaryOptions, logger *zap.Logger) []*Period {
	ids := newIDAllocator(periods)

	if len(periods) == 0 {
		logger.Info("No periods in range, synthesizing placeholder",
			zap.Time("range_start", opts.RangeStart),
			zap.Time("range_end", opts.RangeEnd))
		return []*Period{dummySummary(ids, opts)}
	}

	active := make([]*Period, 0, len(periods))
	for _, p := range periods {
		if p.Cancelled() {
			continue
		}
		active = append(active, p)
	}

	weeks := make(map[time.Time][]*Period)
	for _, p := range active {
		monday := dateutil.StartOfWeek(p.Start)
		weeks[monday] = append(weeks[monday], p)
	}

	mondays := make([]time.Time, 0, len(weeks))
	for monday := range weeks {
		mondays = append(mondays, monday)
	}
	sort.Slice(mondays, func(i, j int) bool { return mondays[i].Before(mondays[j]) })

	var summaries []*Period
	for _, monday := range mondays {
		weekPeriods := weeks[monday]
		sort.SliceStable(weekPeriods, func(i, j int) bool {
			return weekPeriods[i].Start.Before(weekPeriods[j].Start)
		})

		// The first period begins the week and needs no preceding
		// marker; only the remainder is summarized.
		rest := weekPeriods[1:]
		if len(rest) == 0 {
			continue
		}

		groups := splitDayGroups(rest, opts.GapSplit)

		_, week := dateutil.GetWeekNumber(monday)
		for i, group := range groups {
			label := fmt.Sprintf("KW %d", week)
			if len(groups) > 1 {
				label = fmt.Sprintf("KW %d (%d/%d)", week, i+1, len(groups))
			}
			summaries = append(summaries, newSummaryPeriod(ids.alloc(), label,
				group[0].Start, group[len(group)-1].End))
		}

		logger.Debug("Week summarized",
			zap.Time("monday", monday),
			zap.Int("week", week),
			zap.Int("day_groups", len(groups)))
	}

	logger.Info("Summary synthesis completed",
		zap.Int("weeks", len(mondays)),
		zap.Int("summary_count", len(summaries)))

	return summaries
}

// splitDayGroups partitions chronologically ordered periods into runs of
// days. A new group starts when the calendar date changes and the gap to
// the previous day exceeds one day; with gap splitting disabled the
// whole input is a single group.
func splitDayGroups(periods []*Period, gapSplit bool) [][]*Period {
	var groups [][]*Period
	var current []*Period

	for _, p := range periods {
		if len(current) > 0 {
			prev := current[len(current)-1]
			dateChanged := !dateutil.IsSameDay(prev.Start, p.Start)
			if dateChanged && gapSplit && dateutil.DaysBetween(prev.Start, p.Start) > 1 {
				groups = append(groups, current)
				current = nil
			}
		}
		current = append(current, p)
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}

	return groups
}

// newSummaryPeriod builds one placeholder period spanning start..end,
// carrying sentinel room and course entities that exist outside the
// catalog
func newSummaryPeriod(id int, label string, start, end time.Time) *Period {
	return &Period{
		ID:         id,
		LessonCode: SummaryLessonCode,
		Start:      start,
		End:        end,
		Course: RefLink{Element: &Element{
			Kind:     KindCourse,
			ID:       -1,
			LongName: label,
		}},
		Room: RefLink{Element: &Element{
			Kind: KindRoom,
			ID:   -1,
		}},
		CellState: CellStateAdditional,
		Priority:  DefaultPriority,
	}
}

// dummySummary is the single placeholder written when the whole fetch
// window is empty, so subscribers never see a calendar with zero events
func dummySummary(ids *idAllocator, opts SummaryOptions) *Period {
	epoch := time.Unix(0, 0).In(time.Local)
	label := fmt.Sprintf("No periods %s to %s",
		opts.RangeStart.Format("2006-01-02"),
		opts.RangeEnd.Format("2006-01-02"))
	return newSummaryPeriod(ids.alloc(), label, epoch, epoch)
}
