package timetable

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/JameDevOfficial/WebUntisTest/internal/config"
	"github.com/JameDevOfficial/WebUntisTest/internal/ics"
	"github.com/JameDevOfficial/WebUntisTest/internal/untis"
)

// TimetableSource fetches one week of raw timetable data. Satisfied by
// *untis.Client; tests substitute a canned source.
type TimetableSource interface {
	GetWeeklyData(date time.Time, elementType, elementID int) (*untis.TimetableData, error)
}

// Runner drives one conversion run: fetch, normalize, synthesize,
// merge, group and serialize. Execution is strictly sequential; the
// runner owns all state and discards it at exit.
type Runner struct {
	cfg    *config.Config
	source TimetableSource
	logger *zap.Logger
	now    func() time.Time // injectable for the DST correction tests
}

// NewRunner creates a new pipeline runner
func NewRunner(cfg *config.Config, source TimetableSource, logger *zap.Logger) *Runner {
	return &Runner{
		cfg:    cfg,
		source: source,
		logger: logger,
		now:    time.Now,
	}
}

// Run executes the full conversion pipeline. ErrEmptyResult is the only
// non-fatal return: it marks a clean no-op exit for an empty fetch
// window with summary synthesis disabled.
func (r *Runner) Run() error {
	dates, err := r.cfg.Dates()
	if err != nil {
		return err
	}

	// Reject a malformed merge input before any fetch is attempted.
	prevPath := r.cfg.Merge.PreviousFile
	if prevPath != "" {
		if _, statErr := os.Stat(prevPath); statErr == nil {
			if err := ics.ValidateFile(prevPath); err != nil {
				return err
			}
		}
	}

	catalog := NewCatalog(r.cfg.Format.Overrides)
	periods, err := r.fetchAll(dates, catalog)
	if err != nil {
		return err
	}

	SortPeriods(periods)

	if len(periods) == 0 && r.cfg.Format.SkipSummaries {
		r.logger.Warn("No periods in the requested window, nothing to do")
		return ErrEmptyResult
	}

	if !r.cfg.Format.SkipSummaries {
		opts := SummaryOptions{
			GapSplit:   !r.cfg.Format.NoGapSplit,
			RangeStart: dates[0],
			RangeEnd:   dates[len(dates)-1],
		}
		periods = append(periods, Summarize(periods, opts, r.logger)...)
		SortPeriods(periods)
	}

	ApplyDSTCorrection(periods, r.now(), r.logger)

	if prevPath != "" {
		previous, err := LoadPrevious(prevPath, catalog, r.logger)
		if err != nil {
			return err
		}
		periods = Merge(previous, periods, r.logger)
	}

	return r.writeGroups(periods)
}

// fetchAll performs one weekly fetch per requested date, in request
// order. A failed or error-flagged fetch aborts the remaining dates but
// keeps whatever was already accumulated.
func (r *Runner) fetchAll(dates []time.Time, catalog *Catalog) ([]*Period, error) {
	var periods []*Period

	for i, date := range dates {
		data, err := r.source.GetWeeklyData(date, r.cfg.Untis.ElementType, r.cfg.Untis.ElementID)
		if err != nil {
			r.logger.Warn("Fetch failed, aborting remaining fetches",
				zap.Time("date", date),
				zap.Int("remaining", len(dates)-i-1),
				zap.Error(err))
			break
		}

		catalog.Ingest(data.Elements)

		for _, raw := range data.Periods(r.cfg.Untis.ElementID) {
			p, err := NewPeriodFromRaw(raw, catalog)
			if err != nil {
				// Fail fast: a calendar built from guessed data is
				// worse than no calendar.
				return nil, err
			}
			periods = append(periods, p)
		}

		r.logger.Info("Week processed",
			zap.Time("date", date),
			zap.Int("accumulated_periods", len(periods)),
			zap.Int("catalog_entities", catalog.Len()))
	}

	return periods, nil
}

// writeGroups partitions the final period set and serializes one
// calendar file per group
func (r *Runner) writeGroups(periods []*Period) error {
	mode := GroupSingle
	switch {
	case r.cfg.Format.SplitByCourse:
		mode = GroupByCourse
	case r.cfg.Format.SplitByOverrides:
		mode = GroupByOverrides
	}

	allFormats := r.cfg.Format.AllFormats && mode != GroupSingle
	groups := SplitGroups(periods, mode, r.cfg.Format.Overrides, allFormats)

	for _, group := range groups {
		events := make([]ics.Event, 0, len(group.Periods))
		for _, p := range group.Periods {
			events = append(events, p.CalendarEvent())
		}

		name := r.cfg.Output.CalendarName
		if len(groups) > 1 {
			name = fmt.Sprintf("%s - %s", name, group.Name)
		}

		cal := ics.BuildCalendar(name, r.cfg.Output.Timezone, events)
		if err := ics.WriteFile(OutputPath(r.cfg.Output.Path, group), cal, r.logger); err != nil {
			return err
		}
	}

	r.logger.Info("Run completed",
		zap.Int("period_count", len(periods)),
		zap.Int("group_count", len(groups)))

	return nil
}
