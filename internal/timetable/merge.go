package timetable

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/JameDevOfficial/WebUntisTest/internal/ics"
)

// LoadPrevious reconstructs periods from a previously generated
// calendar file. SUMMARY-category events are never carried forward;
// they are regenerated fresh each run. A missing file is not an error,
// it simply means there is nothing to merge.
func LoadPrevious(path string, catalog *Catalog, logger *zap.Logger) ([]*Period, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Info("No previous calendar to merge", zap.String("path", path))
		return nil, nil
	}

	events, err := ics.ParseFile(path, logger)
	if err != nil {
		return nil, err
	}

	var periods []*Period
	skipped := 0
	for _, ev := range events {
		if ev.Category == SummaryLessonCode {
			skipped++
			continue
		}

		p, err := periodFromEvent(ev, catalog)
		if err != nil {
			return nil, &ics.ParseError{Path: path, Reason: "period reconstruction failed", Err: err}
		}
		periods = append(periods, p)
	}

	logger.Info("Previous periods reconstructed",
		zap.String("path", path),
		zap.Int("period_count", len(periods)),
		zap.Int("summaries_skipped", skipped))

	return periods, nil
}

// periodFromEvent rebuilds a full period from a reconstructed calendar
// event by resolving its rendered text back against the catalog. The
// lookup goes by long-name equality, not identifier, since only the
// rendered text survives serialization.
func periodFromEvent(ev ics.Event, catalog *Catalog) (*Period, error) {
	room, err := catalog.ResolveByLongName(KindRoom, ev.Location)
	if err != nil {
		return nil, fmt.Errorf("event %d location: %w", ev.ID, err)
	}
	course, err := catalog.ResolveByLongName(KindCourse, ev.Summary)
	if err != nil {
		return nil, fmt.Errorf("event %d summary: %w", ev.ID, err)
	}

	cellState := cellStateFromStatus(ev.Status)

	return &Period{
		ID:          ev.ID,
		LessonCode:  lessonCodeFromCategory(ev.Category),
		PeriodText:  ev.Description,
		Start:       ev.Start,
		End:         ev.End,
		Room:        RefLink{Element: room},
		Course:      RefLink{Element: course},
		CellState:   cellState,
		Priority:    10 - ev.Priority,
		IsCancelled: cellState == CellStateCancelled,
		PreExist:    true,
	}, nil
}

// Merge combines reconstructed periods with freshly fetched ones.
// Fresh data always wins over stale data for the same identifier; the
// surviving reconstructed periods are prepended so the fresh ordering
// is preserved.
func Merge(previous, fresh []*Period, logger *zap.Logger) []*Period {
	freshIDs := make(map[int]struct{}, len(fresh))
	for _, p := range fresh {
		freshIDs[p.ID] = struct{}{}
	}

	var kept []*Period
	for _, p := range previous {
		if _, exists := freshIDs[p.ID]; exists {
			continue
		}
		kept = append(kept, p)
	}

	logger.Info("Previous calendar merged",
		zap.Int("previous_count", len(previous)),
		zap.Int("kept_count", len(kept)),
		zap.Int("fresh_count", len(fresh)))

	return append(kept, fresh...)
}
