package timetable

import (
	"time"

	"go.uber.org/zap"
)

// ApplyDSTCorrection shifts every period one hour earlier when the
// given run moment falls within daylight-saving time. The shift is
// uniform and applied exactly once per run; it deliberately keys off
// the run moment, not each period's own date, so ranges spanning a DST
// transition are corrected range-insensitively. Known discrepancy,
// preserved on purpose.
func ApplyDSTCorrection(periods []*Period, now time.Time, logger *zap.Logger) {
	if !now.IsDST() {
		logger.Debug("Run moment outside DST, no correction applied")
		return
	}

	for _, p := range periods {
		p.Start = p.Start.Add(-time.Hour)
		p.End = p.End.Add(-time.Hour)
		if p.Reschedule != nil {
			p.Reschedule.Start = p.Reschedule.Start.Add(-time.Hour)
			p.Reschedule.End = p.Reschedule.End.Add(-time.Hour)
		}
	}

	logger.Info("DST correction applied",
		zap.Int("period_count", len(periods)),
		zap.Time("run_moment", now))
}
