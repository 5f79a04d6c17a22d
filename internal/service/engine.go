package service

import (
	"time"

	"github.com/rtoms/punchclock/internal/domain"
)

// The attendance engine is a set of pure transition functions over one
// record and a wall-clock instant. A nil record means the user is off the
// clock. Functions return a *domain.Rejection for disallowed transitions
// and never mutate the record when they reject.

// DailyStats is the duration accounting for one session, at second
// granularity. Clamped reports that at least one term was forced to zero
// by a clock anomaly (an end preceding its start).
type DailyStats struct {
	TotalElapsed time.Duration
	BreakTotal   time.Duration
	NetWork      time.Duration
	Efficiency   float64 // percent of elapsed time spent working
	Clamped      bool
}

// BeginWork starts a session for the user. Rejects with
// RejectAlreadyActive if any session is already running.
func BeginWork(rec *domain.AttendanceRecord, userID, displayName string, now time.Time) (*domain.AttendanceRecord, error) {
	if rec != nil {
		return nil, &domain.Rejection{Reason: domain.RejectAlreadyActive, WorkStart: rec.WorkStart}
	}
	return &domain.AttendanceRecord{
		UserID:      userID,
		DisplayName: displayName,
		Status:      domain.StatusWorking,
		WorkStart:   now,
	}, nil
}

// BeginBreak opens a break interval on a working record.
func BeginBreak(rec *domain.AttendanceRecord, now time.Time) error {
	if rec == nil {
		return &domain.Rejection{Reason: domain.RejectNotWorking}
	}
	if rec.Status == domain.StatusOnBreak {
		return &domain.Rejection{Reason: domain.RejectAlreadyOnBreak}
	}
	rec.Breaks = append(rec.Breaks, domain.BreakInterval{Start: now})
	rec.Status = domain.StatusOnBreak
	return nil
}

// EndBreak closes the open break interval and returns its duration.
// A zero-length break (resume in the same second) is valid; an interval
// whose start is after now is clamped to zero, never negative.
func EndBreak(rec *domain.AttendanceRecord, now time.Time) (time.Duration, error) {
	if rec == nil {
		return 0, &domain.Rejection{Reason: domain.RejectNotWorking}
	}
	if rec.Status != domain.StatusOnBreak {
		return 0, &domain.Rejection{Reason: domain.RejectNotOnBreak}
	}
	open := rec.OpenBreak()
	end := now
	open.End = &end
	rec.Status = domain.StatusWorking
	d, _ := clampSeconds(open.Start, now)
	return d, nil
}

// EndWork closes the session: any open break is closed at now first, then
// the day's stats are computed. The caller is responsible for erasing the
// record afterwards; the returned record carries the final break list for
// report rendering.
func EndWork(rec *domain.AttendanceRecord, now time.Time) (DailyStats, error) {
	if rec == nil {
		return DailyStats{}, &domain.Rejection{Reason: domain.RejectNotWorking}
	}
	if rec.Status == domain.StatusOnBreak {
		if _, err := EndBreak(rec, now); err != nil {
			return DailyStats{}, err
		}
	}
	return ComputeStats(rec.WorkStart, now, rec.Breaks), nil
}

// SnapshotStats computes live stats for a running session without
// mutating it: an open break is read as if it closed at now, and elapsed
// work is measured up to now.
func SnapshotStats(rec *domain.AttendanceRecord, now time.Time) DailyStats {
	return ComputeStats(rec.WorkStart, now, rec.Breaks)
}

// ComputeStats derives the duration accounting for a session spanning
// [start, end] with the given break intervals. Open intervals are treated
// as closed at end for this computation only. Every term is clamped to
// zero or above, and the efficiency ratio is defined as 0 when no time
// has elapsed.
func ComputeStats(start, end time.Time, breaks []domain.BreakInterval) DailyStats {
	var stats DailyStats

	elapsed, clamped := clampSeconds(start, end)
	stats.TotalElapsed = elapsed
	stats.Clamped = clamped

	for _, b := range breaks {
		until := end
		if !b.Open() {
			until = *b.End
		}
		d, c := clampSeconds(b.Start, until)
		stats.BreakTotal += d
		stats.Clamped = stats.Clamped || c
	}

	stats.NetWork = stats.TotalElapsed - stats.BreakTotal
	if stats.NetWork < 0 {
		stats.NetWork = 0
		stats.Clamped = true
	}

	if stats.TotalElapsed > 0 {
		stats.Efficiency = float64(stats.NetWork) / float64(stats.TotalElapsed) * 100
	}
	return stats
}

// clampSeconds returns to−from truncated to whole seconds, clamped to
// zero when from is after to. The bool reports whether clamping fired.
func clampSeconds(from, to time.Time) (time.Duration, bool) {
	d := to.Sub(from).Truncate(time.Second)
	if d < 0 {
		return 0, true
	}
	return d, false
}
