package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rtoms/punchclock/internal/domain"
)

// HMS is a duration decomposed for display.
type HMS struct {
	Hours   int
	Minutes int
	Seconds int
}

// SplitHMS decomposes a duration into whole hours, minutes and seconds.
// Negative durations decompose as zero.
func SplitHMS(d time.Duration) HMS {
	if d < 0 {
		d = 0
	}
	s := int(d / time.Second)
	return HMS{
		Hours:   s / 3600,
		Minutes: (s % 3600) / 60,
		Seconds: s % 60,
	}
}

// FormatHMS renders a duration as H:MM:SS.
func FormatHMS(d time.Duration) string {
	h := SplitHMS(d)
	return fmt.Sprintf("%d:%02d:%02d", h.Hours, h.Minutes, h.Seconds)
}

// buildReport assembles the archived report for a session that ran from
// rec.WorkStart to endedAt with the given stats. CreatedAt comes from
// the same clock reading as endedAt, so archived rows are deterministic
// under an injected clock.
func buildReport(rec *domain.AttendanceRecord, stats DailyStats, endedAt time.Time) *domain.SessionReport {
	return &domain.SessionReport{
		ID:           uuid.NewString(),
		UserID:       rec.UserID,
		DisplayName:  rec.DisplayName,
		StartedAt:    rec.WorkStart,
		EndedAt:      endedAt,
		TotalSeconds: int64(stats.TotalElapsed / time.Second),
		BreakSeconds: int64(stats.BreakTotal / time.Second),
		NetSeconds:   int64(stats.NetWork / time.Second),
		Efficiency:   stats.Efficiency,
		CreatedAt:    endedAt,
	}
}

// ReportText renders the end-of-day summary for a report.
func ReportText(report *domain.SessionReport) string {
	name := report.DisplayName
	if name == "" {
		name = report.UserID
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Daily summary for %s\n", name)
	fmt.Fprintf(&b, "Clocked in:  %s\n", report.StartedAt.Format(time.TimeOnly))
	fmt.Fprintf(&b, "Clocked out: %s\n", report.EndedAt.Format(time.TimeOnly))
	fmt.Fprintf(&b, "On the clock: %s\n", FormatHMS(time.Duration(report.TotalSeconds)*time.Second))
	fmt.Fprintf(&b, "On break:     %s\n", FormatHMS(time.Duration(report.BreakSeconds)*time.Second))
	fmt.Fprintf(&b, "Worked:       %s\n", FormatHMS(time.Duration(report.NetSeconds)*time.Second))
	fmt.Fprintf(&b, "Efficiency:   %.1f%%", report.Efficiency)
	return b.String()
}
