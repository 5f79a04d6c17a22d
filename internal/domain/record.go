package domain

import (
	"context"
	"time"
)

// AttendanceRecord tracks one user's work day: when they clocked in and
// every break taken since. A user with no record is off the clock; the
// record only exists between clock-in and clock-out.
type AttendanceRecord struct {
	UserID      string
	DisplayName string
	Status      string
	WorkStart   time.Time
	Breaks      []BreakInterval
}

// BreakInterval is one rest span within a session. End is nil while the
// break is ongoing; at most one interval may be open, and only while the
// record's status is StatusOnBreak, in which case it is the last entry.
type BreakInterval struct {
	Start time.Time
	End   *time.Time
}

const (
	StatusWorking = "working"
	StatusOnBreak = "break"

	// StatusOff is never stored; it is the reported status when no
	// record exists for a user.
	StatusOff = "off"
)

// Open reports whether the interval has not been closed yet.
func (b BreakInterval) Open() bool {
	return b.End == nil
}

// OpenBreak returns a pointer to the record's open break interval, or nil
// if every break is closed.
func (r *AttendanceRecord) OpenBreak() *BreakInterval {
	if len(r.Breaks) == 0 {
		return nil
	}
	last := &r.Breaks[len(r.Breaks)-1]
	if last.Open() {
		return last
	}
	return nil
}

// RecordStore defines persistence for live attendance records, keyed by
// user id. Get must reflect the most recent committed Put for that key.
type RecordStore interface {
	Get(ctx context.Context, userID string) (*AttendanceRecord, error)
	Put(ctx context.Context, record *AttendanceRecord) error
	Delete(ctx context.Context, userID string) error
}
