package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rtoms/punchclock/internal/domain"
)

// Clock supplies the current wall-clock time. Injectable for tests.
type Clock func() time.Time

// AttendanceService drives the attendance state machine against the
// record store. Every mutating operation holds the user's lock across its
// whole load/transition/persist cycle, so concurrent commands for the
// same user serialize instead of racing on a stale snapshot.
type AttendanceService struct {
	records domain.RecordStore
	reports domain.ReportStore
	clock   Clock
	locks   *KeyedMutex
}

// NewAttendanceService creates an AttendanceService. A nil clock defaults
// to time.Now.
func NewAttendanceService(records domain.RecordStore, reports domain.ReportStore, clock Clock) *AttendanceService {
	if clock == nil {
		clock = time.Now
	}
	return &AttendanceService{
		records: records,
		reports: reports,
		clock:   clock,
		locks:   NewKeyedMutex(),
	}
}

func validUserID(userID string) error {
	if userID == "" {
		return fmt.Errorf("user id: %w", domain.ErrInvalidInput)
	}
	return nil
}

// load fetches the user's record, mapping "absent" to a nil record so the
// engine sees the off-the-clock state explicitly.
func (s *AttendanceService) load(ctx context.Context, userID string) (*domain.AttendanceRecord, error) {
	rec, err := s.records.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get record: %w", err)
	}
	return rec, nil
}

// ClockIn starts a session for the user. Rejects when one is already
// running.
func (s *AttendanceService) ClockIn(ctx context.Context, userID, displayName string) (*domain.AttendanceRecord, error) {
	if err := validUserID(userID); err != nil {
		return nil, err
	}
	s.locks.Lock(userID)
	defer s.locks.Unlock(userID)

	rec, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	rec, err = BeginWork(rec, userID, displayName, s.clock())
	if err != nil {
		return nil, err
	}

	if err := s.records.Put(ctx, rec); err != nil {
		return nil, fmt.Errorf("put record: %w", err)
	}
	return rec, nil
}

// StartBreak opens a break on the user's running session.
func (s *AttendanceService) StartBreak(ctx context.Context, userID string) (*domain.AttendanceRecord, error) {
	if err := validUserID(userID); err != nil {
		return nil, err
	}
	s.locks.Lock(userID)
	defer s.locks.Unlock(userID)

	rec, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := BeginBreak(rec, s.clock()); err != nil {
		return nil, err
	}

	if err := s.records.Put(ctx, rec); err != nil {
		return nil, fmt.Errorf("put record: %w", err)
	}
	return rec, nil
}

// EndBreak closes the user's open break and returns the record along
// with the break's duration.
func (s *AttendanceService) EndBreak(ctx context.Context, userID string) (*domain.AttendanceRecord, time.Duration, error) {
	if err := validUserID(userID); err != nil {
		return nil, 0, err
	}
	s.locks.Lock(userID)
	defer s.locks.Unlock(userID)

	rec, err := s.load(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	now := s.clock()
	d, err := EndBreak(rec, now)
	if err != nil {
		return nil, 0, err
	}
	if open := rec.Breaks[len(rec.Breaks)-1]; now.Before(open.Start) {
		slog.Warn("clock anomaly: break closed before it started", "user_id", userID, "start", open.Start, "now", now)
	}

	if err := s.records.Put(ctx, rec); err != nil {
		return nil, 0, fmt.Errorf("put record: %w", err)
	}
	return rec, d, nil
}

// ClockOut ends the user's session: an open break is auto-closed, the
// day's stats are computed and archived, and the live record is deleted.
// The report is archived before the delete so a store fault never loses a
// completed session.
func (s *AttendanceService) ClockOut(ctx context.Context, userID string) (*domain.SessionReport, error) {
	if err := validUserID(userID); err != nil {
		return nil, err
	}
	s.locks.Lock(userID)
	defer s.locks.Unlock(userID)

	rec, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	stats, err := EndWork(rec, now)
	if err != nil {
		return nil, err
	}
	if stats.Clamped {
		slog.Warn("clock anomaly: durations clamped to zero", "user_id", userID, "work_start", rec.WorkStart, "now", now)
	}

	report := buildReport(rec, stats, now)
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("archive report: %w", err)
	}
	if err := s.records.Delete(ctx, userID); err != nil {
		return nil, fmt.Errorf("delete record: %w", err)
	}
	return report, nil
}

// StatusSnapshot is a read-only view of a user's current state. Stats are
// computed as of the snapshot instant; for an off-the-clock user only
// Status is meaningful.
type StatusSnapshot struct {
	Status      string
	DisplayName string
	WorkStart   time.Time
	Stats       DailyStats
	AsOf        time.Time
}

// Status reports the user's current state and live stats. It never
// mutates: an open break is measured up to now without being closed.
func (s *AttendanceService) Status(ctx context.Context, userID string) (*StatusSnapshot, error) {
	rec, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	if rec == nil {
		return &StatusSnapshot{Status: domain.StatusOff, AsOf: now}, nil
	}
	return &StatusSnapshot{
		Status:      rec.Status,
		DisplayName: rec.DisplayName,
		WorkStart:   rec.WorkStart,
		Stats:       SnapshotStats(rec, now),
		AsOf:        now,
	}, nil
}

// Reports lists the user's archived session reports, newest first.
func (s *AttendanceService) Reports(ctx context.Context, userID string, limit, offset int) ([]domain.SessionReport, error) {
	return s.reports.ListByUser(ctx, userID, limit, offset)
}

// CountReports returns the number of archived reports for the user.
func (s *AttendanceService) CountReports(ctx context.Context, userID string) (int, error) {
	return s.reports.CountByUser(ctx, userID)
}
