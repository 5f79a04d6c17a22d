package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rtoms/punchclock/internal/domain"
	"github.com/rtoms/punchclock/internal/repository/sqlite"
	"github.com/rtoms/punchclock/internal/service"
)

// testClock is a settable wall clock for driving the service in tests.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(start time.Time) *testClock {
	return &testClock{now: start}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var testStart = time.Date(2024, 3, 11, 9, 0, 0, 0, time.Local)

func newTestAttendanceService(t *testing.T) (*service.AttendanceService, *testClock, *sqlite.DB) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	clock := newTestClock(testStart)
	svc := service.NewAttendanceService(db.Records(), db.Reports(), clock.Now)
	return svc, clock, db
}

func TestAttendanceService_FullDay(t *testing.T) {
	svc, clock, _ := newTestAttendanceService(t)
	ctx := context.Background()

	rec, err := svc.ClockIn(ctx, "u1", "Ada")
	if err != nil {
		t.Fatalf("ClockIn: %v", err)
	}
	if rec.Status != domain.StatusWorking {
		t.Fatalf("expected working, got %q", rec.Status)
	}

	clock.Advance(10 * time.Minute)
	if _, err := svc.StartBreak(ctx, "u1"); err != nil {
		t.Fatalf("StartBreak: %v", err)
	}

	clock.Advance(5 * time.Minute)
	_, d, err := svc.EndBreak(ctx, "u1")
	if err != nil {
		t.Fatalf("EndBreak: %v", err)
	}
	if d != 5*time.Minute {
		t.Fatalf("expected 5m break, got %v", d)
	}

	clock.Advance(45 * time.Minute)
	report, err := svc.ClockOut(ctx, "u1")
	if err != nil {
		t.Fatalf("ClockOut: %v", err)
	}
	if report.TotalSeconds != 3600 {
		t.Fatalf("expected 3600s total, got %d", report.TotalSeconds)
	}
	if report.BreakSeconds != 300 {
		t.Fatalf("expected 300s break, got %d", report.BreakSeconds)
	}
	if report.NetSeconds != 3300 {
		t.Fatalf("expected 3300s net, got %d", report.NetSeconds)
	}

	// The live record is gone: the user is off the clock.
	snap, err := svc.Status(ctx, "u1")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if snap.Status != domain.StatusOff {
		t.Fatalf("expected off after clock-out, got %q", snap.Status)
	}
}

func TestAttendanceService_ClockInTwice(t *testing.T) {
	svc, clock, _ := newTestAttendanceService(t)
	ctx := context.Background()

	if _, err := svc.ClockIn(ctx, "u1", "Ada"); err != nil {
		t.Fatalf("ClockIn: %v", err)
	}
	clock.Advance(time.Minute)

	_, err := svc.ClockIn(ctx, "u1", "Ada")
	rej, ok := domain.AsRejection(err)
	if !ok {
		t.Fatalf("expected rejection, got %v", err)
	}
	if rej.Reason != domain.RejectAlreadyActive {
		t.Fatalf("expected AlreadyActive, got %q", rej.Reason)
	}
	if !rej.WorkStart.Equal(testStart) {
		t.Fatalf("rejection should carry the first clock-in time, got %v", rej.WorkStart)
	}
}

func TestAttendanceService_EmptyUserID(t *testing.T) {
	svc, _, _ := newTestAttendanceService(t)
	ctx := context.Background()

	if _, err := svc.ClockIn(ctx, "", "Ada"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("ClockIn: expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.StartBreak(ctx, ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("StartBreak: expected ErrInvalidInput, got %v", err)
	}
	if _, _, err := svc.EndBreak(ctx, ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("EndBreak: expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.ClockOut(ctx, ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("ClockOut: expected ErrInvalidInput, got %v", err)
	}
}

func TestAttendanceService_ClockOutWithoutClockIn(t *testing.T) {
	svc, _, db := newTestAttendanceService(t)
	ctx := context.Background()

	_, err := svc.ClockOut(ctx, "ghost")
	if rej, ok := domain.AsRejection(err); !ok || rej.Reason != domain.RejectNotWorking {
		t.Fatalf("expected NotWorking rejection, got %v", err)
	}

	// No record and no report may appear as a side effect.
	if _, err := db.Records().Get(ctx, "ghost"); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	count, err := db.Reports().CountByUser(ctx, "ghost")
	if err != nil {
		t.Fatalf("CountByUser: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no archived reports, got %d", count)
	}
}

func TestAttendanceService_ClockOutAutoClosesBreak(t *testing.T) {
	svc, clock, _ := newTestAttendanceService(t)
	ctx := context.Background()

	if _, err := svc.ClockIn(ctx, "u1", "Ada"); err != nil {
		t.Fatalf("ClockIn: %v", err)
	}
	clock.Advance(30 * time.Minute)
	if _, err := svc.StartBreak(ctx, "u1"); err != nil {
		t.Fatalf("StartBreak: %v", err)
	}
	clock.Advance(30 * time.Minute)

	// Clock out while still on break.
	report, err := svc.ClockOut(ctx, "u1")
	if err != nil {
		t.Fatalf("ClockOut: %v", err)
	}
	if report.BreakSeconds != 1800 {
		t.Fatalf("auto-closed break should count, got %d", report.BreakSeconds)
	}
	if report.NetSeconds != 1800 {
		t.Fatalf("expected 1800s net, got %d", report.NetSeconds)
	}
}

func TestAttendanceService_StatusMidSession(t *testing.T) {
	svc, clock, _ := newTestAttendanceService(t)
	ctx := context.Background()

	if _, err := svc.ClockIn(ctx, "u1", "Ada"); err != nil {
		t.Fatalf("ClockIn: %v", err)
	}
	clock.Advance(20 * time.Minute)
	if _, err := svc.StartBreak(ctx, "u1"); err != nil {
		t.Fatalf("StartBreak: %v", err)
	}
	clock.Advance(10 * time.Minute)

	snap, err := svc.Status(ctx, "u1")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if snap.Status != domain.StatusOnBreak {
		t.Fatalf("expected on break, got %q", snap.Status)
	}
	if snap.Stats.TotalElapsed != 30*time.Minute {
		t.Fatalf("expected 30m elapsed, got %v", snap.Stats.TotalElapsed)
	}
	if snap.Stats.BreakTotal != 10*time.Minute {
		t.Fatalf("open break should count up to now, got %v", snap.Stats.BreakTotal)
	}

	// Repeated reads at the same instant are identical and change nothing.
	again, err := svc.Status(ctx, "u1")
	if err != nil {
		t.Fatalf("Status again: %v", err)
	}
	if *again != *snap {
		t.Fatalf("status reads differ: %+v vs %+v", snap, again)
	}
}

func TestAttendanceService_DoubleBreakStart(t *testing.T) {
	svc, clock, db := newTestAttendanceService(t)
	ctx := context.Background()

	if _, err := svc.ClockIn(ctx, "u1", "Ada"); err != nil {
		t.Fatalf("ClockIn: %v", err)
	}
	clock.Advance(time.Minute)
	if _, err := svc.StartBreak(ctx, "u1"); err != nil {
		t.Fatalf("first StartBreak: %v", err)
	}

	_, err := svc.StartBreak(ctx, "u1")
	if rej, ok := domain.AsRejection(err); !ok || rej.Reason != domain.RejectAlreadyOnBreak {
		t.Fatalf("expected AlreadyOnBreak, got %v", err)
	}

	// The persisted record still has exactly one open interval.
	rec, err := db.Records().Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(rec.Breaks) != 1 {
		t.Fatalf("expected 1 break, got %d", len(rec.Breaks))
	}
	if rec.OpenBreak() == nil {
		t.Fatal("expected the break to still be open")
	}
}

func TestAttendanceService_ConcurrentBreakStarts(t *testing.T) {
	svc, clock, db := newTestAttendanceService(t)
	ctx := context.Background()

	if _, err := svc.ClockIn(ctx, "u1", "Ada"); err != nil {
		t.Fatalf("ClockIn: %v", err)
	}
	clock.Advance(time.Minute)

	// Racing break starts for the same user must not both succeed.
	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.StartBreak(ctx, "u1")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, rejected int
	for err := range results {
		if err == nil {
			succeeded++
		} else if _, ok := domain.AsRejection(err); ok {
			rejected++
		} else {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 || rejected != 1 {
		t.Fatalf("expected exactly one success and one rejection, got %d/%d", succeeded, rejected)
	}

	rec, err := db.Records().Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(rec.Breaks) != 1 {
		t.Fatalf("expected exactly one break interval, got %d", len(rec.Breaks))
	}
}

func TestAttendanceService_ReportsArchive(t *testing.T) {
	svc, clock, _ := newTestAttendanceService(t)
	ctx := context.Background()

	// Two sessions back to back.
	for i := 0; i < 2; i++ {
		if _, err := svc.ClockIn(ctx, "u1", "Ada"); err != nil {
			t.Fatalf("ClockIn %d: %v", i, err)
		}
		clock.Advance(time.Hour)
		if _, err := svc.ClockOut(ctx, "u1"); err != nil {
			t.Fatalf("ClockOut %d: %v", i, err)
		}
	}

	reports, err := svc.Reports(ctx, "u1", 10, 0)
	if err != nil {
		t.Fatalf("Reports: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("expected 2 archived reports, got %d", len(reports))
	}
	// Newest first.
	if !reports[0].EndedAt.After(reports[1].EndedAt) {
		t.Fatalf("reports not ordered newest first: %v, %v", reports[0].EndedAt, reports[1].EndedAt)
	}
	// Archival is stamped by the service clock, not the wall clock.
	for _, rep := range reports {
		if !rep.CreatedAt.Equal(rep.EndedAt) {
			t.Fatalf("CreatedAt should match the clock-out instant: %+v", rep)
		}
	}

	count, err := svc.CountReports(ctx, "u1")
	if err != nil {
		t.Fatalf("CountReports: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected count 2, got %d", count)
	}
}
