package domain

import (
	"context"
	"time"
)

// SessionReport is the archived outcome of a completed session. The live
// record is deleted on clock-out; the report is what survives the day.
type SessionReport struct {
	ID           string
	UserID       string
	DisplayName  string
	StartedAt    time.Time
	EndedAt      time.Time
	TotalSeconds int64
	BreakSeconds int64
	NetSeconds   int64
	Efficiency   float64
	CreatedAt    time.Time
}

// ReportStore defines persistence for archived session reports.
type ReportStore interface {
	Create(ctx context.Context, report *SessionReport) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]SessionReport, error)
	CountByUser(ctx context.Context, userID string) (int, error)
}
