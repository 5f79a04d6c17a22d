package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rtoms/punchclock/internal/domain"
)

// ReportRepository implements domain.ReportStore using SQLite.
type ReportRepository struct {
	db *sql.DB
}

// NewReportRepository creates a new SQLite-backed ReportRepository.
func NewReportRepository(db *DB) *ReportRepository {
	return &ReportRepository{db: db.SqlDB}
}

// Create stores the report as given; CreatedAt is supplied by the caller.
func (r *ReportRepository) Create(ctx context.Context, report *domain.SessionReport) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO session_reports (id, user_id, display_name, started_at, ended_at,
		 total_seconds, break_seconds, net_seconds, efficiency, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.ID, report.UserID, report.DisplayName,
		report.StartedAt.Unix(), report.EndedAt.Unix(),
		report.TotalSeconds, report.BreakSeconds, report.NetSeconds,
		report.Efficiency, report.CreatedAt.Unix(),
	); err != nil {
		return fmt.Errorf("insert session report: %w", err)
	}
	return nil
}

func (r *ReportRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.SessionReport, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, display_name, started_at, ended_at,
		 total_seconds, break_seconds, net_seconds, efficiency, created_at
		 FROM session_reports
		 WHERE user_id = ?
		 ORDER BY ended_at DESC
		 LIMIT ? OFFSET ?`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list session reports: %w", err)
	}
	defer rows.Close()

	var reports []domain.SessionReport
	for rows.Next() {
		var rep domain.SessionReport
		var startedAt, endedAt, createdAt int64
		if err := rows.Scan(&rep.ID, &rep.UserID, &rep.DisplayName,
			&startedAt, &endedAt,
			&rep.TotalSeconds, &rep.BreakSeconds, &rep.NetSeconds,
			&rep.Efficiency, &createdAt); err != nil {
			return nil, fmt.Errorf("scan session report: %w", err)
		}
		rep.StartedAt = time.Unix(startedAt, 0)
		rep.EndedAt = time.Unix(endedAt, 0)
		rep.CreatedAt = time.Unix(createdAt, 0)
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}

func (r *ReportRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM session_reports WHERE user_id = ?", userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count session reports: %w", err)
	}
	return count, nil
}
