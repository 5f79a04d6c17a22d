package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rtoms/punchclock/internal/domain"
)

// RecordRepository implements domain.RecordStore using SQLite. Timestamps
// persist as unix seconds; break intervals live in a child table ordered
// by insertion sequence, so a round trip preserves break order exactly.
type RecordRepository struct {
	db *sql.DB
}

// NewRecordRepository creates a new SQLite-backed RecordRepository.
func NewRecordRepository(db *DB) *RecordRepository {
	return &RecordRepository{db: db.SqlDB}
}

func (r *RecordRepository) Get(ctx context.Context, userID string) (*domain.AttendanceRecord, error) {
	rec := &domain.AttendanceRecord{UserID: userID}
	var workStart int64
	err := r.db.QueryRowContext(ctx,
		`SELECT display_name, status, work_start
		 FROM attendance_records WHERE user_id = ?`, userID,
	).Scan(&rec.DisplayName, &rec.Status, &workStart)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get attendance record: %w", err)
	}
	rec.WorkStart = time.Unix(workStart, 0)

	rows, err := r.db.QueryContext(ctx,
		`SELECT start_at, end_at FROM attendance_breaks
		 WHERE user_id = ? ORDER BY seq`, userID)
	if err != nil {
		return nil, fmt.Errorf("list breaks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var start int64
		var end sql.NullInt64
		if err := rows.Scan(&start, &end); err != nil {
			return nil, fmt.Errorf("scan break: %w", err)
		}
		b := domain.BreakInterval{Start: time.Unix(start, 0)}
		if end.Valid {
			t := time.Unix(end.Int64, 0)
			b.End = &t
		}
		rec.Breaks = append(rec.Breaks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate breaks: %w", err)
	}
	return rec, nil
}

func (r *RecordRepository) Put(ctx context.Context, rec *domain.AttendanceRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO attendance_records (user_id, display_name, status, work_start)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		 display_name = excluded.display_name,
		 status = excluded.status,
		 work_start = excluded.work_start`,
		rec.UserID, rec.DisplayName, rec.Status, rec.WorkStart.Unix(),
	); err != nil {
		return fmt.Errorf("upsert attendance record: %w", err)
	}

	// Replace the break list wholesale; seq preserves insertion order.
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM attendance_breaks WHERE user_id = ?", rec.UserID); err != nil {
		return fmt.Errorf("clear breaks: %w", err)
	}
	for i, b := range rec.Breaks {
		var end sql.NullInt64
		if b.End != nil {
			end = sql.NullInt64{Int64: b.End.Unix(), Valid: true}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO attendance_breaks (user_id, seq, start_at, end_at)
			 VALUES (?, ?, ?, ?)`,
			rec.UserID, i, b.Start.Unix(), end,
		); err != nil {
			return fmt.Errorf("insert break: %w", err)
		}
	}

	return tx.Commit()
}

func (r *RecordRepository) Delete(ctx context.Context, userID string) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM attendance_records WHERE user_id = ?", userID)
	if err != nil {
		return fmt.Errorf("delete attendance record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
