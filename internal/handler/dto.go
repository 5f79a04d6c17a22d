package handler

import (
	"time"

	"github.com/rtoms/punchclock/internal/domain"
	"github.com/rtoms/punchclock/internal/service"
)

// BreakDTO is the JSON representation of one break interval. End is null
// while the break is ongoing.
type BreakDTO struct {
	Start string  `json:"start"`
	End   *string `json:"end"`
}

// RecordDTO is the JSON representation of a live attendance record.
type RecordDTO struct {
	UserID      string     `json:"userId"`
	DisplayName string     `json:"displayName"`
	Status      string     `json:"status"`
	WorkStart   string     `json:"workStart"`
	Breaks      []BreakDTO `json:"breaks"`
}

func toRecordDTO(rec *domain.AttendanceRecord) RecordDTO {
	breaks := make([]BreakDTO, len(rec.Breaks))
	for i, b := range rec.Breaks {
		breaks[i] = BreakDTO{Start: b.Start.Format(time.RFC3339)}
		if b.End != nil {
			t := b.End.Format(time.RFC3339)
			breaks[i].End = &t
		}
	}
	return RecordDTO{
		UserID:      rec.UserID,
		DisplayName: rec.DisplayName,
		Status:      rec.Status,
		WorkStart:   rec.WorkStart.Format(time.RFC3339),
		Breaks:      breaks,
	}
}

// StatsDTO is the JSON representation of duration accounting, with both
// raw seconds and rendered H:MM:SS forms.
type StatsDTO struct {
	TotalSeconds int64   `json:"totalSeconds"`
	BreakSeconds int64   `json:"breakSeconds"`
	NetSeconds   int64   `json:"netSeconds"`
	Total        string  `json:"total"`
	Break        string  `json:"break"`
	Net          string  `json:"net"`
	Efficiency   float64 `json:"efficiency"`
}

func toStatsDTO(s service.DailyStats) StatsDTO {
	return StatsDTO{
		TotalSeconds: int64(s.TotalElapsed / time.Second),
		BreakSeconds: int64(s.BreakTotal / time.Second),
		NetSeconds:   int64(s.NetWork / time.Second),
		Total:        service.FormatHMS(s.TotalElapsed),
		Break:        service.FormatHMS(s.BreakTotal),
		Net:          service.FormatHMS(s.NetWork),
		Efficiency:   s.Efficiency,
	}
}

// StatusDTO is the JSON representation of a status snapshot. Everything
// past Status is omitted for a user who is off the clock.
type StatusDTO struct {
	Status      string    `json:"status"`
	AsOf        string    `json:"asOf"`
	DisplayName string    `json:"displayName,omitempty"`
	WorkStart   string    `json:"workStart,omitempty"`
	Stats       *StatsDTO `json:"stats,omitempty"`
}

func toStatusDTO(snap *service.StatusSnapshot) StatusDTO {
	dto := StatusDTO{
		Status: snap.Status,
		AsOf:   snap.AsOf.Format(time.RFC3339),
	}
	if snap.Status == domain.StatusOff {
		return dto
	}
	dto.DisplayName = snap.DisplayName
	dto.WorkStart = snap.WorkStart.Format(time.RFC3339)
	stats := toStatsDTO(snap.Stats)
	dto.Stats = &stats
	return dto
}

// ReportDTO is the JSON representation of an archived session report.
type ReportDTO struct {
	ID           string  `json:"id"`
	UserID       string  `json:"userId"`
	DisplayName  string  `json:"displayName"`
	StartedAt    string  `json:"startedAt"`
	EndedAt      string  `json:"endedAt"`
	TotalSeconds int64   `json:"totalSeconds"`
	BreakSeconds int64   `json:"breakSeconds"`
	NetSeconds   int64   `json:"netSeconds"`
	Efficiency   float64 `json:"efficiency"`
	Text         string  `json:"text"`
}

func toReportDTO(r *domain.SessionReport) ReportDTO {
	return ReportDTO{
		ID:           r.ID,
		UserID:       r.UserID,
		DisplayName:  r.DisplayName,
		StartedAt:    r.StartedAt.Format(time.RFC3339),
		EndedAt:      r.EndedAt.Format(time.RFC3339),
		TotalSeconds: r.TotalSeconds,
		BreakSeconds: r.BreakSeconds,
		NetSeconds:   r.NetSeconds,
		Efficiency:   r.Efficiency,
		Text:         service.ReportText(r),
	}
}

func toReportDTOs(reports []domain.SessionReport) []ReportDTO {
	dtos := make([]ReportDTO, len(reports))
	for i := range reports {
		dtos[i] = toReportDTO(&reports[i])
	}
	return dtos
}
