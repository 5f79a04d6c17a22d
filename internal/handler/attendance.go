package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/rtoms/punchclock/internal/domain"
	"github.com/rtoms/punchclock/internal/service"
)

// AttendanceHandler handles attendance command and query requests.
type AttendanceHandler struct {
	attendance *service.AttendanceService
}

// NewAttendanceHandler creates a new AttendanceHandler.
func NewAttendanceHandler(attendance *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

type clockInRequest struct {
	DisplayName string `json:"displayName"`
}

// HandleClockIn starts a session for the user.
func (h *AttendanceHandler) HandleClockIn(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")

	// The body is optional; clock-in without a display name is fine.
	var req clockInRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	rec, err := h.attendance.ClockIn(r.Context(), userID, req.DisplayName)
	if err != nil {
		handleAttendanceError(w, err, "clock in")
		return
	}
	writeJSON(w, http.StatusCreated, toRecordDTO(rec))
}

// HandleBreakStart opens a break on the user's running session.
func (h *AttendanceHandler) HandleBreakStart(w http.ResponseWriter, r *http.Request) {
	rec, err := h.attendance.StartBreak(r.Context(), r.PathValue("id"))
	if err != nil {
		handleAttendanceError(w, err, "start break")
		return
	}
	writeJSON(w, http.StatusOK, toRecordDTO(rec))
}

// HandleBreakEnd closes the user's open break.
func (h *AttendanceHandler) HandleBreakEnd(w http.ResponseWriter, r *http.Request) {
	rec, d, err := h.attendance.EndBreak(r.Context(), r.PathValue("id"))
	if err != nil {
		handleAttendanceError(w, err, "end break")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"record":        toRecordDTO(rec),
		"breakSeconds":  int64(d / time.Second),
		"breakDuration": service.FormatHMS(d),
	})
}

// HandleClockOut ends the user's session and returns the day's report.
func (h *AttendanceHandler) HandleClockOut(w http.ResponseWriter, r *http.Request) {
	report, err := h.attendance.ClockOut(r.Context(), r.PathValue("id"))
	if err != nil {
		handleAttendanceError(w, err, "clock out")
		return
	}
	writeJSON(w, http.StatusOK, toReportDTO(report))
}

// HandleStatus reports the user's current state and live stats. Always
// 200; an unknown user is simply off the clock.
func (h *AttendanceHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	snap, err := h.attendance.Status(r.Context(), r.PathValue("id"))
	if err != nil {
		slog.Error("status", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, toStatusDTO(snap))
}

// HandleReports lists the user's archived session reports, newest first.
func (h *AttendanceHandler) HandleReports(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	limit := queryInt(r, "limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	reports, err := h.attendance.Reports(r.Context(), userID, limit, offset)
	if err != nil {
		slog.Error("list reports", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	total, err := h.attendance.CountReports(r.Context(), userID)
	if err != nil {
		slog.Error("count reports", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"reports": toReportDTOs(reports),
		"total":   total,
	})
}

// handleAttendanceError maps transition rejections to 409 responses with
// a machine-readable code; anything else is a store fault.
func handleAttendanceError(w http.ResponseWriter, err error, op string) {
	if rej, ok := domain.AsRejection(err); ok {
		body := map[string]any{
			"code":    string(rej.Reason),
			"message": rejectionMessage(rej),
		}
		if rej.Reason == domain.RejectAlreadyActive {
			body["workStart"] = rej.WorkStart.Format(time.RFC3339)
		}
		writeJSON(w, http.StatusConflict, body)
		return
	}
	if errors.Is(err, domain.ErrInvalidInput) {
		writeError(w, http.StatusBadRequest, "invalid input")
		return
	}
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	slog.Error(op, "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func rejectionMessage(rej *domain.Rejection) string {
	switch rej.Reason {
	case domain.RejectAlreadyActive:
		return "already clocked in at " + rej.WorkStart.Format(time.TimeOnly)
	case domain.RejectNotWorking:
		return "not clocked in yet"
	case domain.RejectAlreadyOnBreak:
		return "already on a break"
	case domain.RejectNotOnBreak:
		return "not on a break"
	}
	return "operation not allowed"
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
