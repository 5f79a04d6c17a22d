package handler

import (
	"net/http"
	"time"

	"github.com/rtoms/punchclock/internal/service"
)

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, attendance *service.AttendanceService) {
	att := NewAttendanceHandler(attendance)
	live := NewLiveHandler(attendance, time.Second)

	mux.HandleFunc("GET /healthz", HandleHealthz)

	mux.HandleFunc("POST /api/users/{id}/clock-in", att.HandleClockIn)
	mux.HandleFunc("POST /api/users/{id}/breaks/start", att.HandleBreakStart)
	mux.HandleFunc("POST /api/users/{id}/breaks/end", att.HandleBreakEnd)
	mux.HandleFunc("POST /api/users/{id}/clock-out", att.HandleClockOut)
	mux.HandleFunc("GET /api/users/{id}/status", att.HandleStatus)
	mux.HandleFunc("GET /api/users/{id}/reports", att.HandleReports)

	mux.HandleFunc("GET /users/{id}/live", live.HandleLive)
}
