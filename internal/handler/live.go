package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/rtoms/punchclock/internal/service"
	"github.com/rtoms/punchclock/internal/view"
)

// LiveHandler streams a user's live status over SSE, re-rendering the
// status fragment once per tick. Status reads are pure, so the stream
// never mutates the record it is watching.
type LiveHandler struct {
	attendance *service.AttendanceService
	interval   time.Duration
}

// NewLiveHandler creates a LiveHandler that refreshes at the given
// interval (1s when zero or negative).
func NewLiveHandler(attendance *service.AttendanceService, interval time.Duration) *LiveHandler {
	if interval <= 0 {
		interval = time.Second
	}
	return &LiveHandler{attendance: attendance, interval: interval}
}

// HandleLive patches the live status fragment until the client goes away.
func (h *LiveHandler) HandleLive(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	sse := datastar.NewSSE(w, r)

	if err := h.patchStatus(r, sse, userID); err != nil {
		return
	}

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if err := h.patchStatus(r, sse, userID); err != nil {
				return
			}
		}
	}
}

func (h *LiveHandler) patchStatus(r *http.Request, sse *datastar.ServerSentEventGenerator, userID string) error {
	snap, err := h.attendance.Status(r.Context(), userID)
	if err != nil {
		slog.Error("live status", "error", err, "user_id", userID)
		return err
	}
	return sse.PatchElementTempl(
		view.LiveStatus(snap),
		datastar.WithSelectorID("live-status"),
	)
}
