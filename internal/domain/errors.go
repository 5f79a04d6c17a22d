package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// RejectReason identifies why the engine refused a transition.
type RejectReason string

const (
	RejectAlreadyActive  RejectReason = "already_active"
	RejectNotWorking     RejectReason = "not_working"
	RejectAlreadyOnBreak RejectReason = "already_on_break"
	RejectNotOnBreak     RejectReason = "not_on_break"
)

// Rejection is a refused state transition. These are expected user-input
// conditions, not system failures: the record is left untouched and the
// caller renders an informational message. For RejectAlreadyActive,
// WorkStart carries when the existing session began.
type Rejection struct {
	Reason    RejectReason
	WorkStart time.Time
}

func (r *Rejection) Error() string {
	if r.Reason == RejectAlreadyActive {
		return fmt.Sprintf("rejected: %s since %s", r.Reason, r.WorkStart.Format(time.TimeOnly))
	}
	return "rejected: " + string(r.Reason)
}

// AsRejection unwraps err into a *Rejection, if it is one.
func AsRejection(err error) (*Rejection, bool) {
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}
