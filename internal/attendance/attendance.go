// Package attendance implements the check-in/check-out state machine and the
// ledger it writes to. The ledger keeps exactly one record per (user, day)
// and is the source of truth; the denormalized status fields on the user row
// are a cache updated in the same transaction as every ledger write.
package attendance

import (
	"errors"
	"time"

	"workforce/internal/daykey"
)

// Status is the per-day state of a user.
type Status string

const (
	StatusAbsent     Status = "absent"
	StatusCheckedIn  Status = "checked_in"
	StatusCheckedOut Status = "checked_out"
)

var (
	// ErrAlreadyCheckedIn rejects a second check-in on the same day,
	// including after a check-out.
	ErrAlreadyCheckedIn = errors.New("already checked in today")
	// ErrNotCheckedIn rejects a check-out with no open record for today.
	ErrNotCheckedIn = errors.New("not checked in today")
	// ErrAlreadyCheckedOut rejects a second check-out on the same day.
	ErrAlreadyCheckedOut = errors.New("already checked out today")
	// ErrNotFound indicates no ledger record exists for a (user, day) pair.
	ErrNotFound = errors.New("attendance record not found")
)

// Record is one immutable ledger entry per (user, day). CheckOutTime is set
// exactly once; the record is never deleted or re-created for a given day.
type Record struct {
	ID           string     `json:"id"`
	UserID       string     `json:"userId"`
	Day          daykey.Key `json:"day"`
	CheckInTime  time.Time  `json:"checkInTime"`
	CheckOutTime *time.Time `json:"checkOutTime"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// Event describes a completed transition, published for async consumers.
type Event struct {
	Kind   string     `json:"kind"` // "checkin" or "checkout"
	UserID string     `json:"userId"`
	Day    daykey.Key `json:"day"`
	At     time.Time  `json:"at"`
}

// Status derives the day state from the record itself.
func (r *Record) Status() Status {
	if r == nil {
		return StatusAbsent
	}
	if r.CheckOutTime != nil {
		return StatusCheckedOut
	}
	return StatusCheckedIn
}
