// Package task implements the kanban work items and their forward-linear
// status transitions.
package task

import (
	"errors"
	"time"
)

// Status is a kanban column.
type Status string

const (
	StatusTodo  Status = "todo"
	StatusDoing Status = "doing"
	StatusDone  Status = "done"
)

// Priority orders tasks within a column.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var (
	// ErrNotFound indicates the requested task does not exist.
	ErrNotFound = errors.New("task not found")
	// ErrEmptyText rejects tasks without text.
	ErrEmptyText = errors.New("task text required")
	// ErrInvalidStatus rejects unknown status values.
	ErrInvalidStatus = errors.New("invalid task status")
	// ErrInvalidPriority rejects unknown priority values.
	ErrInvalidPriority = errors.New("invalid task priority")
)

// ValidStatus reports whether s is a known status.
func ValidStatus(s Status) bool {
	return s == StatusTodo || s == StatusDoing || s == StatusDone
}

// ValidPriority reports whether p is a known priority.
func ValidPriority(p Priority) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Task is one work item on a user's board.
type Task struct {
	ID         string     `json:"id"`
	UserID     string     `json:"userId"`
	OwnerName  string     `json:"ownerName,omitempty"`
	Text       string     `json:"text"`
	Status     Status     `json:"status"`
	Priority   Priority   `json:"priority"`
	CreatedAt  time.Time  `json:"createdAt"`
	StartedAt  *time.Time `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt"`
}

// rank gives statuses their board order for transition direction checks.
func rank(s Status) int {
	switch s {
	case StatusTodo:
		return 0
	case StatusDoing:
		return 1
	case StatusDone:
		return 2
	}
	return -1
}

// Transition moves the task to next and maintains the lifecycle timestamps:
// started_at is stamped when first entering doing, finished_at when entering
// done, and a backward move clears the timestamp of every stage left behind.
func (t *Task) Transition(next Status, now time.Time) error {
	if !ValidStatus(next) {
		return ErrInvalidStatus
	}
	if next == t.Status {
		return nil
	}

	forward := rank(next) > rank(t.Status)
	if forward {
		if next == StatusDoing || (next == StatusDone && t.StartedAt == nil) {
			at := now
			if t.StartedAt == nil {
				t.StartedAt = &at
			}
		}
		if next == StatusDone {
			at := now
			t.FinishedAt = &at
		}
	} else {
		if rank(next) < rank(StatusDone) {
			t.FinishedAt = nil
		}
		if rank(next) < rank(StatusDoing) {
			t.StartedAt = nil
		}
	}

	t.Status = next
	return nil
}
