// Package report reconstructs dashboard statistics from the attendance
// ledger and the task store. Everything here is read-only: the same inputs
// always produce the same output and nothing is ever written back.
package report

import (
	"errors"
	"sort"
	"strings"
	"time"

	"workforce/internal/attendance"
	"workforce/internal/daykey"
	"workforce/internal/task"
	"workforce/internal/user"
)

// ErrInvalidRange rejects queries whose end day precedes the start day.
var ErrInvalidRange = errors.New("invalid date range")

// TaskFact is the slice of a task the aggregator needs.
type TaskFact struct {
	UserID     string
	UserName   string
	Status     task.Status
	Priority   task.Priority
	CreatedAt  time.Time
	FinishedAt *time.Time
}

// Summary totals tasks created within a range.
type Summary struct {
	TotalTasks     int `json:"totalTasks"`
	CompletedTasks int `json:"completedTasks"`
	CompletionRate int `json:"completionRate"`
}

// TrendPoint is one day on the productivity chart.
type TrendPoint struct {
	Name      string `json:"name"`
	Created   int    `json:"created"`
	Completed int    `json:"completed"`
}

// StatusCount feeds the status breakdown chart.
type StatusCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// PriorityCount feeds the priority breakdown chart.
type PriorityCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Performer is one row of the completed-task ranking.
type Performer struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Count  int    `json:"count"`
}

// AttendanceRow is one user's attendance for a specific day, reconstructed
// from the ledger. Users without a record for the day render absent.
type AttendanceRow struct {
	UserID       string     `json:"userId"`
	Name         string     `json:"name"`
	CheckInTime  *time.Time `json:"checkInTime"`
	CheckOutTime *time.Time `json:"checkOutTime"`
	IsCheckedIn  bool       `json:"isCheckedIn"`
}

// inRange reports whether t falls inside [from.Start(), to.End()].
func inRange(t time.Time, from, to daykey.Key) bool {
	return !t.Before(from.Start()) && !t.After(to.End())
}

// Summarize counts tasks created within the range and how many of them are
// done. The rate is a rounded percentage and stays 0 when nothing was
// created, so it is always within [0, 100].
func Summarize(facts []TaskFact, from, to daykey.Key) Summary {
	var s Summary
	for _, f := range facts {
		if !inRange(f.CreatedAt, from, to) {
			continue
		}
		s.TotalTasks++
		if f.Status == task.StatusDone {
			s.CompletedTasks++
		}
	}
	if s.TotalTasks > 0 {
		s.CompletionRate = (s.CompletedTasks*100 + s.TotalTasks/2) / s.TotalTasks
	}
	return s
}

// BuildTrend produces one point per day in [from, to]: tasks created that day
// and tasks finished that day.
func BuildTrend(facts []TaskFact, from, to daykey.Key) []TrendPoint {
	created := make(map[daykey.Key]int)
	completed := make(map[daykey.Key]int)
	for _, f := range facts {
		created[daykey.Of(f.CreatedAt)]++
		if f.FinishedAt != nil {
			completed[daykey.Of(*f.FinishedAt)]++
		}
	}

	var points []TrendPoint
	for day := from; !to.Before(day); day = day.Next() {
		points = append(points, TrendPoint{
			Name:      day.String(),
			Created:   created[day],
			Completed: completed[day],
		})
	}
	return points
}

// CountByStatus buckets range-created tasks by board column, in board order.
func CountByStatus(facts []TaskFact, from, to daykey.Key) []StatusCount {
	counts := make(map[task.Status]int)
	for _, f := range facts {
		if inRange(f.CreatedAt, from, to) {
			counts[f.Status]++
		}
	}
	out := make([]StatusCount, 0, 3)
	for _, s := range []task.Status{task.StatusTodo, task.StatusDoing, task.StatusDone} {
		out = append(out, StatusCount{Name: strings.ToUpper(string(s)), Value: counts[s]})
	}
	return out
}

// CountByPriority buckets range-created tasks by priority.
func CountByPriority(facts []TaskFact, from, to daykey.Key) []PriorityCount {
	counts := make(map[task.Priority]int)
	for _, f := range facts {
		if inRange(f.CreatedAt, from, to) {
			counts[f.Priority]++
		}
	}
	out := make([]PriorityCount, 0, 3)
	for _, p := range []task.Priority{task.PriorityLow, task.PriorityMedium, task.PriorityHigh} {
		out = append(out, PriorityCount{Name: strings.ToUpper(string(p)), Count: counts[p]})
	}
	return out
}

// RankPerformers orders users by tasks finished within the range. Ties break
// by name ascending so repeated calls return the same order.
func RankPerformers(facts []TaskFact, from, to daykey.Key, limit int) []Performer {
	type bucket struct {
		userID string
		name   string
		count  int
	}
	byUser := make(map[string]*bucket)
	for _, f := range facts {
		if f.FinishedAt == nil || f.UserID == "" || !inRange(*f.FinishedAt, from, to) {
			continue
		}
		b, ok := byUser[f.UserID]
		if !ok {
			b = &bucket{userID: f.UserID, name: f.UserName}
			byUser[f.UserID] = b
		}
		b.count++
	}

	ranked := make([]Performer, 0, len(byUser))
	for _, b := range byUser {
		ranked = append(ranked, Performer{UserID: b.userID, Name: b.name, Count: b.count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Name < ranked[j].Name
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// ProjectDaily joins every user against the ledger records of one day. Only
// the ledger decides the row state; the live user projection is never
// consulted, so historical days render correctly.
func ProjectDaily(users []user.User, recs []attendance.Record) []AttendanceRow {
	byUser := make(map[string]*attendance.Record, len(recs))
	for i := range recs {
		byUser[recs[i].UserID] = &recs[i]
	}

	rows := make([]AttendanceRow, 0, len(users))
	for _, u := range users {
		row := AttendanceRow{UserID: u.ID, Name: u.Name}
		if rec, ok := byUser[u.ID]; ok {
			in := rec.CheckInTime
			row.CheckInTime = &in
			row.CheckOutTime = rec.CheckOutTime
			row.IsCheckedIn = rec.CheckOutTime == nil
		}
		rows = append(rows, row)
	}
	return rows
}
