package report

import (
	"context"
	"database/sql"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"

	"workforce/internal/attendance"
	"workforce/internal/daykey"
	"workforce/internal/difficulty"
	"workforce/internal/user"
)

// LedgerSource reads attendance records for one day.
type LedgerSource interface {
	ForDay(ctx context.Context, day daykey.Key) ([]attendance.Record, error)
}

// UserSource lists users.
type UserSource interface {
	List(ctx context.Context) ([]user.User, error)
}

// DifficultySource lists difficulty entries for one day.
type DifficultySource interface {
	ForDay(ctx context.Context, day daykey.Key) ([]difficulty.Entry, error)
}

// Query selects what the overview covers.
type Query struct {
	From      daykey.Key
	To        daykey.Key
	UserID    string // empty means all users
	DailyDate daykey.Key
	TopLimit  int
}

// UserRef is the id/name pair the dashboard filter dropdown needs.
type UserRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DailyOps bundles the per-day operational view. ActiveMembers comes from
// the ledger; LiveActive is the optional redis gauge the caller may overlay
// for today's view.
type DailyOps struct {
	ActiveMembers  int                `json:"activeMembers"`
	LiveActive     int                `json:"liveActive"`
	CheckInOutData []AttendanceRow    `json:"checkInOutData"`
	Difficulties   []difficulty.Entry `json:"difficulties"`
}

// Overview is the full admin dashboard payload.
type Overview struct {
	Summary       Summary         `json:"summary"`
	TaskTrend     []TrendPoint    `json:"taskTrend"`
	ByStatus      []StatusCount   `json:"byStatus"`
	ByPriority    []PriorityCount `json:"byPriority"`
	TopPerformers []Performer     `json:"topPerformers"`
	DailyOps      DailyOps        `json:"dailyOps"`
	UsersList     []UserRef       `json:"usersList"`
}

// Aggregator builds dashboard views. It only reads; a query error never
// leaves partial writes behind because there are none.
type Aggregator struct {
	db           *sql.DB
	builder      squirrel.StatementBuilderType
	ledger       LedgerSource
	users        UserSource
	difficulties DifficultySource
}

// NewAggregator wires the read model over the shared database handle.
func NewAggregator(db *sql.DB, ledger LedgerSource, users UserSource, difficulties DifficultySource) *Aggregator {
	return &Aggregator{
		db:           db,
		builder:      squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		ledger:       ledger,
		users:        users,
		difficulties: difficulties,
	}
}

// Facts loads every task that was created or finished within the range,
// optionally scoped to one user. The trend needs both populations.
func (a *Aggregator) Facts(ctx context.Context, from, to daykey.Key, userID string) ([]TaskFact, error) {
	window := squirrel.Or{
		squirrel.And{
			squirrel.GtOrEq{"t.created_at": from.Start()},
			squirrel.LtOrEq{"t.created_at": to.End()},
		},
		squirrel.And{
			squirrel.GtOrEq{"t.finished_at": from.Start()},
			squirrel.LtOrEq{"t.finished_at": to.End()},
		},
	}

	q := a.builder.
		Select("COALESCE(t.user_id, '')", "COALESCE(u.name, '')", "t.status", "t.priority", "t.created_at", "t.finished_at").
		From("tasks t").
		LeftJoin("users u ON u.id = t.user_id").
		Where(window)
	if userID != "" {
		q = q.Where(squirrel.Eq{"t.user_id": userID})
	}

	stmt, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build task facts sql: %w", err)
	}
	rows, err := a.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query task facts: %w", err)
	}
	defer rows.Close()

	var facts []TaskFact
	for rows.Next() {
		var (
			f        TaskFact
			finished sql.NullTime
		)
		if err := rows.Scan(&f.UserID, &f.UserName, &f.Status, &f.Priority, &f.CreatedAt, &finished); err != nil {
			return nil, fmt.Errorf("scan task fact: %w", err)
		}
		if finished.Valid {
			t := finished.Time
			f.FinishedAt = &t
		}
		facts = append(facts, f)
	}
	return facts, rows.Err()
}

// RangeSummary computes the range statistics alone; used where the full
// overview is not needed.
func (a *Aggregator) RangeSummary(ctx context.Context, from, to daykey.Key, userID string) (Summary, []TrendPoint, error) {
	if to.Before(from) {
		return Summary{}, nil, ErrInvalidRange
	}
	facts, err := a.Facts(ctx, from, to, userID)
	if err != nil {
		return Summary{}, nil, err
	}
	return Summarize(facts, from, to), BuildTrend(facts, from, to), nil
}

// DailyAttendance reconstructs every user's state for one day from the
// ledger.
func (a *Aggregator) DailyAttendance(ctx context.Context, day daykey.Key) ([]AttendanceRow, error) {
	users, err := a.users.List(ctx)
	if err != nil {
		return nil, err
	}
	recs, err := a.ledger.ForDay(ctx, day)
	if err != nil {
		return nil, err
	}
	return ProjectDaily(users, recs), nil
}

// TopPerformers ranks users by tasks completed within the range.
func (a *Aggregator) TopPerformers(ctx context.Context, from, to daykey.Key, limit int) ([]Performer, error) {
	if to.Before(from) {
		return nil, ErrInvalidRange
	}
	facts, err := a.Facts(ctx, from, to, "")
	if err != nil {
		return nil, err
	}
	return RankPerformers(facts, from, to, limit), nil
}

// Overview assembles the complete dashboard payload for one query.
func (a *Aggregator) Overview(ctx context.Context, q Query) (*Overview, error) {
	if q.To.Before(q.From) {
		return nil, ErrInvalidRange
	}
	if q.TopLimit <= 0 {
		q.TopLimit = 5
	}

	facts, err := a.Facts(ctx, q.From, q.To, q.UserID)
	if err != nil {
		return nil, err
	}

	users, err := a.users.List(ctx)
	if err != nil {
		return nil, err
	}
	recs, err := a.ledger.ForDay(ctx, q.DailyDate)
	if err != nil {
		return nil, err
	}
	entries, err := a.difficulties.ForDay(ctx, q.DailyDate)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []difficulty.Entry{}
	}

	refs := make([]UserRef, 0, len(users))
	for _, u := range users {
		refs = append(refs, UserRef{ID: u.ID, Name: u.Name})
	}

	// Ranking ignores the user filter so the leaderboard stays comparable.
	rankingFacts := facts
	if q.UserID != "" {
		all, err := a.Facts(ctx, q.From, q.To, "")
		if err != nil {
			return nil, err
		}
		rankingFacts = all
	}
	performers := RankPerformers(rankingFacts, q.From, q.To, q.TopLimit)

	return &Overview{
		Summary:       Summarize(facts, q.From, q.To),
		TaskTrend:     BuildTrend(facts, q.From, q.To),
		ByStatus:      CountByStatus(facts, q.From, q.To),
		ByPriority:    CountByPriority(facts, q.From, q.To),
		TopPerformers: performers,
		DailyOps: DailyOps{
			ActiveMembers:  countActive(recs),
			CheckInOutData: ProjectDaily(users, recs),
			Difficulties:   entries,
		},
		UsersList: refs,
	}, nil
}

func countActive(recs []attendance.Record) int {
	n := 0
	for _, rec := range recs {
		if rec.CheckOutTime == nil {
			n++
		}
	}
	return n
}
