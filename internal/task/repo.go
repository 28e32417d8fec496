package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
)

// Repository persists tasks in Postgres.
type Repository struct {
	db      *sql.DB
	builder squirrel.StatementBuilderType
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		db:      db,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new task.
func (r *Repository) Create(ctx context.Context, t Task) (Task, error) {
	var owner any
	if t.UserID != "" {
		owner = t.UserID
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO tasks (id, user_id, text, status, priority, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, t.ID, owner, t.Text, t.Status, t.Priority, t.CreatedAt)
	if err := row.Scan(&t.CreatedAt); err != nil {
		return Task{}, fmt.Errorf("insert task: %w", err)
	}
	return t, nil
}

// GetByID retrieves one task.
func (r *Repository) GetByID(ctx context.Context, id string) (*Task, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, COALESCE(user_id, ''), text, status, priority, created_at, started_at, finished_at
		FROM tasks WHERE id = $1
	`, id)
	return scanTask(row)
}

// List returns tasks newest first, optionally scoped to one owner.
func (r *Repository) List(ctx context.Context, userID string) ([]Task, error) {
	q := r.builder.
		Select("t.id", "COALESCE(t.user_id, '')", "t.text", "t.status", "t.priority",
			"t.created_at", "t.started_at", "t.finished_at", "COALESCE(u.name, '')").
		From("tasks t").
		LeftJoin("users u ON u.id = t.user_id").
		OrderBy("t.created_at DESC")
	if userID != "" {
		q = q.Where(squirrel.Eq{"t.user_id": userID})
	}

	stmt, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list tasks sql: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var (
			t          Task
			startedAt  sql.NullTime
			finishedAt sql.NullTime
		)
		if err := rows.Scan(&t.ID, &t.UserID, &t.Text, &t.Status, &t.Priority,
			&t.CreatedAt, &startedAt, &finishedAt, &t.OwnerName); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		t.StartedAt = nullableTime(startedAt)
		t.FinishedAt = nullableTime(finishedAt)
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Save writes back mutable fields after a transition or edit.
func (r *Repository) Save(ctx context.Context, t Task) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET text = $2, status = $3, priority = $4, started_at = $5, finished_at = $6
		WHERE id = $1
	`, t.ID, t.Text, t.Status, t.Priority, t.StartedAt, t.FinishedAt)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a task.
func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanTask(row interface{ Scan(...any) error }) (*Task, error) {
	var (
		t          Task
		startedAt  sql.NullTime
		finishedAt sql.NullTime
	)
	if err := row.Scan(&t.ID, &t.UserID, &t.Text, &t.Status, &t.Priority,
		&t.CreatedAt, &startedAt, &finishedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}
	t.StartedAt = nullableTime(startedAt)
	t.FinishedAt = nullableTime(finishedAt)
	return &t, nil
}

func nullableTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
