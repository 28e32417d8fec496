// Package difficulty stores the append-only daily difficulty notes.
package difficulty

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"workforce/internal/daykey"
)

// ErrEmptyText rejects notes without content.
var ErrEmptyText = errors.New("empty text")

// Entry is one reported difficulty. Entries are never updated or deleted.
type Entry struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	UserName  string     `json:"userName,omitempty"`
	Day       daykey.Key `json:"day"`
	Text      string     `json:"text"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Repository persists difficulty entries in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Add appends a note for the given day.
func (r *Repository) Add(ctx context.Context, userID string, day daykey.Key, text string) (Entry, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Entry{}, ErrEmptyText
	}
	e := Entry{
		ID:     uuid.NewString(),
		UserID: userID,
		Day:    day,
		Text:   text,
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO difficulties (id, user_id, day, text)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, e.ID, e.UserID, day.Start(), e.Text)
	if err := row.Scan(&e.CreatedAt); err != nil {
		return Entry{}, fmt.Errorf("insert difficulty: %w", err)
	}
	return e, nil
}

// ForDay lists the notes reported on one day, oldest first, with the
// reporter's name joined in for display.
func (r *Repository) ForDay(ctx context.Context, day daykey.Key) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT d.id, d.user_id, COALESCE(u.name, ''), d.day, d.text, d.created_at
		FROM difficulties d
		LEFT JOIN users u ON u.id = d.user_id
		WHERE d.day = $1
		ORDER BY d.created_at
	`, day.Start())
	if err != nil {
		return nil, fmt.Errorf("list difficulties: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e Entry
			d time.Time
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.UserName, &d, &e.Text, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan difficulty: %w", err)
		}
		e.Day = daykey.Of(d)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
