package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"workforce/internal/daykey"
)

// Repository persists the attendance ledger in Postgres. Both write
// operations update the ledger row and the user projection columns inside a
// single transaction, so the two can never drift apart on a crash.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Find returns the ledger record for (user, day), or ErrNotFound.
func (r *Repository) Find(ctx context.Context, userID string, day daykey.Key) (*Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, day, check_in_time, check_out_time, created_at
		FROM attendance_records
		WHERE user_id = $1 AND day = $2
	`, userID, day.Start())
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find attendance record: %w", err)
	}
	return rec, nil
}

// CheckIn inserts a new ledger record and flips the user projection to
// checked-in. The UNIQUE (user_id, day) index is the authoritative duplicate
// signal: a concurrent second check-in loses the insert race and surfaces as
// ErrAlreadyCheckedIn regardless of what a preceding read observed.
func (r *Repository) CheckIn(ctx context.Context, rec Record) (Record, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Record{}, fmt.Errorf("begin check-in tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		INSERT INTO attendance_records (id, user_id, day, check_in_time)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, rec.ID, rec.UserID, rec.Day.Start(), rec.CheckInTime)
	if err := row.Scan(&rec.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Record{}, ErrAlreadyCheckedIn
		}
		return Record{}, fmt.Errorf("insert attendance record: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE users
		SET is_checked_in = TRUE, check_in_time = $2, check_out_time = NULL
		WHERE id = $1
	`, rec.UserID, rec.CheckInTime); err != nil {
		return Record{}, fmt.Errorf("update user projection: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Record{}, fmt.Errorf("commit check-in: %w", err)
	}
	return rec, nil
}

// CheckOut closes today's open record and flips the projection back. The
// guarded UPDATE only matches an open record, so concurrent check-outs
// resolve at the storage layer: the loser sees zero rows.
func (r *Repository) CheckOut(ctx context.Context, userID string, day daykey.Key, at time.Time) (*Record, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin check-out tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE attendance_records
		SET check_out_time = $3
		WHERE user_id = $1 AND day = $2 AND check_out_time IS NULL
	`, userID, day.Start(), at)
	if err != nil {
		return nil, fmt.Errorf("close attendance record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("close attendance record: %w", err)
	}
	if affected == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx, `
			SELECT EXISTS (SELECT 1 FROM attendance_records WHERE user_id = $1 AND day = $2)
		`, userID, day.Start()).Scan(&exists); err != nil {
			return nil, fmt.Errorf("inspect attendance record: %w", err)
		}
		if exists {
			return nil, ErrAlreadyCheckedOut
		}
		return nil, ErrNotCheckedIn
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE users
		SET is_checked_in = FALSE, check_out_time = $2
		WHERE id = $1
	`, userID, at); err != nil {
		return nil, fmt.Errorf("update user projection: %w", err)
	}

	row := tx.QueryRowContext(ctx, `
		SELECT id, user_id, day, check_in_time, check_out_time, created_at
		FROM attendance_records
		WHERE user_id = $1 AND day = $2
	`, userID, day.Start())
	rec, err := scanRecord(row)
	if err != nil {
		return nil, fmt.Errorf("reload attendance record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit check-out: %w", err)
	}
	return rec, nil
}

// ForDay returns every ledger record for one day, for historical views.
func (r *Repository) ForDay(ctx context.Context, day daykey.Key) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, day, check_in_time, check_out_time, created_at
		FROM attendance_records
		WHERE day = $1
		ORDER BY check_in_time
	`, day.Start())
	if err != nil {
		return nil, fmt.Errorf("list attendance records: %w", err)
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attendance record: %w", err)
		}
		recs = append(recs, *rec)
	}
	return recs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var (
		rec      Record
		day      time.Time
		checkOut sql.NullTime
	)
	if err := row.Scan(&rec.ID, &rec.UserID, &day, &rec.CheckInTime, &checkOut, &rec.CreatedAt); err != nil {
		return nil, err
	}
	rec.Day = daykey.Of(day)
	if checkOut.Valid {
		t := checkOut.Time
		rec.CheckOutTime = &t
	}
	return &rec, nil
}
