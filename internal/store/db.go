package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// DB wraps sql.DB for Postgres using pgx.
type DB struct {
	Client *sql.DB
}

// NewDB creates a Postgres connection with sane defaults and applies the schema.
func NewDB(connString string) (*DB, error) {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	if err := db.PingContext(context.Background()); err != nil {
		return &DB{Client: db}, err
	}
	if err := migrate(db); err != nil {
		return &DB{Client: db}, fmt.Errorf("migrate: %w", err)
	}
	return &DB{Client: db}, nil
}

func migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id              TEXT PRIMARY KEY,
		name            TEXT NOT NULL,
		email           TEXT NOT NULL,
		password_hash   TEXT NOT NULL,
		role            TEXT NOT NULL DEFAULT 'user',
		is_checked_in   BOOLEAN NOT NULL DEFAULT FALSE,
		check_in_time   TIMESTAMPTZ,
		check_out_time  TIMESTAMPTZ,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users (LOWER(email));
	CREATE UNIQUE INDEX IF NOT EXISTS idx_users_name  ON users (LOWER(name));

	CREATE TABLE IF NOT EXISTS attendance_records (
		id             TEXT PRIMARY KEY,
		user_id        TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		day            DATE NOT NULL,
		check_in_time  TIMESTAMPTZ NOT NULL,
		check_out_time TIMESTAMPTZ,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_attendance_user_day ON attendance_records (user_id, day);
	CREATE INDEX IF NOT EXISTS idx_attendance_day ON attendance_records (day);

	CREATE TABLE IF NOT EXISTS tasks (
		id          TEXT PRIMARY KEY,
		user_id     TEXT REFERENCES users(id) ON DELETE SET NULL,
		text        TEXT NOT NULL,
		status      TEXT NOT NULL DEFAULT 'todo',
		priority    TEXT NOT NULL DEFAULT 'low',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		started_at  TIMESTAMPTZ,
		finished_at TIMESTAMPTZ
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_user    ON tasks (user_id);
	CREATE INDEX IF NOT EXISTS idx_tasks_created ON tasks (created_at);

	CREATE TABLE IF NOT EXISTS difficulties (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		day        DATE NOT NULL,
		text       TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_difficulties_day ON difficulties (day);
	`
	_, err := db.Exec(schema)
	return err
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Close()
}
