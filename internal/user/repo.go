package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
)

const userColumns = "id, name, email, password_hash, role, is_checked_in, check_in_time, check_out_time, created_at"

// Repository persists users in Postgres.
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

// Create inserts a new user row. Duplicate email or name surfaces as
// ErrEmailTaken / ErrNameTaken via the case-insensitive unique indexes.
func (r *Repository) Create(ctx context.Context, u User) (User, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, u.ID, u.Name, u.Email, u.PasswordHash, u.Role)
	if err := row.Scan(&u.CreatedAt); err != nil {
		return User{}, mapUniqueViolation(err, "insert user")
	}
	return u, nil
}

// GetByID retrieves a user by identifier.
func (r *Repository) GetByID(ctx context.Context, id string) (*User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE id = $1
	`, id)
	return scanUser(row, "get user")
}

// GetByEmail retrieves a user by email, case-insensitively.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)
	`, email)
	return scanUser(row, "get user by email")
}

// List returns all users, newest first.
func (r *Repository) List(ctx context.Context) ([]User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+userColumns+` FROM users ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows, "scan user")
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// Update applies the provided field changes. Nil pointers leave the column
// untouched.
func (r *Repository) Update(ctx context.Context, id string, name, email, passwordHash *string, role *Role) (*User, error) {
	q := r.builder.Update("users").Where(squirrel.Eq{"id": id})
	changed := false
	if name != nil {
		q = q.Set("name", *name)
		changed = true
	}
	if email != nil {
		q = q.Set("email", *email)
		changed = true
	}
	if passwordHash != nil {
		q = q.Set("password_hash", *passwordHash)
		changed = true
	}
	if role != nil {
		q = q.Set("role", *role)
		changed = true
	}
	if !changed {
		return r.GetByID(ctx, id)
	}

	stmt, args, err := q.Suffix("RETURNING " + userColumns).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update user sql: %w", err)
	}
	u, err := scanUser(r.db.QueryRowContext(ctx, stmt, args...), "update user")
	if err != nil {
		return nil, mapUniqueViolation(err, "update user")
	}
	return u, nil
}

// Delete removes a user.
func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row interface{ Scan(...any) error }, op string) (*User, error) {
	var (
		u        User
		checkIn  sql.NullTime
		checkOut sql.NullTime
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.IsCheckedIn, &checkIn, &checkOut, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	u.CheckInTime = nullableTime(checkIn)
	u.CheckOutTime = nullableTime(checkOut)
	return &u, nil
}

func nullableTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func mapUniqueViolation(err error, op string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if strings.Contains(pgErr.ConstraintName, "email") {
			return ErrEmailTaken
		}
		return ErrNameTaken
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
