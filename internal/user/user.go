// Package user owns the identity entity. The is_checked_in/check_in_time/
// check_out_time columns on the user row are a projection of the attendance
// ledger for today only; the ledger remains authoritative and writes them
// inside its own transactions.
package user

import (
	"errors"
	"regexp"
	"time"
)

// Role separates regular members from administrators.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

var (
	// ErrNotFound indicates the requested user does not exist.
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken indicates another user already owns the email.
	ErrEmailTaken = errors.New("email already exists")
	// ErrNameTaken indicates another user already owns the name.
	ErrNameTaken = errors.New("user name already exists")
	// ErrInvalidEmail indicates a malformed email address.
	ErrInvalidEmail = errors.New("invalid email format")
	// ErrMissingFields indicates required fields were not provided.
	ErrMissingFields = errors.New("missing fields")
	// ErrInvalidCredentials indicates a failed login attempt.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// User is the identity entity. PasswordHash never serializes.
type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	IsCheckedIn  bool       `json:"isCheckedIn"`
	CheckInTime  *time.Time `json:"checkInTime"`
	CheckOutTime *time.Time `json:"checkOutTime"`
	CreatedAt    time.Time  `json:"createdAt"`
}
