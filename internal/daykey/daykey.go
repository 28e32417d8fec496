// Package daykey defines the canonical calendar-day identifier used to
// partition attendance data. Every place the system asks "what day is it"
// goes through this package; days are always UTC, never local time.
package daykey

import (
	"fmt"
	"time"
)

// Layout is the wire format of a day key.
const Layout = "2006-01-02"

// Key identifies one UTC calendar day, formatted as YYYY-MM-DD.
type Key string

// Of maps an instant to the UTC calendar day containing it.
func Of(t time.Time) Key {
	return Key(t.UTC().Format(Layout))
}

// Parse validates a YYYY-MM-DD string and returns it as a Key.
func Parse(s string) (Key, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return "", fmt.Errorf("invalid day key %q: %w", s, err)
	}
	return Of(t), nil
}

// Start returns 00:00:00.000 UTC of the day.
func (k Key) Start() time.Time {
	t, err := time.Parse(Layout, string(k))
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

// End returns the inclusive upper bound of the day, 23:59:59.999999999 UTC.
func (k Key) End() time.Time {
	return k.Start().Add(24*time.Hour - time.Nanosecond)
}

// Next returns the key of the following day.
func (k Key) Next() Key {
	return Of(k.Start().Add(24 * time.Hour))
}

// Before reports whether k is an earlier day than other.
func (k Key) Before(other Key) bool {
	return string(k) < string(other)
}

// Contains reports whether the instant falls inside the day.
func (k Key) Contains(t time.Time) bool {
	return Of(t) == k
}

func (k Key) String() string { return string(k) }
