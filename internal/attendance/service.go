package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"workforce/internal/daykey"
	"workforce/internal/metrics"
)

// Ledger is the persistence surface the state machine drives. Write
// operations are atomic over the ledger row and the user projection.
type Ledger interface {
	Find(ctx context.Context, userID string, day daykey.Key) (*Record, error)
	CheckIn(ctx context.Context, rec Record) (Record, error)
	CheckOut(ctx context.Context, userID string, day daykey.Key, at time.Time) (*Record, error)
}

// Service runs the per-day transition rules: Absent -> CheckedIn ->
// CheckedOut, with CheckedOut terminal until the next UTC day.
type Service struct {
	ledger Ledger
	log    *zap.Logger
	now    func() time.Time
}

// NewService creates the state machine over a ledger.
func NewService(ledger Ledger, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{ledger: ledger, log: log, now: time.Now}
}

// WithClock overrides the time source, mainly for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// CheckIn opens today's attendance record. A record already present for
// (user, today) fails with ErrAlreadyCheckedIn whether or not it is closed.
func (s *Service) CheckIn(ctx context.Context, userID string) (Record, error) {
	now := s.now().UTC()
	day := daykey.Of(now)

	if _, err := s.ledger.Find(ctx, userID, day); err == nil {
		return Record{}, ErrAlreadyCheckedIn
	} else if !errors.Is(err, ErrNotFound) {
		return Record{}, err
	}

	rec, err := s.ledger.CheckIn(ctx, Record{
		ID:          uuid.NewString(),
		UserID:      userID,
		Day:         day,
		CheckInTime: now,
	})
	if err != nil {
		return Record{}, err
	}

	metrics.CheckIns.Inc()
	s.log.Info("checked in",
		zap.String("user_id", userID),
		zap.String("day", day.String()),
	)
	return rec, nil
}

// CheckOut closes today's open record. Fails with ErrNotCheckedIn when no
// record exists for today, ErrAlreadyCheckedOut when it is already closed.
func (s *Service) CheckOut(ctx context.Context, userID string) (Record, error) {
	now := s.now().UTC()
	day := daykey.Of(now)

	cur, err := s.ledger.Find(ctx, userID, day)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Record{}, ErrNotCheckedIn
		}
		return Record{}, err
	}
	if cur.CheckOutTime != nil {
		return Record{}, ErrAlreadyCheckedOut
	}

	rec, err := s.ledger.CheckOut(ctx, userID, day, now)
	if err != nil {
		return Record{}, err
	}

	metrics.CheckOuts.Inc()
	s.log.Info("checked out",
		zap.String("user_id", userID),
		zap.String("day", day.String()),
	)
	return *rec, nil
}

// Today returns the current canonical day key.
func (s *Service) Today() daykey.Key {
	return daykey.Of(s.now())
}

// CurrentStatus derives today's state from the ledger, never the projection,
// so an open record from yesterday reads as Absent today.
func (s *Service) CurrentStatus(ctx context.Context, userID string) (Status, *Record, error) {
	rec, err := s.ledger.Find(ctx, userID, daykey.Of(s.now()))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return StatusAbsent, nil, nil
		}
		return StatusAbsent, nil, err
	}
	return rec.Status(), rec, nil
}
