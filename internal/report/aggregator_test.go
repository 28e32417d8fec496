package report

import (
	"context"
	"errors"
	"testing"

	"workforce/internal/daykey"
)

// The range guard must reject an inverted range before any query runs, so a
// dependency-less aggregator is enough to exercise it.
func TestRangeGuardRejectsInvertedRange(t *testing.T) {
	a := NewAggregator(nil, nil, nil, nil)
	ctx := context.Background()
	from, to := daykey.Key("2025-11-16"), daykey.Key("2025-11-10")

	if _, _, err := a.RangeSummary(ctx, from, to, ""); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("RangeSummary: expected ErrInvalidRange, got %v", err)
	}
	if _, err := a.TopPerformers(ctx, from, to, 5); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("TopPerformers: expected ErrInvalidRange, got %v", err)
	}
	if _, err := a.Overview(ctx, Query{From: from, To: to, DailyDate: to}); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("Overview: expected ErrInvalidRange, got %v", err)
	}
}
