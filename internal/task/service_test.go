package task

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubStore struct {
	tasks map[string]*Task
}

func newStubStore() *stubStore {
	return &stubStore{tasks: map[string]*Task{}}
}

func (s *stubStore) Create(_ context.Context, t Task) (Task, error) {
	stored := t
	s.tasks[t.ID] = &stored
	return t, nil
}

func (s *stubStore) GetByID(_ context.Context, id string) (*Task, error) {
	t, ok := s.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *stubStore) List(_ context.Context, userID string) ([]Task, error) {
	var out []Task
	for _, t := range s.tasks {
		if userID == "" || t.UserID == userID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (s *stubStore) Save(_ context.Context, t Task) error {
	if _, ok := s.tasks[t.ID]; !ok {
		return ErrNotFound
	}
	stored := t
	s.tasks[t.ID] = &stored
	return nil
}

func (s *stubStore) Delete(_ context.Context, id string) error {
	if _, ok := s.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

func TestCreateDefaults(t *testing.T) {
	svc := NewService(newStubStore())

	created, err := svc.Create(context.Background(), "u1", "  write report  ", "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.Text != "write report" {
		t.Fatalf("text not trimmed: %q", created.Text)
	}
	if created.Status != StatusTodo {
		t.Fatalf("new tasks must start in todo, got %s", created.Status)
	}
	if created.Priority != PriorityLow {
		t.Fatalf("empty priority must default to low, got %s", created.Priority)
	}
}

func TestCreateRejectsEmptyText(t *testing.T) {
	svc := NewService(newStubStore())
	if _, err := svc.Create(context.Background(), "u1", "   ", PriorityLow); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
}

func TestCreateRejectsUnknownPriority(t *testing.T) {
	svc := NewService(newStubStore())
	if _, err := svc.Create(context.Background(), "u1", "x", Priority("urgent")); !errors.Is(err, ErrInvalidPriority) {
		t.Fatalf("expected ErrInvalidPriority, got %v", err)
	}
}

func TestUpdateRunsTransition(t *testing.T) {
	now := time.Date(2025, time.November, 14, 9, 0, 0, 0, time.UTC)
	svc := NewService(newStubStore()).WithClock(func() time.Time { return now })
	ctx := context.Background()

	created, err := svc.Create(ctx, "u1", "ship it", PriorityHigh)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	done := StatusDone
	updated, err := svc.Update(ctx, created.ID, UpdateInput{Status: &done})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Status != StatusDone {
		t.Fatalf("status not applied: %s", updated.Status)
	}
	if updated.FinishedAt == nil || !updated.FinishedAt.Equal(now) {
		t.Fatalf("finished_at not stamped: %v", updated.FinishedAt)
	}

	// The stamped transition must reach the store too.
	persisted, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if persisted.FinishedAt == nil {
		t.Fatal("transition result not persisted")
	}
}

func TestUpdateUnknownTask(t *testing.T) {
	svc := NewService(newStubStore())
	text := "x"
	if _, err := svc.Update(context.Background(), "missing", UpdateInput{Text: &text}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListScopedByUser(t *testing.T) {
	svc := NewService(newStubStore())
	ctx := context.Background()

	if _, err := svc.Create(ctx, "u1", "a", PriorityLow); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.Create(ctx, "u2", "b", PriorityLow); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	mine, err := svc.List(ctx, "u1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(mine) != 1 || mine[0].UserID != "u1" {
		t.Fatalf("expected only u1's tasks, got %+v", mine)
	}

	all, err := svc.List(ctx, "")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected both tasks, got %d", len(all))
	}
}
