package task

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store is the persistence surface the service needs.
type Store interface {
	Create(ctx context.Context, t Task) (Task, error)
	GetByID(ctx context.Context, id string) (*Task, error)
	List(ctx context.Context, userID string) ([]Task, error)
	Save(ctx context.Context, t Task) error
	Delete(ctx context.Context, id string) error
}

// Service coordinates board operations and the transition rules.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService creates a service backed by a store.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// WithClock overrides the time source, mainly for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// Create adds a task to a board. New tasks always start in todo.
func (s *Service) Create(ctx context.Context, userID, text string, priority Priority) (Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Task{}, ErrEmptyText
	}
	if priority == "" {
		priority = PriorityLow
	}
	if !ValidPriority(priority) {
		return Task{}, ErrInvalidPriority
	}
	return s.store.Create(ctx, Task{
		ID:        uuid.NewString(),
		UserID:    userID,
		Text:      text,
		Status:    StatusTodo,
		Priority:  priority,
		CreatedAt: s.now().UTC(),
	})
}

// Get returns one task.
func (s *Service) Get(ctx context.Context, id string) (*Task, error) {
	return s.store.GetByID(ctx, id)
}

// List returns tasks, scoped to one owner when userID is set.
func (s *Service) List(ctx context.Context, userID string) ([]Task, error) {
	return s.store.List(ctx, userID)
}

// UpdateInput carries optional field changes for Update.
type UpdateInput struct {
	Text     *string
	Status   *Status
	Priority *Priority
}

// Update edits a task, running the status transition rules when the column
// changes.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*Task, error) {
	t, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Text != nil {
		trimmed := strings.TrimSpace(*in.Text)
		if trimmed == "" {
			return nil, ErrEmptyText
		}
		t.Text = trimmed
	}
	if in.Priority != nil {
		if !ValidPriority(*in.Priority) {
			return nil, ErrInvalidPriority
		}
		t.Priority = *in.Priority
	}
	if in.Status != nil {
		if err := t.Transition(*in.Status, s.now().UTC()); err != nil {
			return nil, err
		}
	}

	if err := s.store.Save(ctx, *t); err != nil {
		return nil, err
	}
	return t, nil
}

// Delete removes a task.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}
