package todo

import (
	"context"
	"fmt"
	"time"

	domain "github.com/example/todo-api-demo/domain/todo"
	"github.com/google/uuid"
)

// Service provides the todo operations on top of a TodoStore.
// It owns id minting and timestamp management; validation happens
// before a request reaches the service.
type Service struct {
	store TodoStore
}

// NewService creates a new todo service.
func NewService(store TodoStore) *Service {
	return &Service{store: store}
}

// Create mints a new todo from a validated creation request and stores it.
// createdAt and updatedAt are set to the same instant.
func (s *Service) Create(ctx context.Context, req CreateTodoRequest) (*domain.Todo, error) {
	completed := false
	if req.Completed != nil {
		completed = *req.Completed
	}
	dueDate := ""
	if req.DueDate != nil {
		dueDate = *req.DueDate
	}

	now := time.Now().UTC()
	t := &domain.Todo{
		ID:        uuid.New().String(),
		UserID:    req.UserID,
		Title:     req.Title,
		Completed: completed,
		DueDate:   dueDate,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.Put(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}
	return t, nil
}

// Get retrieves a todo by id, failing with ErrTodoNotFound when absent.
func (s *Service) Get(ctx context.Context, id string) (*domain.Todo, error) {
	t, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("%w: %s", ErrTodoNotFound, id)
	}
	return t, nil
}

// ListByUser returns all todos owned by userID. An owner with no todos
// yields an empty slice, not an error.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]domain.Todo, error) {
	return s.store.ListByUser(ctx, userID)
}

// Update applies a validated patch to an existing todo and returns the
// post-update document. The updatedAt refresh is always part of the
// assignment set, so an empty patch succeeds and only bumps the timestamp.
func (s *Service) Update(ctx context.Context, id string, patch domain.Patch) (*domain.Todo, error) {
	t, err := s.store.Update(ctx, id, patch, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Delete removes a todo by id. The operation is idempotent: deleting an
// id that does not exist is a success.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}
