package todo

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	domain "github.com/example/todo-api-demo/domain/todo"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// todoAdapter wraps ServiceContainer for type-safe cross-module
// communication. It implements the TodoPort interface.
type todoAdapter struct {
	container mono.ServiceContainer
}

// NewTodoAdapter creates a new adapter for todo services.
// container is the ServiceContainer from the todo module received via
// SetDependencyServiceContainer.
func NewTodoAdapter(container mono.ServiceContainer) TodoPort {
	if container == nil {
		panic("todo adapter requires non-nil ServiceContainer")
	}
	return &todoAdapter{container: container}
}

// CreateTodo creates a new todo via the create-todo service.
func (a *todoAdapter) CreateTodo(ctx context.Context, req CreateTodoRequest) (*TodoResponse, error) {
	var resp TodoResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"create-todo",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, mapServiceError(err)
	}
	return &resp, nil
}

// GetTodo retrieves a todo by id via the get-todo service.
func (a *todoAdapter) GetTodo(ctx context.Context, id string) (*TodoResponse, error) {
	req := GetTodoRequest{ID: id}
	var resp TodoResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"get-todo",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, mapServiceError(err)
	}
	return &resp, nil
}

// ListTodosByUser lists a user's todos via the list-todos-by-user service.
func (a *todoAdapter) ListTodosByUser(ctx context.Context, userID string) ([]TodoResponse, error) {
	req := ListTodosRequest{UserID: userID}
	var resp ListTodosResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"list-todos-by-user",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, mapServiceError(err)
	}
	return resp.Todos, nil
}

// UpdateTodo applies a patch to a todo via the update-todo service.
func (a *todoAdapter) UpdateTodo(ctx context.Context, id string, patch domain.Patch) (*TodoResponse, error) {
	req := UpdateTodoRequest{
		ID:        id,
		Title:     patch.Title,
		Completed: patch.Completed,
		DueDate:   patch.DueDate,
	}
	var resp TodoResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"update-todo",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, mapServiceError(err)
	}
	return &resp, nil
}

// DeleteTodo deletes a todo via the delete-todo service.
func (a *todoAdapter) DeleteTodo(ctx context.Context, id string) error {
	req := DeleteTodoRequest{ID: id}
	var resp DeleteTodoResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"delete-todo",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return mapServiceError(err)
	}
	if !resp.Deleted {
		return fmt.Errorf("todo not deleted: %s", id)
	}
	return nil
}

// mapServiceError converts service errors back to sentinel errors by
// checking the error message content. This is necessary because errors
// lose their type information when sent over NATS.
func mapServiceError(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(strings.ToLower(err.Error()), "todo not found") {
		return ErrTodoNotFound
	}
	return err
}
