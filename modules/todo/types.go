package todo

import (
	"context"
	"time"

	domain "github.com/example/todo-api-demo/domain/todo"
)

// CreateTodoRequest is the request for creating a todo.
// Completed and DueDate are pointers so a missing field can be told
// apart from its zero value during validation.
type CreateTodoRequest struct {
	UserID    string  `json:"userId"`
	Title     string  `json:"title"`
	Completed *bool   `json:"completed"`
	DueDate   *string `json:"dueDate,omitempty"`
}

// GetTodoRequest is the request for fetching a todo by id.
type GetTodoRequest struct {
	ID string `json:"id"`
}

// ListTodosRequest is the request for listing a user's todos.
type ListTodosRequest struct {
	UserID string `json:"userId"`
}

// ListTodosResponse is the response for listing a user's todos.
type ListTodosResponse struct {
	Todos []TodoResponse `json:"todos"`
	Total int            `json:"total"`
}

// UpdateTodoRequest is the request for partially updating a todo.
// Every field except ID is optional; nil means "leave unchanged".
// The owning userId is immutable and deliberately absent here.
type UpdateTodoRequest struct {
	ID        string  `json:"id"`
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
	DueDate   *string `json:"dueDate,omitempty"`
}

// DeleteTodoRequest is the request for deleting a todo.
type DeleteTodoRequest struct {
	ID string `json:"id"`
}

// DeleteTodoResponse is the response for deleting a todo.
type DeleteTodoResponse struct {
	Deleted bool `json:"deleted"`
}

// TodoResponse is the response for a single todo.
type TodoResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	DueDate   string    `json:"dueDate,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// toTodoResponse converts a domain Todo to a TodoResponse.
func toTodoResponse(t *domain.Todo) TodoResponse {
	return TodoResponse{
		ID:        t.ID,
		UserID:    t.UserID,
		Title:     t.Title,
		Completed: t.Completed,
		DueDate:   t.DueDate,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// domainPatch extracts the typed patch carried by an update request.
func domainPatch(req UpdateTodoRequest) domain.Patch {
	return domain.Patch{
		Title:     req.Title,
		Completed: req.Completed,
		DueDate:   req.DueDate,
	}
}

// TodoPort defines the interface for todo operations (hexagonal port).
// This is the contract that driving adapters (like the HTTP API) use to
// interact with the core domain.
type TodoPort interface {
	CreateTodo(ctx context.Context, req CreateTodoRequest) (*TodoResponse, error)
	GetTodo(ctx context.Context, id string) (*TodoResponse, error)
	ListTodosByUser(ctx context.Context, userID string) ([]TodoResponse, error)
	UpdateTodo(ctx context.Context, id string, patch domain.Patch) (*TodoResponse, error)
	DeleteTodo(ctx context.Context, id string) error
}
