package api

import "github.com/example/todo-api-demo/modules/todo"

// CreateTodoResponse is the response after creating a todo.
type CreateTodoResponse struct {
	Message string            `json:"message"`
	Todo    todo.TodoResponse `json:"todo"`
}

// DeleteTodoResponse is the response after deleting a todo.
type DeleteTodoResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ValidationErrorResponse is an error response carrying one entry per
// violated field.
type ValidationErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  []todo.FieldError `json:"fields"`
}

// HealthResponse represents a health check response.
type HealthResponse struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}
