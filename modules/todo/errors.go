package todo

import "errors"

// Sentinel errors for todo operations.
var (
	// ErrTodoNotFound is returned when the referenced todo does not exist.
	ErrTodoNotFound = errors.New("todo not found")
)
