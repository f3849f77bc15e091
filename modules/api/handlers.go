package api

import (
	"errors"

	"github.com/example/todo-api-demo/modules/audit"
	"github.com/example/todo-api-demo/modules/todo"
	"github.com/gofiber/fiber/v2"
)

// setupRoutes configures all HTTP routes behind the access gate.
func (m *APIModule) setupRoutes(app *fiber.App) {
	api := app.Group("/api")

	todos := api.Group("/todos")
	todos.Post("/", m.createTodo)
	// Registered before /:id so the literal "user" segment wins.
	todos.Get("/user/:userId", m.listTodosByUser)
	todos.Get("/:id", m.getTodo)
	todos.Put("/:id", m.updateTodo)
	todos.Delete("/:id", m.deleteTodo)

	api.Get("/audit/summary", m.getAuditSummary)
	api.Get("/audit/log", m.getAuditLog)
}

// healthHandler handles GET /health.
func (m *APIModule) healthHandler(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status: "healthy",
		Details: map[string]any{
			"module": "api",
			"port":   m.port,
		},
	})
}

// createTodo handles POST /api/todos/.
func (m *APIModule) createTodo(c *fiber.Ctx) error {
	var req todo.CreateTodoRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}

	if fieldErrs := todo.ValidateCreate(req); len(fieldErrs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ValidationErrorResponse{
			Error:   "validation_error",
			Message: "Request body failed validation",
			Fields:  fieldErrs,
		})
	}

	created, err := m.todoPort.CreateTodo(c.UserContext(), req)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "store_error",
			Message: "Failed to create todo",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(CreateTodoResponse{
		Message: "Todo created successfully",
		Todo:    *created,
	})
}

// listTodosByUser handles GET /api/todos/user/:userId.
func (m *APIModule) listTodosByUser(c *fiber.Ctx) error {
	userID := c.Params("userId")

	todos, err := m.todoPort.ListTodosByUser(c.UserContext(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "store_error",
			Message: "Failed to retrieve todos",
		})
	}
	if todos == nil {
		todos = []todo.TodoResponse{}
	}

	return c.JSON(todos)
}

// getTodo handles GET /api/todos/:id.
func (m *APIModule) getTodo(c *fiber.Ctx) error {
	id := c.Params("id")

	t, err := m.todoPort.GetTodo(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, todo.ErrTodoNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
				Error:   "not_found",
				Message: "Todo not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "store_error",
			Message: "Failed to retrieve todo",
		})
	}

	return c.JSON(t)
}

// updateTodo handles PUT /api/todos/:id.
func (m *APIModule) updateTodo(c *fiber.Ctx) error {
	id := c.Params("id")

	var req todo.UpdateTodoRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}

	patch, fieldErrs := todo.ValidatePatch(req)
	if len(fieldErrs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ValidationErrorResponse{
			Error:   "validation_error",
			Message: "Request body failed validation",
			Fields:  fieldErrs,
		})
	}

	updated, err := m.todoPort.UpdateTodo(c.UserContext(), id, patch)
	if err != nil {
		if errors.Is(err, todo.ErrTodoNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
				Error:   "not_found",
				Message: "Todo not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "store_error",
			Message: "Failed to update todo",
		})
	}

	return c.JSON(updated)
}

// deleteTodo handles DELETE /api/todos/:id. Deletion is idempotent: a
// nonexistent id still gets the confirmation message.
func (m *APIModule) deleteTodo(c *fiber.Ctx) error {
	id := c.Params("id")

	if err := m.todoPort.DeleteTodo(c.UserContext(), id); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "store_error",
			Message: "Failed to delete todo",
		})
	}

	return c.JSON(DeleteTodoResponse{
		Message: "Todo deleted successfully",
	})
}

// getAuditSummary handles GET /api/audit/summary.
func (m *APIModule) getAuditSummary(c *fiber.Ctx) error {
	summary, err := m.auditPort.GetSummary(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "audit_error",
			Message: "Failed to retrieve audit summary",
		})
	}
	return c.JSON(summary)
}

// getAuditLog handles GET /api/audit/log. The optional limit query
// parameter caps how many of the most recent change records come back.
func (m *APIModule) getAuditLog(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 100)

	records, err := m.auditPort.GetRecentLog(c.UserContext(), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "audit_error",
			Message: "Failed to retrieve audit log",
		})
	}
	if records == nil {
		records = []audit.ChangeRecord{}
	}
	return c.JSON(records)
}
