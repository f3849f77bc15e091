package api

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/example/todo-api-demo/modules/audit"
	"github.com/example/todo-api-demo/modules/todo"
	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// APIModule is the driving adapter that exposes REST endpoints using Fiber.
// Every todo route sits behind the basic-auth access gate.
type APIModule struct {
	app       *fiber.App
	todoPort  todo.TodoPort
	auditPort audit.AuditPort
	port      string
	username  string
	password  string
}

// Compile-time interface checks.
var _ mono.Module = (*APIModule)(nil)
var _ mono.DependentModule = (*APIModule)(nil)
var _ mono.HealthCheckableModule = (*APIModule)(nil)

// NewModule creates a new APIModule. The listen port and the shared
// credential pair come from process configuration.
func NewModule() *APIModule {
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	return &APIModule{
		port:     port,
		username: os.Getenv("BASIC_USERNAME"),
		password: os.Getenv("BASIC_PASSWORD"),
	}
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *APIModule) Dependencies() []string {
	return []string{"todo", "audit"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "todo":
		m.todoPort = todo.NewTodoAdapter(container)
	case "audit":
		m.auditPort = audit.NewAuditAdapter(container)
	}
}

// Start initializes the Fiber HTTP server.
func (m *APIModule) Start(_ context.Context) error {
	if m.todoPort == nil {
		return fmt.Errorf("todoPort dependency not set")
	}
	if m.auditPort == nil {
		return fmt.Errorf("auditPort dependency not set")
	}
	if m.username == "" || m.password == "" {
		return fmt.Errorf("BASIC_USERNAME and BASIC_PASSWORD must be configured")
	}

	m.app = m.buildApp()

	go func() {
		if err := m.app.Listen(":" + m.port); err != nil {
			log.Printf("[api] HTTP server error: %v", err)
		}
	}()

	log.Printf("[api] HTTP server started on :%s", m.port)
	return nil
}

// buildApp constructs the Fiber app with the full middleware chain and
// routes. Split out from Start so tests can exercise the exact chain
// without binding a listener.
func (m *APIModule) buildApp() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New())

	// Health stays open; everything registered after the gate requires
	// the shared credential pair.
	app.Get("/health", m.healthHandler)
	app.Use(BasicAuth(m.username, m.password))

	m.setupRoutes(app)
	return app
}

// Stop shuts down the Fiber HTTP server.
func (m *APIModule) Stop(_ context.Context) error {
	if m.app == nil {
		return nil
	}
	log.Println("[api] Shutting down HTTP server...")
	return m.app.Shutdown()
}

// Health returns the health status of the module.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"port": m.port,
		},
	}
}

// customErrorHandler handles Fiber errors.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   "server_error",
		Message: message,
	})
}
