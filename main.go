package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/example/todo-api-demo/modules/api"
	"github.com/example/todo-api-demo/modules/audit"
	"github.com/example/todo-api-demo/modules/todo"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== Todo API - Fiber + Redis ===")

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Register modules with the framework.
	// Order: independent modules first, then modules with dependencies
	// - audit: Event consumer (subscribes to todo events)
	// - todo:  Core domain (Redis storage, emits events)
	// - api:   Driving adapter (Fiber HTTP server, depends on todo and audit)
	app.Register(audit.NewModule())
	app.Register(todo.NewModule())
	app.Register(api.NewModule())

	// Start application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo()

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Println("Architecture:")
	log.Println("  - HTTP Framework: Fiber")
	log.Println("  - Storage Backend: Redis (hash per todo + per-user index set)")
	log.Printf("  - Redis Addr: %s", redisAddr)
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%s, basic auth required):", port)
	log.Println("  POST   /api/todos/              - Create a todo")
	log.Println("  GET    /api/todos/user/:userId  - List a user's todos")
	log.Println("  GET    /api/todos/:id           - Get a todo by id")
	log.Println("  PUT    /api/todos/:id           - Partially update a todo")
	log.Println("  DELETE /api/todos/:id           - Delete a todo")
	log.Println("  GET    /api/audit/summary       - Change counters")
	log.Println("  GET    /api/audit/log           - Recent change records")
	log.Println("  GET    /health                  - Health check (open)")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
