package todo

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/example/todo-api-demo/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/redis/go-redis/v9"
)

// TodoModule provides todo management services (core domain).
// It owns the Redis store client and exposes the five todo operations
// as request-reply services.
type TodoModule struct {
	rdb       *redis.Client
	store     *RedisStore
	service   *Service
	eventBus  mono.EventBus
	redisAddr string
}

// Compile-time interface checks.
var _ mono.Module = (*TodoModule)(nil)
var _ mono.ServiceProviderModule = (*TodoModule)(nil)
var _ mono.EventEmitterModule = (*TodoModule)(nil)
var _ mono.HealthCheckableModule = (*TodoModule)(nil)

// NewModule creates a new TodoModule. The Redis address comes from
// REDIS_ADDR; in development mode it defaults to the local endpoint.
func NewModule() *TodoModule {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	return &TodoModule{
		redisAddr: redisAddr,
	}
}

// Name returns the module name.
func (m *TodoModule) Name() string {
	return "todo"
}

// SetEventBus receives the EventBus from the framework.
func (m *TodoModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module can emit.
func (m *TodoModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TodoCreatedV1.ToBase(),
		events.TodoUpdatedV1.ToBase(),
		events.TodoDeletedV1.ToBase(),
	}
}

// Start connects to Redis and wires up the store and service.
// Redis is schema-less, so store initialization reduces to a
// connectivity check; there is no table or index to create.
func (m *TodoModule) Start(ctx context.Context) error {
	m.rdb = redis.NewClient(&redis.Options{
		Addr:         m.redisAddr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := m.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	m.store = NewRedisStore(m.rdb)
	m.service = NewService(m.store)

	log.Printf("[todo] Module started (redis: %s)", m.redisAddr)
	return nil
}

// Stop closes the Redis connection.
func (m *TodoModule) Stop(_ context.Context) error {
	if m.rdb != nil {
		if err := m.rdb.Close(); err != nil {
			return fmt.Errorf("failed to close Redis connection: %w", err)
		}
	}
	log.Println("[todo] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *TodoModule) Health(ctx context.Context) mono.HealthStatus {
	if m.rdb == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "redis client not initialized",
		}
	}
	if err := m.rdb.Ping(ctx).Err(); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("redis ping failed: %v", err),
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"redis": m.redisAddr,
		},
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *TodoModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "create-todo", json.Unmarshal, json.Marshal, m.createTodo,
	); err != nil {
		return fmt.Errorf("failed to register create-todo service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get-todo", json.Unmarshal, json.Marshal, m.getTodo,
	); err != nil {
		return fmt.Errorf("failed to register get-todo service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "list-todos-by-user", json.Unmarshal, json.Marshal, m.listTodosByUser,
	); err != nil {
		return fmt.Errorf("failed to register list-todos-by-user service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "update-todo", json.Unmarshal, json.Marshal, m.updateTodo,
	); err != nil {
		return fmt.Errorf("failed to register update-todo service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "delete-todo", json.Unmarshal, json.Marshal, m.deleteTodo,
	); err != nil {
		return fmt.Errorf("failed to register delete-todo service: %w", err)
	}

	log.Printf("[todo] Registered services: create-todo, get-todo, list-todos-by-user, update-todo, delete-todo")
	return nil
}

// createTodo handles the create-todo service request.
func (m *TodoModule) createTodo(ctx context.Context, req CreateTodoRequest, _ *mono.Msg) (TodoResponse, error) {
	t, err := m.service.Create(ctx, req)
	if err != nil {
		return TodoResponse{}, err
	}

	if m.eventBus != nil {
		event := events.TodoCreatedEvent{
			TodoID:    t.ID,
			UserID:    t.UserID,
			Title:     t.Title,
			CreatedAt: t.CreatedAt,
		}
		if err := events.TodoCreatedV1.Publish(m.eventBus, event, nil); err != nil {
			log.Printf("[todo] Warning: failed to publish TodoCreated event for todo %s: %v", t.ID, err)
		}
	}

	return toTodoResponse(t), nil
}

// getTodo handles the get-todo service request.
func (m *TodoModule) getTodo(ctx context.Context, req GetTodoRequest, _ *mono.Msg) (TodoResponse, error) {
	t, err := m.service.Get(ctx, req.ID)
	if err != nil {
		return TodoResponse{}, err
	}
	return toTodoResponse(t), nil
}

// listTodosByUser handles the list-todos-by-user service request.
func (m *TodoModule) listTodosByUser(ctx context.Context, req ListTodosRequest, _ *mono.Msg) (ListTodosResponse, error) {
	todos, err := m.service.ListByUser(ctx, req.UserID)
	if err != nil {
		return ListTodosResponse{}, err
	}

	resp := ListTodosResponse{
		Todos: make([]TodoResponse, 0, len(todos)),
		Total: len(todos),
	}
	for i := range todos {
		resp.Todos = append(resp.Todos, toTodoResponse(&todos[i]))
	}
	return resp, nil
}

// updateTodo handles the update-todo service request.
func (m *TodoModule) updateTodo(ctx context.Context, req UpdateTodoRequest, _ *mono.Msg) (TodoResponse, error) {
	patch := domainPatch(req)
	t, err := m.service.Update(ctx, req.ID, patch)
	if err != nil {
		return TodoResponse{}, err
	}

	if m.eventBus != nil {
		event := events.TodoUpdatedEvent{
			TodoID:    t.ID,
			UserID:    t.UserID,
			UpdatedAt: t.UpdatedAt,
		}
		if err := events.TodoUpdatedV1.Publish(m.eventBus, event, nil); err != nil {
			log.Printf("[todo] Warning: failed to publish TodoUpdated event for todo %s: %v", t.ID, err)
		}
	}

	return toTodoResponse(t), nil
}

// deleteTodo handles the delete-todo service request.
func (m *TodoModule) deleteTodo(ctx context.Context, req DeleteTodoRequest, _ *mono.Msg) (DeleteTodoResponse, error) {
	if err := m.service.Delete(ctx, req.ID); err != nil {
		return DeleteTodoResponse{}, err
	}

	if m.eventBus != nil {
		event := events.TodoDeletedEvent{
			TodoID:    req.ID,
			DeletedAt: time.Now().UTC(),
		}
		if err := events.TodoDeletedV1.Publish(m.eventBus, event, nil); err != nil {
			log.Printf("[todo] Warning: failed to publish TodoDeleted event for todo %s: %v", req.ID, err)
		}
	}

	return DeleteTodoResponse{Deleted: true}, nil
}
