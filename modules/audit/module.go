package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/example/todo-api-demo/events"
	"github.com/go-monolith/mono"
)

// Module implements the audit consumer module. It consumes todo events
// and keeps change counters plus a bounded change log for operational
// visibility.
type Module struct {
	store *AuditStore
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.EventConsumerModule   = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
)

// NewModule creates a new audit module.
func NewModule() *Module {
	return &Module{
		store: NewAuditStore(),
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "audit"
}

// RegisterEventConsumers registers event handlers for todo events.
func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	createdDef, ok := registry.GetEventByName("TodoCreated", "v1", "todo")
	if !ok {
		return fmt.Errorf("event TodoCreated.v1 not found")
	}
	if err := registry.RegisterEventConsumer(createdDef, m.handleTodoCreated, m); err != nil {
		return fmt.Errorf("failed to register TodoCreated consumer: %w", err)
	}

	updatedDef, ok := registry.GetEventByName("TodoUpdated", "v1", "todo")
	if !ok {
		return fmt.Errorf("event TodoUpdated.v1 not found")
	}
	if err := registry.RegisterEventConsumer(updatedDef, m.handleTodoUpdated, m); err != nil {
		return fmt.Errorf("failed to register TodoUpdated consumer: %w", err)
	}

	deletedDef, ok := registry.GetEventByName("TodoDeleted", "v1", "todo")
	if !ok {
		return fmt.Errorf("event TodoDeleted.v1 not found")
	}
	if err := registry.RegisterEventConsumer(deletedDef, m.handleTodoDeleted, m); err != nil {
		return fmt.Errorf("failed to register TodoDeleted consumer: %w", err)
	}

	log.Printf("[audit] Registered event consumers: TodoCreated.v1, TodoUpdated.v1, TodoDeleted.v1")
	return nil
}

// handleTodoCreated processes TodoCreated events.
func (m *Module) handleTodoCreated(_ context.Context, msg *mono.Msg) error {
	var event events.TodoCreatedEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		log.Printf("[audit] Failed to unmarshal TodoCreated event: %v", err)
		return nil // Don't retry on unmarshal errors
	}

	m.store.Record(ChangeRecord{
		TodoID: event.TodoID,
		UserID: event.UserID,
		Action: ActionCreated,
		At:     event.CreatedAt,
	})
	return nil
}

// handleTodoUpdated processes TodoUpdated events.
func (m *Module) handleTodoUpdated(_ context.Context, msg *mono.Msg) error {
	var event events.TodoUpdatedEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		log.Printf("[audit] Failed to unmarshal TodoUpdated event: %v", err)
		return nil
	}

	m.store.Record(ChangeRecord{
		TodoID: event.TodoID,
		UserID: event.UserID,
		Action: ActionUpdated,
		At:     event.UpdatedAt,
	})
	return nil
}

// handleTodoDeleted processes TodoDeleted events.
func (m *Module) handleTodoDeleted(_ context.Context, msg *mono.Msg) error {
	var event events.TodoDeletedEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		log.Printf("[audit] Failed to unmarshal TodoDeleted event: %v", err)
		return nil
	}

	m.store.Record(ChangeRecord{
		TodoID: event.TodoID,
		Action: ActionDeleted,
		At:     event.DeletedAt,
	})
	return nil
}

// Start initializes the audit module.
func (m *Module) Start(_ context.Context) error {
	log.Println("[audit] Module started")
	return nil
}

// Stop gracefully shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	log.Println("[audit] Module stopped")
	return nil
}

// RegisterServices registers this module's services in the service container.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := container.RegisterRequestReplyService("get-audit-summary", m.handleGetSummary); err != nil {
		return fmt.Errorf("failed to register get-audit-summary service: %w", err)
	}
	if err := container.RegisterRequestReplyService("get-audit-log", m.handleGetLog); err != nil {
		return fmt.Errorf("failed to register get-audit-log service: %w", err)
	}

	log.Printf("[audit] Registered services: get-audit-summary, get-audit-log")
	return nil
}

// handleGetSummary handles get-audit-summary service requests.
func (m *Module) handleGetSummary(_ context.Context, _ *mono.Msg) ([]byte, error) {
	return json.Marshal(m.store.Summary())
}

// handleGetLog handles get-audit-log service requests.
func (m *Module) handleGetLog(_ context.Context, msg *mono.Msg) ([]byte, error) {
	var req struct {
		Limit int `json:"limit"`
	}
	if len(msg.Data) > 0 {
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			return nil, fmt.Errorf("invalid request: %w", err)
		}
	}

	if req.Limit <= 0 {
		req.Limit = 100
	}
	if req.Limit > 1000 {
		req.Limit = 1000
	}

	return json.Marshal(m.store.Recent(req.Limit))
}
