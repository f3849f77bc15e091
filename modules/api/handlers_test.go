package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	domain "github.com/example/todo-api-demo/domain/todo"
	"github.com/example/todo-api-demo/modules/audit"
	"github.com/example/todo-api-demo/modules/todo"
)

// mockTodoPort implements todo.TodoPort with injectable behavior per
// operation. calls counts every port invocation regardless of operation.
type mockTodoPort struct {
	calls int

	createFn func(ctx context.Context, req todo.CreateTodoRequest) (*todo.TodoResponse, error)
	getFn    func(ctx context.Context, id string) (*todo.TodoResponse, error)
	listFn   func(ctx context.Context, userID string) ([]todo.TodoResponse, error)
	updateFn func(ctx context.Context, id string, patch domain.Patch) (*todo.TodoResponse, error)
	deleteFn func(ctx context.Context, id string) error
}

func (m *mockTodoPort) CreateTodo(ctx context.Context, req todo.CreateTodoRequest) (*todo.TodoResponse, error) {
	m.calls++
	if m.createFn != nil {
		return m.createFn(ctx, req)
	}
	return nil, nil
}

func (m *mockTodoPort) GetTodo(ctx context.Context, id string) (*todo.TodoResponse, error) {
	m.calls++
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, nil
}

func (m *mockTodoPort) ListTodosByUser(ctx context.Context, userID string) ([]todo.TodoResponse, error) {
	m.calls++
	if m.listFn != nil {
		return m.listFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockTodoPort) UpdateTodo(ctx context.Context, id string, patch domain.Patch) (*todo.TodoResponse, error) {
	m.calls++
	if m.updateFn != nil {
		return m.updateFn(ctx, id, patch)
	}
	return nil, nil
}

func (m *mockTodoPort) DeleteTodo(ctx context.Context, id string) error {
	m.calls++
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

// mockAuditPort implements audit.AuditPort.
type mockAuditPort struct {
	summaryFn func(ctx context.Context) (map[string]any, error)
	logFn     func(ctx context.Context, limit int) ([]audit.ChangeRecord, error)
}

func (m *mockAuditPort) GetSummary(ctx context.Context) (map[string]any, error) {
	if m.summaryFn != nil {
		return m.summaryFn(ctx)
	}
	return map[string]any{"todos_created": float64(0)}, nil
}

func (m *mockAuditPort) GetRecentLog(ctx context.Context, limit int) ([]audit.ChangeRecord, error) {
	if m.logFn != nil {
		return m.logFn(ctx, limit)
	}
	return nil, nil
}

// newTestModule builds an APIModule wired to mocks, skipping Start so no
// listener is bound.
func newTestModule(port todo.TodoPort) *APIModule {
	return &APIModule{
		todoPort:  port,
		auditPort: &mockAuditPort{},
		port:      "3000",
		username:  "admin",
		password:  "secret",
	}
}

func sampleTodoResponse() *todo.TodoResponse {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	return &todo.TodoResponse{
		ID:        "todo-1",
		UserID:    "user-1",
		Title:     "Buy milk",
		Completed: false,
		DueDate:   "2024-06-15",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func doRequest(t *testing.T, m *APIModule, method, path, body string) (*http.Response, string) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.SetBasicAuth("admin", "secret")

	resp, err := m.buildApp().Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("io.ReadAll() error = %v", err)
	}
	return resp, string(raw)
}

func TestCreateTodoHandler(t *testing.T) {
	t.Run("valid request returns 201 with the created todo", func(t *testing.T) {
		mock := &mockTodoPort{
			createFn: func(_ context.Context, req todo.CreateTodoRequest) (*todo.TodoResponse, error) {
				created := sampleTodoResponse()
				created.UserID = req.UserID
				created.Title = req.Title
				return created, nil
			},
		}
		m := newTestModule(mock)

		resp, body := doRequest(t, m, "POST", "/api/todos/",
			`{"userId":"user-1","title":"Buy milk","completed":false}`)

		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("status = %v, want %v; body = %s", resp.StatusCode, http.StatusCreated, body)
		}
		if !strings.Contains(body, "Todo created successfully") {
			t.Errorf("body = %s, want creation message", body)
		}
		if !strings.Contains(body, `"userId":"user-1"`) {
			t.Errorf("body = %s, want the created todo payload", body)
		}
		if mock.calls != 1 {
			t.Errorf("todo port was called %d times, want 1", mock.calls)
		}
	})

	t.Run("validation failure returns 400 without touching the port", func(t *testing.T) {
		mock := &mockTodoPort{}
		m := newTestModule(mock)

		resp, body := doRequest(t, m, "POST", "/api/todos/",
			`{"userId":"user-1","title":"Buy milk","completed":false,"dueDate":"2024-02-30"}`)

		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("status = %v, want %v", resp.StatusCode, http.StatusBadRequest)
		}
		if !strings.Contains(body, "validation_error") {
			t.Errorf("body = %s, want validation_error", body)
		}
		if !strings.Contains(body, "dueDate") {
			t.Errorf("body = %s, want a dueDate field violation", body)
		}
		if mock.calls != 0 {
			t.Errorf("todo port was called %d times, want 0", mock.calls)
		}
	})

	t.Run("malformed JSON returns 400", func(t *testing.T) {
		mock := &mockTodoPort{}
		m := newTestModule(mock)

		resp, body := doRequest(t, m, "POST", "/api/todos/", `{not json`)

		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("status = %v, want %v", resp.StatusCode, http.StatusBadRequest)
		}
		if !strings.Contains(body, "invalid_request") {
			t.Errorf("body = %s, want invalid_request", body)
		}
		if mock.calls != 0 {
			t.Errorf("todo port was called %d times, want 0", mock.calls)
		}
	})

	t.Run("store failure returns 500", func(t *testing.T) {
		mock := &mockTodoPort{
			createFn: func(_ context.Context, _ todo.CreateTodoRequest) (*todo.TodoResponse, error) {
				return nil, context.DeadlineExceeded
			},
		}
		m := newTestModule(mock)

		resp, body := doRequest(t, m, "POST", "/api/todos/",
			`{"userId":"user-1","title":"Buy milk","completed":false}`)

		if resp.StatusCode != http.StatusInternalServerError {
			t.Fatalf("status = %v, want %v", resp.StatusCode, http.StatusInternalServerError)
		}
		if !strings.Contains(body, "Failed to create todo") {
			t.Errorf("body = %s, want store failure message", body)
		}
	})
}

func TestGetTodoHandler(t *testing.T) {
	t.Run("existing todo returns 200", func(t *testing.T) {
		mock := &mockTodoPort{
			getFn: func(_ context.Context, id string) (*todo.TodoResponse, error) {
				got := sampleTodoResponse()
				got.ID = id
				return got, nil
			},
		}
		m := newTestModule(mock)

		resp, body := doRequest(t, m, "GET", "/api/todos/todo-1", "")

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %v, want %v", resp.StatusCode, http.StatusOK)
		}
		if !strings.Contains(body, `"id":"todo-1"`) {
			t.Errorf("body = %s, want the todo payload", body)
		}
	})

	t.Run("missing todo returns 404", func(t *testing.T) {
		mock := &mockTodoPort{
			getFn: func(_ context.Context, _ string) (*todo.TodoResponse, error) {
				return nil, todo.ErrTodoNotFound
			},
		}
		m := newTestModule(mock)

		resp, body := doRequest(t, m, "GET", "/api/todos/missing-id", "")

		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("status = %v, want %v", resp.StatusCode, http.StatusNotFound)
		}
		if !strings.Contains(body, "Todo not found") {
			t.Errorf("body = %s, want not-found message", body)
		}
	})

	t.Run("store failure returns 500", func(t *testing.T) {
		mock := &mockTodoPort{
			getFn: func(_ context.Context, _ string) (*todo.TodoResponse, error) {
				return nil, context.DeadlineExceeded
			},
		}
		m := newTestModule(mock)

		resp, _ := doRequest(t, m, "GET", "/api/todos/todo-1", "")

		if resp.StatusCode != http.StatusInternalServerError {
			t.Fatalf("status = %v, want %v", resp.StatusCode, http.StatusInternalServerError)
		}
	})
}

func TestListTodosByUserHandler(t *testing.T) {
	t.Run("returns the owner's todos", func(t *testing.T) {
		mock := &mockTodoPort{
			listFn: func(_ context.Context, userID string) ([]todo.TodoResponse, error) {
				first := sampleTodoResponse()
				second := sampleTodoResponse()
				second.ID = "todo-2"
				first.UserID = userID
				second.UserID = userID
				return []todo.TodoResponse{*first, *second}, nil
			},
		}
		m := newTestModule(mock)

		resp, body := doRequest(t, m, "GET", "/api/todos/user/user-1", "")

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %v, want %v", resp.StatusCode, http.StatusOK)
		}
		if !strings.Contains(body, `"id":"todo-1"`) || !strings.Contains(body, `"id":"todo-2"`) {
			t.Errorf("body = %s, want both todos", body)
		}
	})

	t.Run("owner with no todos returns an empty array", func(t *testing.T) {
		mock := &mockTodoPort{
			listFn: func(_ context.Context, _ string) ([]todo.TodoResponse, error) {
				return nil, nil
			},
		}
		m := newTestModule(mock)

		resp, body := doRequest(t, m, "GET", "/api/todos/user/nobody", "")

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %v, want %v", resp.StatusCode, http.StatusOK)
		}
		if strings.TrimSpace(body) != "[]" {
			t.Errorf("body = %s, want an empty JSON array", body)
		}
	})

	t.Run("store failure returns 500", func(t *testing.T) {
		mock := &mockTodoPort{
			listFn: func(_ context.Context, _ string) ([]todo.TodoResponse, error) {
				return nil, context.DeadlineExceeded
			},
		}
		m := newTestModule(mock)

		resp, body := doRequest(t, m, "GET", "/api/todos/user/user-1", "")

		if resp.StatusCode != http.StatusInternalServerError {
			t.Fatalf("status = %v, want %v", resp.StatusCode, http.StatusInternalServerError)
		}
		if !strings.Contains(body, "Failed to retrieve todos") {
			t.Errorf("body = %s, want store failure message", body)
		}
	})
}

func TestUpdateTodoHandler(t *testing.T) {
	t.Run("partial update returns 200 with the stored todo", func(t *testing.T) {
		var gotPatch domain.Patch
		mock := &mockTodoPort{
			updateFn: func(_ context.Context, id string, patch domain.Patch) (*todo.TodoResponse, error) {
				gotPatch = patch
				updated := sampleTodoResponse()
				updated.ID = id
				updated.Title = *patch.Title
				return updated, nil
			},
		}
		m := newTestModule(mock)

		resp, body := doRequest(t, m, "PUT", "/api/todos/todo-1", `{"title":"New title"}`)

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %v, want %v; body = %s", resp.StatusCode, http.StatusOK, body)
		}
		if !strings.Contains(body, `"title":"New title"`) {
			t.Errorf("body = %s, want the updated title", body)
		}
		if gotPatch.Title == nil || *gotPatch.Title != "New title" {
			t.Error("handler did not pass the title assignment through")
		}
		if gotPatch.Completed != nil || gotPatch.DueDate != nil {
			t.Error("handler invented assignments for omitted fields")
		}
	})

	t.Run("empty body is a valid empty patch", func(t *testing.T) {
		var gotPatch domain.Patch
		called := false
		mock := &mockTodoPort{
			updateFn: func(_ context.Context, id string, patch domain.Patch) (*todo.TodoResponse, error) {
				called = true
				gotPatch = patch
				updated := sampleTodoResponse()
				updated.ID = id
				return updated, nil
			},
		}
		m := newTestModule(mock)

		resp, _ := doRequest(t, m, "PUT", "/api/todos/todo-1", `{}`)

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %v, want %v", resp.StatusCode, http.StatusOK)
		}
		if !called {
			t.Fatal("empty patch never reached the port")
		}
		if !gotPatch.IsEmpty() {
			t.Error("empty body produced a non-empty patch")
		}
	})

	t.Run("invalid patch returns 400 without touching the port", func(t *testing.T) {
		mock := &mockTodoPort{}
		m := newTestModule(mock)

		resp, body := doRequest(t, m, "PUT", "/api/todos/todo-1", `{"title":""}`)

		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("status = %v, want %v", resp.StatusCode, http.StatusBadRequest)
		}
		if !strings.Contains(body, "validation_error") {
			t.Errorf("body = %s, want validation_error", body)
		}
		if mock.calls != 0 {
			t.Errorf("todo port was called %d times, want 0", mock.calls)
		}
	})

	t.Run("missing todo returns 404", func(t *testing.T) {
		mock := &mockTodoPort{
			updateFn: func(_ context.Context, _ string, _ domain.Patch) (*todo.TodoResponse, error) {
				return nil, todo.ErrTodoNotFound
			},
		}
		m := newTestModule(mock)

		resp, body := doRequest(t, m, "PUT", "/api/todos/missing-id", `{"completed":true}`)

		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("status = %v, want %v", resp.StatusCode, http.StatusNotFound)
		}
		if !strings.Contains(body, "Todo not found") {
			t.Errorf("body = %s, want not-found message", body)
		}
	})

	t.Run("store failure returns 500", func(t *testing.T) {
		mock := &mockTodoPort{
			updateFn: func(_ context.Context, _ string, _ domain.Patch) (*todo.TodoResponse, error) {
				return nil, context.DeadlineExceeded
			},
		}
		m := newTestModule(mock)

		resp, body := doRequest(t, m, "PUT", "/api/todos/todo-1", `{"completed":true}`)

		if resp.StatusCode != http.StatusInternalServerError {
			t.Fatalf("status = %v, want %v", resp.StatusCode, http.StatusInternalServerError)
		}
		if !strings.Contains(body, "Failed to update todo") {
			t.Errorf("body = %s, want store failure message", body)
		}
	})
}

func TestDeleteTodoHandler(t *testing.T) {
	t.Run("delete returns the confirmation message", func(t *testing.T) {
		mock := &mockTodoPort{}
		m := newTestModule(mock)

		resp, body := doRequest(t, m, "DELETE", "/api/todos/todo-1", "")

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %v, want %v", resp.StatusCode, http.StatusOK)
		}
		if !strings.Contains(body, "Todo deleted successfully") {
			t.Errorf("body = %s, want deletion message", body)
		}
		if mock.calls != 1 {
			t.Errorf("todo port was called %d times, want 1", mock.calls)
		}
	})

	t.Run("store failure returns 500", func(t *testing.T) {
		mock := &mockTodoPort{
			deleteFn: func(_ context.Context, _ string) error {
				return context.DeadlineExceeded
			},
		}
		m := newTestModule(mock)

		resp, body := doRequest(t, m, "DELETE", "/api/todos/todo-1", "")

		if resp.StatusCode != http.StatusInternalServerError {
			t.Fatalf("status = %v, want %v", resp.StatusCode, http.StatusInternalServerError)
		}
		if !strings.Contains(body, "Failed to delete todo") {
			t.Errorf("body = %s, want store failure message", body)
		}
	})
}

func TestGetAuditSummaryHandler(t *testing.T) {
	m := newTestModule(&mockTodoPort{})
	m.auditPort = &mockAuditPort{
		summaryFn: func(_ context.Context) (map[string]any, error) {
			return map[string]any{
				"todos_created": float64(3),
				"todos_deleted": float64(1),
			}, nil
		},
	}

	resp, body := doRequest(t, m, "GET", "/api/audit/summary", "")

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %v, want %v", resp.StatusCode, http.StatusOK)
	}
	if !strings.Contains(body, `"todos_created":3`) {
		t.Errorf("body = %s, want the summary counters", body)
	}
}

func TestGetAuditLogHandler(t *testing.T) {
	t.Run("returns recent change records", func(t *testing.T) {
		var gotLimit int
		m := newTestModule(&mockTodoPort{})
		m.auditPort = &mockAuditPort{
			logFn: func(_ context.Context, limit int) ([]audit.ChangeRecord, error) {
				gotLimit = limit
				return []audit.ChangeRecord{
					{TodoID: "todo-1", UserID: "user-1", Action: audit.ActionCreated, At: time.Now().UTC()},
					{TodoID: "todo-1", UserID: "user-1", Action: audit.ActionUpdated, At: time.Now().UTC()},
				}, nil
			},
		}

		resp, body := doRequest(t, m, "GET", "/api/audit/log?limit=25", "")

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %v, want %v", resp.StatusCode, http.StatusOK)
		}
		if gotLimit != 25 {
			t.Errorf("limit = %d, want 25", gotLimit)
		}
		if !strings.Contains(body, `"action":"created"`) || !strings.Contains(body, `"action":"updated"`) {
			t.Errorf("body = %s, want both change records", body)
		}
	})

	t.Run("empty log returns an empty array with the default limit", func(t *testing.T) {
		var gotLimit int
		m := newTestModule(&mockTodoPort{})
		m.auditPort = &mockAuditPort{
			logFn: func(_ context.Context, limit int) ([]audit.ChangeRecord, error) {
				gotLimit = limit
				return nil, nil
			},
		}

		resp, body := doRequest(t, m, "GET", "/api/audit/log", "")

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %v, want %v", resp.StatusCode, http.StatusOK)
		}
		if gotLimit != 100 {
			t.Errorf("limit = %d, want the default 100", gotLimit)
		}
		if strings.TrimSpace(body) != "[]" {
			t.Errorf("body = %s, want an empty JSON array", body)
		}
	})

	t.Run("port failure returns 500", func(t *testing.T) {
		m := newTestModule(&mockTodoPort{})
		m.auditPort = &mockAuditPort{
			logFn: func(_ context.Context, _ int) ([]audit.ChangeRecord, error) {
				return nil, context.DeadlineExceeded
			},
		}

		resp, body := doRequest(t, m, "GET", "/api/audit/log", "")

		if resp.StatusCode != http.StatusInternalServerError {
			t.Fatalf("status = %v, want %v", resp.StatusCode, http.StatusInternalServerError)
		}
		if !strings.Contains(body, "Failed to retrieve audit log") {
			t.Errorf("body = %s, want audit failure message", body)
		}
	})
}
