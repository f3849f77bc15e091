package todo

import (
	"context"
	"fmt"
	"strconv"
	"time"

	domain "github.com/example/todo-api-demo/domain/todo"
	"github.com/redis/go-redis/v9"
)

// Hash field names, shared with the JSON representation so the stored
// document reads the same as the wire format.
const (
	fieldID        = "id"
	fieldUserID    = "userId"
	fieldTitle     = "title"
	fieldCompleted = "completed"
	fieldDueDate   = "dueDate"
	fieldCreatedAt = "createdAt"
	fieldUpdatedAt = "updatedAt"
)

// timestampLayout is the storage layout for createdAt/updatedAt.
const timestampLayout = time.RFC3339Nano

func todoKey(id string) string {
	return "todo:" + id
}

func userIndexKey(userID string) string {
	return "user:" + userID + ":todos"
}

// TodoStore defines the interface for todo storage operations.
// GetByID returns (nil, nil) when the id is absent; absence is a signal,
// not an error. Update returns ErrTodoNotFound for a missing id.
// Delete is idempotent: deleting a nonexistent id succeeds.
type TodoStore interface {
	Put(ctx context.Context, t *domain.Todo) error
	GetByID(ctx context.Context, id string) (*domain.Todo, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Todo, error)
	Update(ctx context.Context, id string, patch domain.Patch, updatedAt time.Time) (*domain.Todo, error)
	Delete(ctx context.Context, id string) error
}

// RedisStore implements TodoStore on Redis. Each todo is a hash under
// todo:<id>; the set user:<userId>:todos is the secondary index enabling
// equality lookup by owner.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore creates a new Redis-backed todo store.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

// Put unconditionally stores a todo and adds it to the owner index.
func (s *RedisStore) Put(ctx context.Context, t *domain.Todo) error {
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, todoKey(t.ID), todoArgs(t)...)
	pipe.SAdd(ctx, userIndexKey(t.UserID), t.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store todo %s: %w", t.ID, err)
	}
	return nil
}

// GetByID retrieves a todo by id, or (nil, nil) when it does not exist.
func (s *RedisStore) GetByID(ctx context.Context, id string) (*domain.Todo, error) {
	fields, err := s.rdb.HGetAll(ctx, todoKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read todo %s: %w", id, err)
	}
	if len(fields) == 0 {
		// HGETALL returns an empty map for a missing key.
		return nil, nil
	}
	return scanTodo(fields)
}

// ListByUser returns all todos owned by userID via the owner index.
// Index entries whose document is gone (a deletion racing this read)
// are skipped; the index is eventually consistent with the documents.
func (s *RedisStore) ListByUser(ctx context.Context, userID string) ([]domain.Todo, error) {
	ids, err := s.rdb.SMembers(ctx, userIndexKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to query todos for user %s: %w", userID, err)
	}

	todos := make([]domain.Todo, 0, len(ids))
	if len(ids) == 0 {
		return todos, nil
	}

	pipe := s.rdb.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, todoKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to read todos for user %s: %w", userID, err)
	}

	for _, cmd := range cmds {
		fields, err := cmd.Result()
		if err != nil {
			return nil, fmt.Errorf("failed to read todos for user %s: %w", userID, err)
		}
		if len(fields) == 0 {
			continue
		}
		t, err := scanTodo(fields)
		if err != nil {
			return nil, err
		}
		todos = append(todos, *t)
	}
	return todos, nil
}

// Update applies the patch's field assignments plus the updatedAt refresh
// to an existing todo and returns the post-update document. A missing id
// fails with ErrTodoNotFound.
func (s *RedisStore) Update(ctx context.Context, id string, patch domain.Patch, updatedAt time.Time) (*domain.Todo, error) {
	n, err := s.rdb.Exists(ctx, todoKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to check todo %s: %w", id, err)
	}
	if n == 0 {
		return nil, ErrTodoNotFound
	}

	if err := s.rdb.HSet(ctx, todoKey(id), patchArgs(patch, updatedAt)...).Err(); err != nil {
		return nil, fmt.Errorf("failed to update todo %s: %w", id, err)
	}

	t, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		// Deleted between the write and the read-back.
		return nil, ErrTodoNotFound
	}
	return t, nil
}

// Delete removes a todo and its owner-index entry. Deleting a
// nonexistent id is not an error.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	userID, err := s.rdb.HGet(ctx, todoKey(id), fieldUserID).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read todo %s: %w", id, err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, todoKey(id))
	pipe.SRem(ctx, userIndexKey(userID), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete todo %s: %w", id, err)
	}
	return nil
}

// Ping verifies the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// todoArgs flattens a todo into HSET field/value pairs.
func todoArgs(t *domain.Todo) []any {
	args := []any{
		fieldID, t.ID,
		fieldUserID, t.UserID,
		fieldTitle, t.Title,
		fieldCompleted, strconv.FormatBool(t.Completed),
		fieldCreatedAt, t.CreatedAt.Format(timestampLayout),
		fieldUpdatedAt, t.UpdatedAt.Format(timestampLayout),
	}
	if t.DueDate != "" {
		args = append(args, fieldDueDate, t.DueDate)
	}
	return args
}

// patchArgs flattens a patch into HSET field/value pairs. The updatedAt
// refresh is always included, so an empty patch is still a valid write.
func patchArgs(patch domain.Patch, updatedAt time.Time) []any {
	args := []any{fieldUpdatedAt, updatedAt.Format(timestampLayout)}
	if patch.Title != nil {
		args = append(args, fieldTitle, *patch.Title)
	}
	if patch.Completed != nil {
		args = append(args, fieldCompleted, strconv.FormatBool(*patch.Completed))
	}
	if patch.DueDate != nil {
		args = append(args, fieldDueDate, *patch.DueDate)
	}
	return args
}

// scanTodo rebuilds a todo from its hash fields.
func scanTodo(fields map[string]string) (*domain.Todo, error) {
	completed, err := strconv.ParseBool(fields[fieldCompleted])
	if err != nil {
		return nil, fmt.Errorf("corrupt completed field %q: %w", fields[fieldCompleted], err)
	}
	createdAt, err := time.Parse(timestampLayout, fields[fieldCreatedAt])
	if err != nil {
		return nil, fmt.Errorf("corrupt createdAt field %q: %w", fields[fieldCreatedAt], err)
	}
	updatedAt, err := time.Parse(timestampLayout, fields[fieldUpdatedAt])
	if err != nil {
		return nil, fmt.Errorf("corrupt updatedAt field %q: %w", fields[fieldUpdatedAt], err)
	}

	return &domain.Todo{
		ID:        fields[fieldID],
		UserID:    fields[fieldUserID],
		Title:     fields[fieldTitle],
		Completed: completed,
		DueDate:   fields[fieldDueDate],
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}
