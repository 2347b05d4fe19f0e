package repository

import (
	"context"

	"github.com/jaekwang-park/todolist/internal/model"
)

// TodoRepository persists todos. An empty owner leaves the operation
// unscoped; a non-empty owner restricts it to that user's records.
type TodoRepository interface {
	Create(ctx context.Context, todo model.Todo) (model.Todo, error)
	GetByID(ctx context.Context, owner, todoID string) (model.Todo, error)
	Update(ctx context.Context, owner string, todo model.Todo) (model.Todo, error)
	Delete(ctx context.Context, owner, todoID string) error
	List(ctx context.Context, filter model.TodoFilter) ([]model.Todo, error)
}
