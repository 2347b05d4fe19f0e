package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jaekwang-park/todolist/internal/model"
)

const todoColumns = `id, user_id, title, description, completed, priority, category, due_date, created_at, updated_at`

var todoSortColumns = map[string]string{
	model.SortCreatedAt: "created_at",
	model.SortUpdatedAt: "updated_at",
	model.SortTitle:     "title",
	model.SortPriority:  "priority",
	model.SortDueDate:   "due_date",
	model.SortCompleted: "completed",
	model.SortCategory:  "category",
}

type PostgresTodoRepository struct {
	db *sql.DB
}

func NewPostgresTodo(db *sql.DB) *PostgresTodoRepository {
	return &PostgresTodoRepository{db: db}
}

func (r *PostgresTodoRepository) Create(ctx context.Context, todo model.Todo) (model.Todo, error) {
	query := `
		INSERT INTO todos (user_id, title, description, completed, priority, category, due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + todoColumns

	row := r.db.QueryRowContext(ctx, query,
		todo.UserID, todo.Title, todo.Description, todo.Completed,
		string(todo.Priority), todo.Category, todo.DueDate,
	)

	return scanTodo(row)
}

func (r *PostgresTodoRepository) GetByID(ctx context.Context, owner, todoID string) (model.Todo, error) {
	if !validUUID(todoID) {
		return model.Todo{}, ErrNotFound
	}

	query := `SELECT ` + todoColumns + ` FROM todos WHERE id = $1`
	args := []any{todoID}
	if owner != "" {
		query += ` AND user_id = $2`
		args = append(args, owner)
	}

	return scanTodo(r.db.QueryRowContext(ctx, query, args...))
}

func (r *PostgresTodoRepository) Update(ctx context.Context, owner string, todo model.Todo) (model.Todo, error) {
	if !validUUID(todo.ID) {
		return model.Todo{}, ErrNotFound
	}

	query := `
		UPDATE todos
		SET title = $1, description = $2, completed = $3, priority = $4,
		    category = $5, due_date = $6, updated_at = now()
		WHERE id = $7`
	args := []any{
		todo.Title, todo.Description, todo.Completed, string(todo.Priority),
		todo.Category, todo.DueDate, todo.ID,
	}
	if owner != "" {
		query += ` AND user_id = $8`
		args = append(args, owner)
	}
	query += ` RETURNING ` + todoColumns

	return scanTodo(r.db.QueryRowContext(ctx, query, args...))
}

func (r *PostgresTodoRepository) Delete(ctx context.Context, owner, todoID string) error {
	if !validUUID(todoID) {
		return ErrNotFound
	}

	query := `DELETE FROM todos WHERE id = $1`
	args := []any{todoID}
	if owner != "" {
		query += ` AND user_id = $2`
		args = append(args, owner)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *PostgresTodoRepository) List(ctx context.Context, filter model.TodoFilter) ([]model.Todo, error) {
	query, args := buildListQuery(filter)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	defer rows.Close()

	todos := []model.Todo{}
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate todos: %w", err)
	}

	return todos, nil
}

func buildListQuery(filter model.TodoFilter) (string, []any) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE true`
	var args []any

	add := func(clause string, v any) {
		args = append(args, v)
		query += fmt.Sprintf(" AND %s = $%d", clause, len(args))
	}
	if filter.Owner != "" {
		add("user_id", filter.Owner)
	}
	if filter.Completed != nil {
		add("completed", *filter.Completed)
	}
	if filter.Priority != nil {
		add("priority", string(*filter.Priority))
	}
	if filter.Category != nil {
		add("category", *filter.Category)
	}

	spec := filter.Sort
	if spec.IsZero() {
		spec = model.DefaultSort
	}
	column, ok := todoSortColumns[spec.Field]
	if !ok {
		column = "created_at"
	}
	direction := "ASC"
	if spec.Desc {
		direction = "DESC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s NULLS LAST, id", column, direction)

	return query, args
}

func scanTodo(row scannable) (model.Todo, error) {
	var t model.Todo
	var priority string
	var dueDate sql.NullTime
	err := row.Scan(
		&t.ID, &t.UserID, &t.Title, &t.Description, &t.Completed,
		&priority, &t.Category, &dueDate, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Todo{}, ErrNotFound
		}
		return model.Todo{}, fmt.Errorf("failed to scan todo: %w", err)
	}
	t.Priority = model.Priority(priority)
	if dueDate.Valid {
		d := dueDate.Time.UTC()
		t.DueDate = &d
	}
	return t, nil
}

// ensure compile-time interface compliance
var _ TodoRepository = (*PostgresTodoRepository)(nil)
