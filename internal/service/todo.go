package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jaekwang-park/todolist/internal/model"
	"github.com/jaekwang-park/todolist/internal/repository"
)

type CreateTodoInput struct {
	Title       string
	Description string
	Completed   *bool
	Priority    *string
	Category    string
	DueDate     *string // RFC3339 or YYYY-MM-DD
}

// UpdateTodoInput holds a partial update. Nil fields are left untouched; an
// empty DueDate clears the due date.
type UpdateTodoInput struct {
	Title       *string
	Description *string
	Completed   *bool
	Priority    *string
	Category    *string
	DueDate     *string
}

type TodoService struct {
	repo   repository.TodoRepository
	policy AccessPolicy
}

func NewTodoService(repo repository.TodoRepository, policy AccessPolicy) *TodoService {
	return &TodoService{repo: repo, policy: policy}
}

// List returns every todo matching the filter. The caller's identity
// replaces any owner on the filter.
func (s *TodoService) List(ctx context.Context, userID string, filter model.TodoFilter) ([]model.Todo, error) {
	owner, err := s.policy.owner(userID)
	if err != nil {
		return nil, err
	}
	filter.Owner = owner
	if !s.policy.ScopesToOwner() {
		// Shared lists filter categories on the client.
		filter.Category = nil
	}

	todos, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	return todos, nil
}

func (s *TodoService) GetByID(ctx context.Context, userID, todoID string) (model.Todo, error) {
	owner, err := s.policy.owner(userID)
	if err != nil {
		return model.Todo{}, err
	}

	todo, err := s.repo.GetByID(ctx, owner, todoID)
	if err != nil {
		return model.Todo{}, mapRepoError(err, "failed to get todo")
	}
	return todo, nil
}

func (s *TodoService) Create(ctx context.Context, userID string, input CreateTodoInput) (model.Todo, error) {
	owner, err := s.policy.owner(userID)
	if err != nil {
		return model.Todo{}, err
	}

	todo := model.Todo{
		UserID:      owner,
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
	}
	if input.Completed != nil {
		todo.Completed = *input.Completed
	}
	todo.Priority = model.DefaultPriority
	if input.Priority != nil {
		todo.Priority = model.Priority(*input.Priority)
	}
	todo.Normalize()

	var msgs []string
	if input.DueDate != nil && *input.DueDate != "" {
		due, err := model.ParseDueDate(*input.DueDate)
		if err != nil {
			msgs = append(msgs, "Please provide a valid due date")
		} else {
			todo.DueDate = &due
		}
	}
	if msgs = append(todo.Validate(), msgs...); len(msgs) > 0 {
		return model.Todo{}, newValidationError(msgs...)
	}

	created, err := s.repo.Create(ctx, todo)
	if err != nil {
		return model.Todo{}, fmt.Errorf("failed to create todo: %w", err)
	}
	return created, nil
}

func (s *TodoService) Update(ctx context.Context, userID, todoID string, input UpdateTodoInput) (model.Todo, error) {
	owner, err := s.policy.owner(userID)
	if err != nil {
		return model.Todo{}, err
	}

	existing, err := s.repo.GetByID(ctx, owner, todoID)
	if err != nil {
		return model.Todo{}, mapRepoError(err, "failed to get todo for update")
	}

	var msgs []string
	if input.Title != nil {
		existing.Title = *input.Title
	}
	if input.Description != nil {
		existing.Description = *input.Description
	}
	if input.Completed != nil {
		existing.Completed = *input.Completed
	}
	if input.Priority != nil {
		existing.Priority = model.Priority(*input.Priority)
	}
	if input.Category != nil {
		existing.Category = *input.Category
	}
	if input.DueDate != nil {
		if *input.DueDate == "" {
			existing.DueDate = nil
		} else if due, err := model.ParseDueDate(*input.DueDate); err != nil {
			msgs = append(msgs, "Please provide a valid due date")
		} else {
			existing.DueDate = &due
		}
	}
	existing.Normalize()
	if msgs = append(existing.Validate(), msgs...); len(msgs) > 0 {
		return model.Todo{}, newValidationError(msgs...)
	}

	updated, err := s.repo.Update(ctx, owner, existing)
	if err != nil {
		return model.Todo{}, mapRepoError(err, "failed to update todo")
	}
	return updated, nil
}

func (s *TodoService) Delete(ctx context.Context, userID, todoID string) error {
	owner, err := s.policy.owner(userID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, owner, todoID); err != nil {
		return mapRepoError(err, "failed to delete todo")
	}
	return nil
}

// Toggle flips the completed flag. The read and the write are separate
// store calls, so concurrent toggles of one todo resolve last-write-wins.
func (s *TodoService) Toggle(ctx context.Context, userID, todoID string) (model.Todo, error) {
	owner, err := s.policy.owner(userID)
	if err != nil {
		return model.Todo{}, err
	}

	existing, err := s.repo.GetByID(ctx, owner, todoID)
	if err != nil {
		return model.Todo{}, mapRepoError(err, "failed to get todo for toggle")
	}

	existing.Completed = !existing.Completed

	updated, err := s.repo.Update(ctx, owner, existing)
	if err != nil {
		return model.Todo{}, mapRepoError(err, "failed to toggle todo")
	}
	return updated, nil
}

func mapRepoError(err error, msg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", msg, err)
}
