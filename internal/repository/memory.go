package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jaekwang-park/todolist/internal/model"
)

type memoryTodo struct {
	todo model.Todo
	seq  uint64
}

// MemoryTodoRepository keeps todos in process memory. It backs local
// development (STORE=memory) and end-to-end tests.
type MemoryTodoRepository struct {
	mu    sync.RWMutex
	todos map[string]memoryTodo
	seq   uint64
	now   func() time.Time
}

func NewMemoryTodo() *MemoryTodoRepository {
	return &MemoryTodoRepository{
		todos: make(map[string]memoryTodo),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryTodoRepository) Create(ctx context.Context, todo model.Todo) (model.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := r.now()
	todo.ID = uuid.NewString()
	todo.CreatedAt = ts
	todo.UpdatedAt = ts

	r.seq++
	r.todos[todo.ID] = memoryTodo{todo: todo, seq: r.seq}
	return todo, nil
}

func (r *MemoryTodoRepository) GetByID(ctx context.Context, owner, todoID string) (model.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.lookup(owner, todoID)
	if !ok {
		return model.Todo{}, ErrNotFound
	}
	return entry.todo, nil
}

func (r *MemoryTodoRepository) Update(ctx context.Context, owner string, todo model.Todo) (model.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.lookup(owner, todo.ID)
	if !ok {
		return model.Todo{}, ErrNotFound
	}

	// Identity and ownership are not mutable through an update.
	todo.UserID = entry.todo.UserID
	todo.CreatedAt = entry.todo.CreatedAt
	todo.UpdatedAt = r.now()

	entry.todo = todo
	r.todos[todo.ID] = entry
	return todo, nil
}

func (r *MemoryTodoRepository) Delete(ctx context.Context, owner, todoID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.lookup(owner, todoID); !ok {
		return ErrNotFound
	}
	delete(r.todos, todoID)
	return nil
}

func (r *MemoryTodoRepository) List(ctx context.Context, filter model.TodoFilter) ([]model.Todo, error) {
	r.mu.RLock()
	entries := make([]memoryTodo, 0, len(r.todos))
	for _, e := range r.todos {
		if filter.Matches(e.todo) {
			entries = append(entries, e)
		}
	}
	r.mu.RUnlock()

	spec := filter.Sort
	if spec.IsZero() {
		spec = model.DefaultSort
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].todo, entries[j].todo
		if spec.Field == model.SortDueDate && (a.DueDate == nil) != (b.DueDate == nil) {
			// Missing due dates sort last in both directions.
			return b.DueDate == nil
		}
		c := compareTodos(a, b, spec.Field)
		if c == 0 {
			// Insertion order breaks ties so equal timestamps still sort
			// newest-first under -createdAt.
			if entries[i].seq < entries[j].seq {
				c = -1
			} else {
				c = 1
			}
		}
		if spec.Desc {
			return c > 0
		}
		return c < 0
	})

	todos := make([]model.Todo, len(entries))
	for i, e := range entries {
		todos[i] = e.todo
	}
	return todos, nil
}

func (r *MemoryTodoRepository) lookup(owner, todoID string) (memoryTodo, bool) {
	entry, ok := r.todos[todoID]
	if !ok {
		return memoryTodo{}, false
	}
	if owner != "" && entry.todo.UserID != owner {
		return memoryTodo{}, false
	}
	return entry, true
}

func compareTodos(a, b model.Todo, field string) int {
	switch field {
	case model.SortTitle:
		return strings.Compare(a.Title, b.Title)
	case model.SortPriority:
		return strings.Compare(string(a.Priority), string(b.Priority))
	case model.SortCategory:
		return strings.Compare(a.Category, b.Category)
	case model.SortCompleted:
		return compareBool(a.Completed, b.Completed)
	case model.SortUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case model.SortDueDate:
		return compareDue(a.DueDate, b.DueDate)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

// compareDue orders todos without a due date after those with one.
func compareDue(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return a.Compare(*b)
	}
}

// MemoryUserRepository keeps users in process memory.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]model.User
}

func NewMemoryUser() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]model.User)}
}

func (r *MemoryUserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, user.Email) {
			return model.User{}, ErrDuplicate
		}
		if user.CognitoSub != "" && u.CognitoSub == user.CognitoSub {
			return model.User{}, ErrDuplicate
		}
	}

	user.ID = uuid.NewString()
	user.CreatedAt = time.Now().UTC()
	r.users[user.ID] = user
	return user, nil
}

func (r *MemoryUserRepository) GetByID(ctx context.Context, userID string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[userID]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return u, nil
}

func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.find(func(u model.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *MemoryUserRepository) GetByCognitoSub(ctx context.Context, cognitoSub string) (model.User, error) {
	return r.find(func(u model.User) bool { return u.CognitoSub == cognitoSub })
}

func (r *MemoryUserRepository) GetOrCreate(ctx context.Context, cognitoSub, email, name string) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, u := range r.users {
		if u.CognitoSub == cognitoSub {
			u.Email = email
			r.users[id] = u
			return u, nil
		}
	}

	u := model.User{
		ID:         uuid.NewString(),
		Name:       name,
		Email:      email,
		CognitoSub: cognitoSub,
		CreatedAt:  time.Now().UTC(),
	}
	r.users[u.ID] = u
	return u, nil
}

func (r *MemoryUserRepository) find(match func(model.User) bool) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if match(u) {
			return u, nil
		}
	}
	return model.User{}, ErrNotFound
}

var (
	_ TodoRepository = (*MemoryTodoRepository)(nil)
	_ UserRepository = (*MemoryUserRepository)(nil)
)
