package client

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jaekwang-park/todolist/internal/model"
)

// DefaultDebounce is how long category edits settle before a refetch.
const DefaultDebounce = 300 * time.Millisecond

// Lister fetches todos. *Client satisfies it.
type Lister interface {
	ListTodos(ctx context.Context, f Filters) ([]model.Todo, error)
}

// FilterController holds the filter state of an interactive list view.
// Completed, priority and sort changes refetch immediately. Category edits
// are debounced and matched locally as a case-insensitive substring, so
// the server never sees the category.
//
// Every refetch result is delivered to the onUpdate callback, which may be
// called from a timer goroutine.
type FilterController struct {
	lister   Lister
	onUpdate func([]model.Todo, error)
	debounce time.Duration

	mu        sync.Mutex
	filters   Filters
	pending   *time.Timer
	gen       uint64
	fetchSeq  uint64
	delivered uint64
}

type FilterOption func(*FilterController)

func WithDebounce(d time.Duration) FilterOption {
	return func(c *FilterController) { c.debounce = d }
}

// WithInitialFilters seeds the filter state without fetching.
func WithInitialFilters(f Filters) FilterOption {
	return func(c *FilterController) { c.filters = f }
}

func NewFilterController(lister Lister, onUpdate func([]model.Todo, error), opts ...FilterOption) *FilterController {
	c := &FilterController{
		lister:   lister,
		onUpdate: onUpdate,
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *FilterController) Filters() Filters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters
}

// Refresh refetches with the current filters.
func (c *FilterController) Refresh(ctx context.Context) error {
	c.mu.Lock()
	filters := c.filters
	c.fetchSeq++
	seq := c.fetchSeq
	c.mu.Unlock()

	category := filters.Category
	filters.Category = ""
	todos, err := c.lister.ListTodos(ctx, filters)
	if err == nil {
		todos = MatchCategory(todos, category)
	}

	c.mu.Lock()
	stale := seq < c.delivered
	if !stale {
		c.delivered = seq
	}
	c.mu.Unlock()

	// A newer fetch already delivered its result.
	if stale {
		return err
	}
	if c.onUpdate != nil {
		c.onUpdate(todos, err)
	}
	return err
}

func (c *FilterController) SetCompleted(ctx context.Context, completed *bool) error {
	c.mu.Lock()
	c.filters.Completed = completed
	c.mu.Unlock()
	return c.Refresh(ctx)
}

func (c *FilterController) SetPriority(ctx context.Context, p model.Priority) error {
	c.mu.Lock()
	c.filters.Priority = p
	c.mu.Unlock()
	return c.Refresh(ctx)
}

func (c *FilterController) SetSort(ctx context.Context, sort string) error {
	c.mu.Lock()
	c.filters.Sort = sort
	c.mu.Unlock()
	return c.Refresh(ctx)
}

// SetCategory schedules a category change. Each call restarts the debounce
// window; only the last value within it is applied.
func (c *FilterController) SetCategory(category string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopPendingLocked()
	gen := c.gen
	c.pending = time.AfterFunc(c.debounce, func() {
		c.applyCategory(gen, category)
	})
}

func (c *FilterController) applyCategory(gen uint64, category string) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.pending = nil
	c.filters.Category = strings.TrimSpace(category)
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	_ = c.Refresh(ctx)
}

// Clear resets every filter, drops any pending category edit and refetches.
func (c *FilterController) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.stopPendingLocked()
	c.filters = Filters{}
	c.mu.Unlock()
	return c.Refresh(ctx)
}

// Stop drops any pending category edit without refetching.
func (c *FilterController) Stop() {
	c.mu.Lock()
	c.stopPendingLocked()
	c.mu.Unlock()
}

func (c *FilterController) stopPendingLocked() {
	// Bumping gen also invalidates a timer that already fired but has not
	// taken the lock yet.
	c.gen++
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
}

// MatchCategory keeps the todos whose category contains the given text,
// ignoring case. A blank category keeps everything.
func MatchCategory(todos []model.Todo, category string) []model.Todo {
	needle := strings.ToLower(strings.TrimSpace(category))
	if needle == "" {
		return todos
	}
	out := make([]model.Todo, 0, len(todos))
	for _, t := range todos {
		if strings.Contains(strings.ToLower(t.Category), needle) {
			out = append(out, t)
		}
	}
	return out
}
