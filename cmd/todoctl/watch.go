package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/pflag"

	"github.com/jaekwang-park/todolist/internal/client"
	"github.com/jaekwang-park/todolist/internal/model"
)

const watchHelp = `Commands:
  category TEXT     filter by category substring (applied after typing settles)
  completed VALUE   true, false or all
  priority VALUE    low, medium, high or all
  sort FIELD        e.g. title, -dueDate
  clear             reset every filter
  refresh           fetch again
  quit              exit
`

// runWatch keeps a live list on screen. Each stdin line edits one filter;
// category edits go through the debounce so fast typing fetches once.
func runWatch(ctx context.Context, e *env, fs *pflag.FlagSet) error {
	initial, err := filtersFromFlags(fs)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var outMu sync.Mutex
	ctrl := client.NewFilterController(e.client, func(todos []model.Todo, err error) {
		outMu.Lock()
		defer outMu.Unlock()
		if err != nil {
			fmt.Fprintf(e.stderr, "error: %v\n", err)
			return
		}
		fmt.Fprintln(e.stdout)
		_ = writeTodoTable(e.stdout, todos, nowFunc())
	}, client.WithInitialFilters(initial))
	defer ctrl.Stop()

	if err := ctrl.Refresh(ctx); err != nil {
		return err
	}
	fmt.Fprint(e.stderr, watchHelp)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(e.stdin)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			quit, err := applyWatchLine(ctx, ctrl, line)
			if err != nil {
				outMu.Lock()
				fmt.Fprintf(e.stderr, "error: %v\n", err)
				outMu.Unlock()
			}
			if quit {
				return nil
			}
		}
	}
}

func applyWatchLine(ctx context.Context, ctrl *client.FilterController, line string) (quit bool, err error) {
	verb, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(verb) {
	case "":
		return false, nil
	case "quit", "exit", "q":
		return true, nil
	case "category", "cat":
		ctrl.SetCategory(arg)
		return false, nil
	case "completed":
		c, err := parseCompleted(arg)
		if err != nil {
			return false, err
		}
		return false, ctrl.SetCompleted(ctx, c)
	case "priority":
		if arg == "" || strings.EqualFold(arg, "all") {
			return false, ctrl.SetPriority(ctx, "")
		}
		p, err := model.ParsePriority(arg)
		if err != nil {
			return false, err
		}
		return false, ctrl.SetPriority(ctx, p)
	case "sort":
		return false, ctrl.SetSort(ctx, arg)
	case "clear":
		return false, ctrl.Clear(ctx)
	case "refresh":
		return false, ctrl.Refresh(ctx)
	default:
		return false, fmt.Errorf("unknown watch command %q", verb)
	}
}
