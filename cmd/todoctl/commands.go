package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/jaekwang-park/todolist/internal/client"
	"github.com/jaekwang-park/todolist/internal/model"
)

type command struct {
	name    string
	summary string
	usage   string
	run     func(ctx context.Context, e *env, fs *pflag.FlagSet) error
	flags   func(fs *pflag.FlagSet)
}

func (c command) execute(ctx context.Context, e *env, args []string) error {
	fs := pflag.NewFlagSet(c.name, pflag.ContinueOnError)
	fs.SetOutput(e.stderr)
	fs.Usage = func() {
		fmt.Fprintf(e.stderr, "%s\n\nUsage:\n  todoctl %s\n", c.summary, c.usage)
		if fs.HasFlags() {
			fmt.Fprintf(e.stderr, "\nFlags:\n")
			fs.PrintDefaults()
		}
	}
	if c.flags != nil {
		c.flags(fs)
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	return c.run(ctx, e, fs)
}

func commands() []command {
	return []command{
		{name: "health", summary: "Check that the server is up", usage: "health", run: runHealth},
		{name: "register", summary: "Create an account and store its token", usage: "register --name NAME --email EMAIL --password PASSWORD", flags: credentialFlags(true), run: runRegister},
		{name: "login", summary: "Log in and store the token", usage: "login --email EMAIL --password PASSWORD", flags: credentialFlags(false), run: runLogin},
		{name: "me", summary: "Show the logged-in user", usage: "me", run: runMe},
		{name: "list", summary: "List todos", usage: "list [--completed true|false] [--priority P] [--category TEXT] [--sort FIELD]", flags: filterFlags, run: runList},
		{name: "get", summary: "Show one todo", usage: "get ID", run: runGet},
		{name: "add", summary: "Create a todo", usage: "add TITLE [--description D] [--priority P] [--category C] [--due YYYY-MM-DD]", flags: todoFlags(false), run: runAdd},
		{name: "update", summary: "Change fields of a todo", usage: "update ID [--title T] [--description D] [--priority P] [--category C] [--due YYYY-MM-DD | --clear-due] [--completed true|false]", flags: todoFlags(true), run: runUpdate},
		{name: "rm", summary: "Delete a todo", usage: "rm ID", run: runDelete},
		{name: "toggle", summary: "Flip the completed flag of a todo", usage: "toggle ID", run: runToggle},
		{name: "watch", summary: "Interactive list; reads filter edits from stdin", usage: "watch [filter flags]", flags: filterFlags, run: runWatch},
	}
}

func findCommand(name string) (command, bool) {
	for _, c := range commands() {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func credentialFlags(withName bool) func(fs *pflag.FlagSet) {
	return func(fs *pflag.FlagSet) {
		if withName {
			fs.String("name", "", "display name")
		}
		fs.String("email", "", "account email")
		fs.String("password", "", "account password")
	}
}

func filterFlags(fs *pflag.FlagSet) {
	fs.String("completed", "", "true, false or all")
	fs.String("priority", "", "low, medium or high")
	fs.String("category", "", "case-insensitive category substring")
	fs.String("sort", "", "sort field, prefix with - for descending (default -createdAt)")
}

func todoFlags(update bool) func(fs *pflag.FlagSet) {
	return func(fs *pflag.FlagSet) {
		if update {
			fs.String("title", "", "new title")
			fs.String("completed", "", "true or false")
			fs.Bool("clear-due", false, "remove the due date")
		}
		fs.String("description", "", "description")
		fs.String("priority", "", "low, medium or high")
		fs.String("category", "", "category")
		fs.String("due", "", "due date (YYYY-MM-DD)")
	}
}

func exactArgs(fs *pflag.FlagSet, n int, what string) ([]string, error) {
	if fs.NArg() != n {
		return nil, fmt.Errorf("expected %s", what)
	}
	return fs.Args(), nil
}

func runHealth(ctx context.Context, e *env, fs *pflag.FlagSet) error {
	h, err := e.client.Health(ctx)
	if err != nil {
		return err
	}
	if e.opts.jsonOut {
		return printJSON(e.stdout, h)
	}
	fmt.Fprintf(e.stdout, "%s (%s)\n", h.Message, h.Timestamp.Format("2006-01-02 15:04:05"))
	return nil
}

func runRegister(ctx context.Context, e *env, fs *pflag.FlagSet) error {
	name, _ := fs.GetString("name")
	email, _ := fs.GetString("email")
	password, _ := fs.GetString("password")

	s, err := e.client.Register(ctx, name, email, password)
	if err != nil {
		return err
	}
	if s.ConfirmationRequired {
		fmt.Fprintf(e.stdout, "Registered %s. Confirm the code sent by email, then log in.\n", s.Email)
		return nil
	}
	return saveSession(e, s)
}

func runLogin(ctx context.Context, e *env, fs *pflag.FlagSet) error {
	email, _ := fs.GetString("email")
	password, _ := fs.GetString("password")

	s, err := e.client.Login(ctx, email, password)
	if err != nil {
		return err
	}
	return saveSession(e, s)
}

func saveSession(e *env, s client.Session) error {
	if err := writeToken(e.opts.tokenFile, s.Token); err != nil {
		return err
	}
	if e.opts.jsonOut {
		return printJSON(e.stdout, s)
	}
	fmt.Fprintf(e.stdout, "Logged in as %s <%s>\n", s.Name, s.Email)
	return nil
}

func runMe(ctx context.Context, e *env, fs *pflag.FlagSet) error {
	u, err := e.client.Me(ctx)
	if err != nil {
		return err
	}
	if e.opts.jsonOut {
		return printJSON(e.stdout, u)
	}
	fmt.Fprintf(e.stdout, "%s <%s>\nid: %s\n", u.Name, u.Email, u.ID)
	return nil
}

func filtersFromFlags(fs *pflag.FlagSet) (client.Filters, error) {
	var f client.Filters
	completed, _ := fs.GetString("completed")
	c, err := parseCompleted(completed)
	if err != nil {
		return client.Filters{}, err
	}
	f.Completed = c

	priority, _ := fs.GetString("priority")
	if priority != "" {
		p, err := model.ParsePriority(priority)
		if err != nil {
			return client.Filters{}, err
		}
		f.Priority = p
	}
	f.Category, _ = fs.GetString("category")
	f.Sort, _ = fs.GetString("sort")
	return f, nil
}

// parseCompleted maps "", "all" to no constraint.
func parseCompleted(s string) (*bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return nil, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil, fmt.Errorf("completed must be true, false or all, got %q", s)
	}
	return &b, nil
}

func runList(ctx context.Context, e *env, fs *pflag.FlagSet) error {
	f, err := filtersFromFlags(fs)
	if err != nil {
		return err
	}
	category := f.Category
	f.Category = ""

	todos, err := e.client.ListTodos(ctx, f)
	if err != nil {
		return err
	}
	return e.printTodos(client.MatchCategory(todos, category))
}

func runGet(ctx context.Context, e *env, fs *pflag.FlagSet) error {
	args, err := exactArgs(fs, 1, "a todo id")
	if err != nil {
		return err
	}
	t, err := e.client.GetTodo(ctx, args[0])
	if err != nil {
		return err
	}
	return e.printTodo(t)
}

func runAdd(ctx context.Context, e *env, fs *pflag.FlagSet) error {
	if fs.NArg() == 0 {
		return fmt.Errorf("expected a title")
	}
	in := client.NewTodo{Title: strings.Join(fs.Args(), " ")}
	in.Description, _ = fs.GetString("description")
	in.Category, _ = fs.GetString("category")
	in.DueDate, _ = fs.GetString("due")
	priority, _ := fs.GetString("priority")
	in.Priority = model.Priority(strings.ToLower(priority))

	t, err := e.client.CreateTodo(ctx, in)
	if err != nil {
		return err
	}
	return e.printTodo(t)
}

func runUpdate(ctx context.Context, e *env, fs *pflag.FlagSet) error {
	args, err := exactArgs(fs, 1, "a todo id")
	if err != nil {
		return err
	}
	patch, err := patchFromFlags(fs)
	if err != nil {
		return err
	}
	t, err := e.client.UpdateTodo(ctx, args[0], patch)
	if err != nil {
		return err
	}
	return e.printTodo(t)
}

// patchFromFlags sends only the flags given on the command line.
func patchFromFlags(fs *pflag.FlagSet) (client.TodoPatch, error) {
	var p client.TodoPatch
	str := func(name string) *string {
		if !fs.Changed(name) {
			return nil
		}
		v, _ := fs.GetString(name)
		return &v
	}
	p.Title = str("title")
	p.Description = str("description")
	p.Category = str("category")
	p.DueDate = str("due")
	if priority := str("priority"); priority != nil {
		pr := model.Priority(strings.ToLower(*priority))
		p.Priority = &pr
	}
	if completed := str("completed"); completed != nil {
		b, err := strconv.ParseBool(*completed)
		if err != nil {
			return client.TodoPatch{}, fmt.Errorf("completed must be true or false, got %q", *completed)
		}
		p.Completed = &b
	}
	if clearDue, _ := fs.GetBool("clear-due"); clearDue {
		if p.DueDate != nil {
			return client.TodoPatch{}, fmt.Errorf("--due and --clear-due are mutually exclusive")
		}
		empty := ""
		p.DueDate = &empty
	}
	return p, nil
}

func runDelete(ctx context.Context, e *env, fs *pflag.FlagSet) error {
	args, err := exactArgs(fs, 1, "a todo id")
	if err != nil {
		return err
	}
	if err := e.client.DeleteTodo(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "Deleted %s\n", args[0])
	return nil
}

func runToggle(ctx context.Context, e *env, fs *pflag.FlagSet) error {
	args, err := exactArgs(fs, 1, "a todo id")
	if err != nil {
		return err
	}
	t, err := e.client.ToggleTodo(ctx, args[0])
	if err != nil {
		return err
	}
	return e.printTodo(t)
}

func (e *env) printTodos(todos []model.Todo) error {
	if e.opts.jsonOut {
		return printJSON(e.stdout, todos)
	}
	return writeTodoTable(e.stdout, todos, nowFunc())
}

func (e *env) printTodo(t model.Todo) error {
	if e.opts.jsonOut {
		return printJSON(e.stdout, t)
	}
	writeTodoDetail(e.stdout, t, nowFunc())
	return nil
}
