package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jaekwang-park/todolist/internal/client"
	todohttp "github.com/jaekwang-park/todolist/internal/http"
	"github.com/jaekwang-park/todolist/internal/middleware"
	"github.com/jaekwang-park/todolist/internal/model"
	"github.com/jaekwang-park/todolist/internal/repository"
	"github.com/jaekwang-park/todolist/internal/service"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	users := repository.NewMemoryUser()
	gate, err := middleware.NewAuth(middleware.AuthConfig{
		Secret:       testSecret,
		Issuer:       service.TokenIssuerName,
		Audience:     service.TokenAudience,
		UserResolver: service.NewUserIDResolver(users),
	})
	if err != nil {
		t.Fatalf("NewAuth: %v", err)
	}
	router := todohttp.NewRouter(todohttp.RouterConfig{
		Todos: service.NewTodoService(repository.NewMemoryTodo(), service.OwnerScoped),
		Auth:  service.NewLocalAuthService(users, service.NewTokenIssuer(testSecret, time.Hour)),
		Gate:  gate.Middleware,
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(todohttp.NewHandler(router, logger, nil))
	t.Cleanup(srv.Close)
	return srv
}

func newLoggedInClient(t *testing.T, srv *httptest.Server) *client.Client {
	t.Helper()
	c := client.New(srv.URL + "/")
	if _, err := c.Register(context.Background(), "Alice", "alice@example.com", "secret1"); err != nil {
		t.Fatalf("register: %v", err)
	}
	return c
}

func TestClient_Health(t *testing.T) {
	srv := newTestServer(t)

	h, err := client.New(srv.URL).Health(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Message != "Server is running" {
		t.Errorf("expected 'Server is running', got %q", h.Message)
	}
	if h.Timestamp.IsZero() {
		t.Error("expected timestamp")
	}
}

func TestClient_TodoLifecycle(t *testing.T) {
	srv := newTestServer(t)
	c := newLoggedInClient(t, srv)
	ctx := context.Background()

	if c.Token() == "" {
		t.Fatal("expected register to keep the token")
	}

	created, err := c.CreateTodo(ctx, client.NewTodo{
		Title:    "Write report",
		Priority: model.PriorityHigh,
		Category: "Work",
		DueDate:  "2030-01-15",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.Completed || created.DueDate == nil {
		t.Fatalf("unexpected created todo: %+v", created)
	}
	if _, err := c.CreateTodo(ctx, client.NewTodo{Title: "Buy milk"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	todos, err := c.ListTodos(ctx, client.Filters{Priority: model.PriorityHigh})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(todos) != 1 || todos[0].ID != created.ID {
		t.Fatalf("expected only the high priority todo, got %+v", todos)
	}

	title := "Write final report"
	noDue := ""
	updated, err := c.UpdateTodo(ctx, created.ID, client.TodoPatch{Title: &title, DueDate: &noDue})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != title || updated.DueDate != nil || updated.Priority != model.PriorityHigh {
		t.Errorf("unexpected updated todo: %+v", updated)
	}

	toggled, err := c.ToggleTodo(ctx, created.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !toggled.Completed {
		t.Error("expected toggle to complete the todo")
	}

	got, err := c.GetTodo(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.Completed || got.Title != title {
		t.Errorf("unexpected todo: %+v", got)
	}

	if err := c.DeleteTodo(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err = c.GetTodo(ctx, created.ID)
	if !client.IsNotFound(err) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Messages[0] != "Todo not found" {
		t.Errorf("expected 'Todo not found', got %v", apiErr.Messages)
	}
}

func TestClient_Errors(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		call       func(c *client.Client) error
		wantStatus int
		wantMsg    string
	}{
		{
			name: "list without token",
			call: func(c *client.Client) error {
				_, err := client.New(srv.URL).ListTodos(ctx, client.Filters{})
				return err
			},
			wantStatus: http.StatusUnauthorized,
			wantMsg:    "Not authorized",
		},
		{
			name: "create without title",
			call: func(c *client.Client) error {
				_, err := c.CreateTodo(ctx, client.NewTodo{})
				return err
			},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Please add a title",
		},
		{
			name: "invalid sort",
			call: func(c *client.Client) error {
				_, err := c.ListTodos(ctx, client.Filters{Sort: "-color"})
				return err
			},
			wantStatus: http.StatusBadRequest,
			wantMsg:    `Invalid sort field "-color"`,
		},
		{
			name: "wrong password",
			call: func(c *client.Client) error {
				_, err := client.New(srv.URL).Login(ctx, "alice@example.com", "wrong-password")
				return err
			},
			wantStatus: http.StatusUnauthorized,
			wantMsg:    "Invalid credentials",
		},
	}

	c := newLoggedInClient(t, srv)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call(c)

			var apiErr *client.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %v", err)
			}
			if apiErr.Status != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, apiErr.Status)
			}
			if len(apiErr.Messages) == 0 || apiErr.Messages[0] != tt.wantMsg {
				t.Errorf("expected message %q, got %v", tt.wantMsg, apiErr.Messages)
			}
		})
	}
}

func TestClient_LoginAndMe(t *testing.T) {
	srv := newTestServer(t)
	newLoggedInClient(t, srv)
	ctx := context.Background()

	c := client.New(srv.URL)
	session, err := c.Login(ctx, "alice@example.com", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if session.Token == "" || c.Token() != session.Token {
		t.Fatalf("expected login to keep the token, got %+v", session)
	}

	me, err := c.Me(ctx)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if me.ID != session.ID || me.Email != "alice@example.com" {
		t.Errorf("unexpected user: %+v", me)
	}
}

func TestClient_NonEnvelopeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := client.New(srv.URL).Health(context.Background())

	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadGateway {
		t.Fatalf("expected 502 APIError, got %v", err)
	}
}

func TestTodoPatch_MarshalJSON(t *testing.T) {
	title := "New"
	empty := ""
	date := "2030-02-01"
	done := false

	tests := []struct {
		name  string
		patch client.TodoPatch
		want  string
	}{
		{"empty", client.TodoPatch{}, `{}`},
		{"title only", client.TodoPatch{Title: &title}, `{"title":"New"}`},
		{"clear due date", client.TodoPatch{DueDate: &empty}, `{"dueDate":null}`},
		{"set due date", client.TodoPatch{DueDate: &date, Completed: &done}, `{"completed":false,"dueDate":"2030-02-01"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.patch)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}
