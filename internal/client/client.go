// Package client is a typed HTTP client for the todo API. It mirrors the
// server's envelope format and adds the browser-side conveniences: a
// debounced filter controller, local category matching and due-date status.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jaekwang-park/todolist/internal/model"
)

const defaultTimeout = 15 * time.Second

// APIError is returned for every response whose envelope reports failure.
type APIError struct {
	Status   int
	Messages []string
}

func (e *APIError) Error() string {
	if len(e.Messages) == 0 {
		return fmt.Sprintf("HTTP %d", e.Status)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Status, strings.Join(e.Messages, ", "))
}

// envelope is the wire format of every API response. Error is either a
// string or a list of strings.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Count   *int            `json:"count"`
	Error   json.RawMessage `json:"error"`
}

func (e envelope) messages() []string {
	if len(e.Error) == 0 || string(e.Error) == "null" {
		return nil
	}
	var list []string
	if err := json.Unmarshal(e.Error, &list); err == nil {
		return list
	}
	var single string
	if err := json.Unmarshal(e.Error, &single); err == nil {
		return []string{single}
	}
	return []string{string(e.Error)}
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	userID     string
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(cl *Client) { cl.token = token }
}

// WithUserID sends the X-User-ID header, which servers in dev auth mode trust.
func WithUserID(id string) Option {
	return func(cl *Client) { cl.userID = id }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Token() string {
	return c.token
}

func (c *Client) SetToken(token string) {
	c.token = token
}

// Health is the payload of GET /api/health.
type Health struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func (c *Client) Health(ctx context.Context) (Health, error) {
	var h Health
	if err := c.do(ctx, http.MethodGet, "/api/health", nil, &h); err != nil {
		return Health{}, fmt.Errorf("health: %w", err)
	}
	return h, nil
}

// Session is what register and login return. Token is empty when the
// account still awaits confirmation.
type Session struct {
	ID                   string `json:"_id"`
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Token                string `json:"token"`
	ConfirmationRequired bool   `json:"confirmationRequired"`
}

// Register creates an account. A returned token is kept for later calls.
func (c *Client) Register(ctx context.Context, name, email, password string) (Session, error) {
	body := map[string]string{"name": name, "email": email, "password": password}
	var s Session
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", body, &s); err != nil {
		return Session{}, fmt.Errorf("register: %w", err)
	}
	if s.Token != "" {
		c.token = s.Token
	}
	return s, nil
}

// Login authenticates and keeps the returned token for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	body := map[string]string{"email": email, "password": password}
	var s Session
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &s); err != nil {
		return Session{}, fmt.Errorf("login: %w", err)
	}
	c.token = s.Token
	return s, nil
}

func (c *Client) Me(ctx context.Context) (model.User, error) {
	var u model.User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &u); err != nil {
		return model.User{}, fmt.Errorf("me: %w", err)
	}
	return u, nil
}

// Filters narrows a list request. Zero values leave a field unconstrained.
type Filters struct {
	Completed *bool
	Priority  model.Priority
	Category  string
	Sort      string
}

func (f Filters) IsZero() bool {
	return f.Completed == nil && f.Priority == "" && f.Category == "" && f.Sort == ""
}

func (f Filters) query() url.Values {
	q := url.Values{}
	if f.Completed != nil {
		q.Set("completed", strconv.FormatBool(*f.Completed))
	}
	if f.Priority != "" {
		q.Set("priority", string(f.Priority))
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.Sort != "" {
		q.Set("sort", f.Sort)
	}
	return q
}

// ListTodos fetches todos. Category is matched exactly by the server; use
// a FilterController for substring matching.
func (c *Client) ListTodos(ctx context.Context, f Filters) ([]model.Todo, error) {
	path := "/api/todos"
	if q := f.query(); len(q) > 0 {
		path += "?" + q.Encode()
	}
	var todos []model.Todo
	if err := c.do(ctx, http.MethodGet, path, nil, &todos); err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return todos, nil
}

func (c *Client) GetTodo(ctx context.Context, id string) (model.Todo, error) {
	var t model.Todo
	if err := c.do(ctx, http.MethodGet, todoPath(id), nil, &t); err != nil {
		return model.Todo{}, fmt.Errorf("get todo: %w", err)
	}
	return t, nil
}

// NewTodo is the body of a create request. DueDate takes YYYY-MM-DD or RFC3339.
type NewTodo struct {
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Priority    model.Priority `json:"priority,omitempty"`
	Category    string         `json:"category,omitempty"`
	DueDate     string         `json:"dueDate,omitempty"`
}

func (c *Client) CreateTodo(ctx context.Context, in NewTodo) (model.Todo, error) {
	var t model.Todo
	if err := c.do(ctx, http.MethodPost, "/api/todos", in, &t); err != nil {
		return model.Todo{}, fmt.Errorf("create todo: %w", err)
	}
	return t, nil
}

// TodoPatch is a partial update. Nil fields are left unchanged; a DueDate
// pointing at "" clears the due date.
type TodoPatch struct {
	Title       *string
	Description *string
	Completed   *bool
	Priority    *model.Priority
	Category    *string
	DueDate     *string
}

func (p TodoPatch) MarshalJSON() ([]byte, error) {
	m := make(map[string]any)
	if p.Title != nil {
		m["title"] = *p.Title
	}
	if p.Description != nil {
		m["description"] = *p.Description
	}
	if p.Completed != nil {
		m["completed"] = *p.Completed
	}
	if p.Priority != nil {
		m["priority"] = *p.Priority
	}
	if p.Category != nil {
		m["category"] = *p.Category
	}
	if p.DueDate != nil {
		if *p.DueDate == "" {
			m["dueDate"] = nil
		} else {
			m["dueDate"] = *p.DueDate
		}
	}
	return json.Marshal(m)
}

func (c *Client) UpdateTodo(ctx context.Context, id string, patch TodoPatch) (model.Todo, error) {
	var t model.Todo
	if err := c.do(ctx, http.MethodPut, todoPath(id), patch, &t); err != nil {
		return model.Todo{}, fmt.Errorf("update todo: %w", err)
	}
	return t, nil
}

func (c *Client) DeleteTodo(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, todoPath(id), nil, nil); err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	return nil
}

func (c *Client) ToggleTodo(ctx context.Context, id string) (model.Todo, error) {
	var t model.Todo
	if err := c.do(ctx, http.MethodPatch, todoPath(id)+"/toggle", nil, &t); err != nil {
		return model.Todo{}, fmt.Errorf("toggle todo: %w", err)
	}
	return t, nil
}

func todoPath(id string) string {
	return "/api/todos/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.userID != "" {
		req.Header.Set("X-User-ID", c.userID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return &APIError{Status: resp.StatusCode}
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if !env.Success || resp.StatusCode >= http.StatusBadRequest {
		return &APIError{Status: resp.StatusCode, Messages: env.messages()}
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode data: %w", err)
	}
	return nil
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}
