package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jaekwang-park/todolist/internal/cognito"
	"github.com/jaekwang-park/todolist/internal/http/handler"
	"github.com/jaekwang-park/todolist/internal/repository"
	"github.com/jaekwang-park/todolist/internal/service"
)

// mockAuthCognitoClient implements cognito.Client for handler tests
type mockAuthCognitoClient struct {
	signUpFn        func(ctx context.Context, input cognito.SignUpInput) (cognito.SignUpOutput, error)
	confirmSignUpFn func(ctx context.Context, input cognito.ConfirmSignUpInput) error
	loginFn         func(ctx context.Context, input cognito.LoginInput) (cognito.AuthOutput, error)
}

func (m *mockAuthCognitoClient) SignUp(ctx context.Context, input cognito.SignUpInput) (cognito.SignUpOutput, error) {
	return m.signUpFn(ctx, input)
}
func (m *mockAuthCognitoClient) ConfirmSignUp(ctx context.Context, input cognito.ConfirmSignUpInput) error {
	return m.confirmSignUpFn(ctx, input)
}
func (m *mockAuthCognitoClient) Login(ctx context.Context, input cognito.LoginInput) (cognito.AuthOutput, error) {
	return m.loginFn(ctx, input)
}

func newLocalAuthHandler() *handler.AuthHandler {
	svc := service.NewLocalAuthService(
		repository.NewMemoryUser(),
		service.NewTokenIssuer([]byte("0123456789abcdef0123456789abcdef"), time.Hour),
	)
	return handler.NewAuthHandler(svc)
}

func decodeAuthResult(t *testing.T, env envelope) service.AuthResult {
	t.Helper()
	var result service.AuthResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("failed to decode auth result: %v", err)
	}
	return result
}

func TestAuthHandler_Register(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"success", `{"name":"Alice","email":"alice@example.com","password":"secret1"}`, http.StatusCreated},
		{"validation", `{"name":"","email":"bad","password":"1"}`, http.StatusBadRequest},
		{"malformed json", `{`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newLocalAuthHandler()
			w := httptest.NewRecorder()

			h.Register(w, newRequest(http.MethodPost, "/api/auth/register", tt.body, "", nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d (body: %s)", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantStatus == http.StatusCreated {
				result := decodeAuthResult(t, decodeEnvelope(t, w))
				if result.ID == "" || result.Token == "" || result.Name != "Alice" {
					t.Errorf("unexpected result: %+v", result)
				}
			}
		})
	}
}

func TestAuthHandler_RegisterDuplicate(t *testing.T) {
	h := newLocalAuthHandler()
	body := `{"name":"Alice","email":"alice@example.com","password":"secret1"}`

	w := httptest.NewRecorder()
	h.Register(w, newRequest(http.MethodPost, "/api/auth/register", body, "", nil))
	if w.Code != http.StatusCreated {
		t.Fatalf("first register: expected 201, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	h.Register(w, newRequest(http.MethodPost, "/api/auth/register", body, "", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
	if got := errorString(t, decodeEnvelope(t, w)); got != "User already exists" {
		t.Errorf("expected 'User already exists', got %q", got)
	}
}

func TestAuthHandler_LoginAndMe(t *testing.T) {
	h := newLocalAuthHandler()

	w := httptest.NewRecorder()
	h.Register(w, newRequest(http.MethodPost, "/api/auth/register",
		`{"name":"Alice","email":"alice@example.com","password":"secret1"}`, "", nil))
	registered := decodeAuthResult(t, decodeEnvelope(t, w))

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantErr    string
	}{
		{"success", `{"email":"alice@example.com","password":"secret1"}`, http.StatusOK, ""},
		{"wrong password", `{"email":"alice@example.com","password":"nope123"}`, http.StatusUnauthorized, "Invalid credentials"},
		{"unknown user", `{"email":"bob@example.com","password":"secret1"}`, http.StatusUnauthorized, "Invalid credentials"},
		{"missing fields", `{}`, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.Login(w, newRequest(http.MethodPost, "/api/auth/login", tt.body, "", nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d (body: %s)", tt.wantStatus, w.Code, w.Body.String())
			}
			env := decodeEnvelope(t, w)
			if tt.wantErr != "" {
				if got := errorString(t, env); got != tt.wantErr {
					t.Errorf("expected %q, got %q", tt.wantErr, got)
				}
				return
			}
			if tt.wantStatus == http.StatusOK {
				if result := decodeAuthResult(t, env); result.ID != registered.ID {
					t.Errorf("expected id %s, got %s", registered.ID, result.ID)
				}
			}
		})
	}

	w = httptest.NewRecorder()
	h.Me(w, newRequest(http.MethodGet, "/api/auth/me", "", registered.ID, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d", w.Code)
	}
	var me map[string]any
	if err := json.Unmarshal(decodeEnvelope(t, w).Data, &me); err != nil {
		t.Fatalf("failed to decode user: %v", err)
	}
	if me["email"] != "alice@example.com" {
		t.Errorf("unexpected user: %v", me)
	}
	if _, ok := me["passwordHash"]; ok {
		t.Error("password hash must not be serialized")
	}
}

func TestAuthHandler_CognitoErrors(t *testing.T) {
	tests := []struct {
		name       string
		loginErr   error
		wantStatus int
		wantErr    string
	}{
		{"not authorized", cognito.ErrNotAuthorized, http.StatusUnauthorized, "Invalid credentials"},
		{"user not found", cognito.ErrUserNotFound, http.StatusUnauthorized, "Invalid credentials"},
		{"not confirmed", cognito.ErrUserNotConfirmed, http.StatusForbidden, "Email address not confirmed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockAuthCognitoClient{
				loginFn: func(ctx context.Context, input cognito.LoginInput) (cognito.AuthOutput, error) {
					return cognito.AuthOutput{}, tt.loginErr
				},
			}
			h := handler.NewAuthHandler(service.NewCognitoAuthService(repository.NewMemoryUser(), client))
			w := httptest.NewRecorder()

			h.Login(w, newRequest(http.MethodPost, "/api/auth/login", `{"email":"a@example.com","password":"Secret1!"}`, "", nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if got := errorString(t, decodeEnvelope(t, w)); got != tt.wantErr {
				t.Errorf("expected %q, got %q", tt.wantErr, got)
			}
		})
	}
}

func TestAuthHandler_Confirm(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		confirmErr error
		wantStatus int
	}{
		{"success", `{"email":"a@example.com","code":"123456"}`, nil, http.StatusOK},
		{"bad code", `{"email":"a@example.com","code":"000000"}`, cognito.ErrInvalidCode, http.StatusBadRequest},
		{"missing code", `{"email":"a@example.com"}`, nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockAuthCognitoClient{
				confirmSignUpFn: func(ctx context.Context, input cognito.ConfirmSignUpInput) error {
					return tt.confirmErr
				},
			}
			h := handler.NewAuthHandler(service.NewCognitoAuthService(repository.NewMemoryUser(), client))
			w := httptest.NewRecorder()

			h.Confirm(w, newRequest(http.MethodPost, "/api/auth/confirm", tt.body, "", nil))

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d (body: %s)", tt.wantStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestAuthHandler_MeWithoutIdentity(t *testing.T) {
	h := newLocalAuthHandler()
	w := httptest.NewRecorder()

	h.Me(w, newRequest(http.MethodGet, "/api/auth/me", "", "", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", w.Code)
	}
}
