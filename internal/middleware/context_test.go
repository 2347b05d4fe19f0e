package middleware_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/jaekwang-park/todolist/internal/middleware"
)

func TestSetAndGetUserID(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)

	if got := middleware.GetUserID(req); got != "" {
		t.Errorf("expected empty, got %q", got)
	}

	req = req.WithContext(middleware.SetUserID(req.Context(), "user-abc"))

	if got := middleware.GetUserID(req); got != "user-abc" {
		t.Errorf("expected user-abc, got %q", got)
	}
}

func TestSetAndGetRequestID(t *testing.T) {
	ctx := context.Background()
	if got := middleware.RequestIDFromContext(ctx); got != "" {
		t.Errorf("expected empty, got %q", got)
	}

	ctx = middleware.SetRequestID(ctx, "req-1")
	if got := middleware.RequestIDFromContext(ctx); got != "req-1" {
		t.Errorf("expected req-1, got %q", got)
	}
}
