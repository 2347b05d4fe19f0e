package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jaekwang-park/todolist/internal/http/handler"
)

func TestHealthHandler(t *testing.T) {
	h := handler.NewHealthHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()

	before := time.Now().Add(-time.Second)
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var result struct {
		Success bool `json:"success"`
		Data    struct {
			Message   string    `json:"message"`
			Timestamp time.Time `json:"timestamp"`
		} `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !result.Success || result.Data.Message != "Server is running" {
		t.Errorf("unexpected body: %+v", result)
	}
	if result.Data.Timestamp.Before(before) {
		t.Errorf("expected current timestamp, got %v", result.Data.Timestamp)
	}
}
