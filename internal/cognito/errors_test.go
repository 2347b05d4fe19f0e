package cognito_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jaekwang-park/todolist/internal/cognito"
)

func TestLookupError_AllSentinels(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
	}{
		{cognito.ErrUserAlreadyExists, http.StatusBadRequest},
		{cognito.ErrUserNotFound, http.StatusUnauthorized},
		{cognito.ErrUserNotConfirmed, http.StatusForbidden},
		{cognito.ErrInvalidPassword, http.StatusBadRequest},
		{cognito.ErrInvalidCode, http.StatusBadRequest},
		{cognito.ErrCodeExpired, http.StatusBadRequest},
		{cognito.ErrTooManyRequests, http.StatusTooManyRequests},
		{cognito.ErrNotAuthorized, http.StatusUnauthorized},
		{cognito.ErrLimitExceeded, http.StatusTooManyRequests},
		{cognito.ErrPasswordResetRequired, http.StatusForbidden},
		{cognito.ErrInvalidParameter, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			info, ok := cognito.LookupError(tt.err)
			if !ok {
				t.Fatalf("expected LookupError to find %v", tt.err)
			}
			if info.Status != tt.wantStatus {
				t.Errorf("status: got %d, want %d", info.Status, tt.wantStatus)
			}
			if info.Message == "" {
				t.Error("expected a client-facing message")
			}
		})
	}
}

func TestLookupError_UnknownUserLooksLikeBadPassword(t *testing.T) {
	notFound, _ := cognito.LookupError(cognito.ErrUserNotFound)
	badPassword, _ := cognito.LookupError(cognito.ErrNotAuthorized)
	if notFound != badPassword {
		t.Errorf("expected identical responses, got %+v and %+v", notFound, badPassword)
	}
}

func TestLookupError_WrappedError(t *testing.T) {
	wrapped := fmt.Errorf("User does not exist.: %w", cognito.ErrUserAlreadyExists)
	info, ok := cognito.LookupError(wrapped)
	if !ok {
		t.Fatal("expected LookupError to find wrapped error")
	}
	if info.Message != "User already exists" {
		t.Errorf("message: got %q", info.Message)
	}
}

func TestLookupError_UnknownError(t *testing.T) {
	if _, ok := cognito.LookupError(errors.New("unknown error")); ok {
		t.Error("expected LookupError to return false for unknown error")
	}
}
