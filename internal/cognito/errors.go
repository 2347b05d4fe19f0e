package cognito

import (
	"errors"
	"net/http"
)

// Sentinel errors for Cognito operations.
var (
	ErrUserAlreadyExists     = errors.New("user already exists")
	ErrUserNotFound          = errors.New("user not found")
	ErrUserNotConfirmed      = errors.New("user not confirmed")
	ErrInvalidPassword       = errors.New("invalid password")
	ErrInvalidCode           = errors.New("invalid code")
	ErrCodeExpired           = errors.New("code expired")
	ErrTooManyRequests       = errors.New("too many requests")
	ErrNotAuthorized         = errors.New("not authorized")
	ErrLimitExceeded         = errors.New("limit exceeded")
	ErrPasswordResetRequired = errors.New("password reset required")
	ErrInvalidParameter      = errors.New("invalid parameter")
)

// ErrorInfo is the client-facing status and message for a sentinel error.
// Messages are fixed so provider details never reach the client.
type ErrorInfo struct {
	Status  int
	Message string
}

var errorTable = []struct {
	err  error
	info ErrorInfo
}{
	// Unknown users share the wrong-password message so accounts cannot be probed.
	{ErrUserNotFound, ErrorInfo{http.StatusUnauthorized, "Invalid credentials"}},
	{ErrNotAuthorized, ErrorInfo{http.StatusUnauthorized, "Invalid credentials"}},
	{ErrUserAlreadyExists, ErrorInfo{http.StatusBadRequest, "User already exists"}},
	{ErrUserNotConfirmed, ErrorInfo{http.StatusForbidden, "Email address not confirmed"}},
	{ErrInvalidPassword, ErrorInfo{http.StatusBadRequest, "Password does not meet requirements"}},
	{ErrInvalidCode, ErrorInfo{http.StatusBadRequest, "Invalid verification code"}},
	{ErrCodeExpired, ErrorInfo{http.StatusBadRequest, "Verification code has expired"}},
	{ErrTooManyRequests, ErrorInfo{http.StatusTooManyRequests, "Too many requests, please try again later"}},
	{ErrLimitExceeded, ErrorInfo{http.StatusTooManyRequests, "Attempt limit exceeded, please try again later"}},
	{ErrPasswordResetRequired, ErrorInfo{http.StatusForbidden, "Password reset is required"}},
	{ErrInvalidParameter, ErrorInfo{http.StatusBadRequest, "Invalid request parameter"}},
}

// LookupError checks whether err wraps a known Cognito sentinel and returns
// the matching ErrorInfo.
func LookupError(err error) (ErrorInfo, bool) {
	for _, e := range errorTable {
		if errors.Is(err, e.err) {
			return e.info, true
		}
	}
	return ErrorInfo{}, false
}
