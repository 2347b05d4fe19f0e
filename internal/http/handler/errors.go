package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jaekwang-park/todolist/internal/cognito"
	"github.com/jaekwang-park/todolist/internal/service"
)

// handleServiceError maps a service error to its response. notFound is the
// message used for service.ErrNotFound.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		WriteErrors(w, http.StatusBadRequest, verr.Messages)
	case errors.Is(err, service.ErrInvalidInput):
		WriteError(w, http.StatusBadRequest, detail(err, service.ErrInvalidInput, "Invalid input"))
	case errors.Is(err, service.ErrNotFound):
		WriteError(w, http.StatusNotFound, notFound)
	case errors.Is(err, service.ErrUnauthorized):
		WriteError(w, http.StatusUnauthorized, detail(err, service.ErrUnauthorized, "Not authorized"))
	case errors.Is(err, service.ErrConflict):
		WriteError(w, http.StatusBadRequest, detail(err, service.ErrConflict, "Conflict"))
	default:
		if info, ok := cognito.LookupError(err); ok {
			WriteError(w, info.Status, info.Message)
			return
		}
		slog.ErrorContext(r.Context(), "unhandled service error",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
		)
		WriteError(w, http.StatusInternalServerError, "Server Error")
	}
}

// detail returns the client message attached to a sentinel with
// fmt.Errorf("%w: message"), or fallback when there is none.
func detail(err, sentinel error, fallback string) string {
	msg, ok := strings.CutPrefix(err.Error(), sentinel.Error()+": ")
	if !ok || msg == "" {
		return fallback
	}
	return msg
}
