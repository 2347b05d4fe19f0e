package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
)

const panicMessage = "Something went wrong!"

// Recovery turns a handler panic into a 500 envelope so one failing request
// never takes the server down. A panic after the response started is only
// logged. http.ErrAbortHandler passes through untouched.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := newResponseRecorder(w)
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}

				logger.LogAttrs(r.Context(), slog.LevelError, "panic recovered",
					slog.String("error", fmt.Sprint(v)),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("request_id", RequestIDFromContext(r.Context())),
					slog.String("stack", string(debug.Stack())),
				)

				if rec.wroteHeader {
					return
				}
				writeError(rec, http.StatusInternalServerError, panicMessage)
			}()

			next.ServeHTTP(rec, r)
		})
	}
}
