package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jaekwang-park/todolist/internal/middleware"
)

type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewHandler applies the middleware chain:
// request id -> logging -> recovery -> CORS -> router.
// Recovery sits inside logging so a recovered panic still gets an access
// line with its 500 status and request id.
func NewHandler(router http.Handler, logger *slog.Logger, allowedOrigins []string) http.Handler {
	h := middleware.CORS(allowedOrigins)(router)
	h = middleware.Recovery(logger)(h)
	h = middleware.Logging(logger)(h)
	return middleware.RequestID(h)
}

func NewServer(port string, logger *slog.Logger, router http.Handler, allowedOrigins []string) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%s", port),
			Handler:           NewHandler(router, logger, allowedOrigins),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		logger: logger,
	}
}

func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	s.logger.Info("starting server", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")
	return s.httpServer.Shutdown(ctx)
}
