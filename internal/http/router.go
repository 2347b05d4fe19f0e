package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jaekwang-park/todolist/internal/http/handler"
	"github.com/jaekwang-park/todolist/internal/service"
)

// RouterConfig wires the services behind the API. A nil Auth leaves the
// /api/auth routes unmounted; a nil Gate leaves the todo routes open.
type RouterConfig struct {
	Todos *service.TodoService
	Auth  *service.AuthService
	Gate  mux.MiddlewareFunc
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(routeNotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(routeNotFound)

	health := handler.NewHealthHandler()
	// /health stays outside /api for load balancer health checks.
	r.Handle("/health", health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Handle("/health", health).Methods(http.MethodGet)

	todos := handler.NewTodoHandler(cfg.Todos)
	tr := api.PathPrefix("/todos").Subrouter()
	if cfg.Gate != nil {
		tr.Use(cfg.Gate)
	}
	tr.HandleFunc("", todos.List).Methods(http.MethodGet)
	tr.HandleFunc("", todos.Create).Methods(http.MethodPost)
	tr.HandleFunc("/{id}", todos.Get).Methods(http.MethodGet)
	tr.HandleFunc("/{id}", todos.Update).Methods(http.MethodPut)
	tr.HandleFunc("/{id}", todos.Delete).Methods(http.MethodDelete)
	tr.HandleFunc("/{id}/toggle", todos.Toggle).Methods(http.MethodPatch)

	if cfg.Auth != nil {
		auth := handler.NewAuthHandler(cfg.Auth)
		ar := api.PathPrefix("/auth").Subrouter()
		ar.HandleFunc("/register", auth.Register).Methods(http.MethodPost)
		ar.HandleFunc("/login", auth.Login).Methods(http.MethodPost)
		if cfg.Auth.UsesCognito() {
			ar.HandleFunc("/confirm", auth.Confirm).Methods(http.MethodPost)
		}

		var me http.Handler = http.HandlerFunc(auth.Me)
		if cfg.Gate != nil {
			me = cfg.Gate(me)
		}
		ar.Handle("/me", me).Methods(http.MethodGet)
	}

	return r
}

func routeNotFound(w http.ResponseWriter, r *http.Request) {
	handler.WriteError(w, http.StatusNotFound, "Route not found")
}
