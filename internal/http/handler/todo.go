package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jaekwang-park/todolist/internal/middleware"
	"github.com/jaekwang-park/todolist/internal/model"
	"github.com/jaekwang-park/todolist/internal/service"
)

const todoNotFound = "Todo not found"

type TodoHandler struct {
	svc *service.TodoService
}

func NewTodoHandler(svc *service.TodoService) *TodoHandler {
	return &TodoHandler{svc: svc}
}

type createTodoRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Completed   *bool           `json:"completed"`
	Priority    *string         `json:"priority"`
	Category    string          `json:"category"`
	DueDate     json.RawMessage `json:"dueDate"`
}

// updateTodoRequest distinguishes absent fields from provided ones. A null
// dueDate clears the due date.
type updateTodoRequest struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Completed   *bool           `json:"completed"`
	Priority    *string         `json:"priority"`
	Category    *string         `json:"category"`
	DueDate     json.RawMessage `json:"dueDate"`
}

func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, msgs := parseListQuery(r)
	if len(msgs) > 0 {
		WriteErrors(w, http.StatusBadRequest, msgs)
		return
	}

	todos, err := h.svc.List(r.Context(), middleware.GetUserID(r), filter)
	if err != nil {
		handleServiceError(w, r, err, todoNotFound)
		return
	}

	WriteList(w, todos)
}

func (h *TodoHandler) Get(w http.ResponseWriter, r *http.Request) {
	todo, err := h.svc.GetByID(r.Context(), middleware.GetUserID(r), mux.Vars(r)["id"])
	if err != nil {
		handleServiceError(w, r, err, todoNotFound)
		return
	}

	WriteSuccess(w, http.StatusOK, todo)
}

func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTodoRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	dueDate, err := optionalString(req.DueDate)
	if err != nil {
		WriteErrors(w, http.StatusBadRequest, []string{"Please provide a valid due date"})
		return
	}

	todo, err := h.svc.Create(r.Context(), middleware.GetUserID(r), service.CreateTodoInput{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		Priority:    req.Priority,
		Category:    req.Category,
		DueDate:     dueDate,
	})
	if err != nil {
		handleServiceError(w, r, err, todoNotFound)
		return
	}

	WriteSuccess(w, http.StatusCreated, todo)
}

func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateTodoRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	dueDate, err := optionalString(req.DueDate)
	if err != nil {
		WriteErrors(w, http.StatusBadRequest, []string{"Please provide a valid due date"})
		return
	}

	todo, err := h.svc.Update(r.Context(), middleware.GetUserID(r), mux.Vars(r)["id"], service.UpdateTodoInput{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		Priority:    req.Priority,
		Category:    req.Category,
		DueDate:     dueDate,
	})
	if err != nil {
		handleServiceError(w, r, err, todoNotFound)
		return
	}

	WriteSuccess(w, http.StatusOK, todo)
}

func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), middleware.GetUserID(r), mux.Vars(r)["id"]); err != nil {
		handleServiceError(w, r, err, todoNotFound)
		return
	}

	WriteSuccess(w, http.StatusOK, struct{}{})
}

func (h *TodoHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	todo, err := h.svc.Toggle(r.Context(), middleware.GetUserID(r), mux.Vars(r)["id"])
	if err != nil {
		handleServiceError(w, r, err, todoNotFound)
		return
	}

	WriteSuccess(w, http.StatusOK, todo)
}

// parseListQuery reads completed, priority, category and sort. Empty values
// are treated as absent.
func parseListQuery(r *http.Request) (model.TodoFilter, []string) {
	q := r.URL.Query()
	var filter model.TodoFilter
	var msgs []string

	switch v := q.Get("completed"); v {
	case "":
	case "true", "false":
		completed := v == "true"
		filter.Completed = &completed
	default:
		msgs = append(msgs, "completed must be true or false")
	}

	if v := q.Get("priority"); v != "" {
		p, err := model.ParsePriority(v)
		if err != nil {
			msgs = append(msgs, "Priority must be low, medium, or high")
		} else {
			filter.Priority = &p
		}
	}

	if v := q.Get("category"); v != "" {
		filter.Category = &v
	}

	spec, err := model.ParseSort(q.Get("sort"))
	if err != nil {
		msgs = append(msgs, fmt.Sprintf("Invalid sort field %q", q.Get("sort")))
	} else {
		filter.Sort = spec
	}

	return filter, msgs
}

// optionalString decodes an optional, nullable JSON string. Absent yields
// nil; null yields a pointer to "".
func optionalString(raw json.RawMessage) (*string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	if string(raw) == "null" {
		empty := ""
		return &empty, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
