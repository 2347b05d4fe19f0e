package handler

import (
	"net/http"
	"time"
)

type HealthHandler struct {
	now func() time.Time
}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{now: time.Now}
}

type healthResponse struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, http.StatusOK, healthResponse{
		Message:   "Server is running",
		Timestamp: h.now().UTC(),
	})
}
