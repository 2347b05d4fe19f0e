package handler

import (
	"net/http"

	"github.com/jaekwang-park/todolist/internal/middleware"
	"github.com/jaekwang-park/todolist/internal/service"
)

// AuthHandler handles account registration and sign-in.
type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type confirmRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		handleServiceError(w, r, err, "User not found")
		return
	}

	WriteSuccess(w, http.StatusCreated, result)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		handleServiceError(w, r, err, "User not found")
		return
	}

	WriteSuccess(w, http.StatusOK, result)
}

// Confirm verifies a Cognito sign-up code.
func (h *AuthHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := h.svc.ConfirmSignUp(r.Context(), service.ConfirmSignUpInput{
		Email: req.Email,
		Code:  req.Code,
	})
	if err != nil {
		handleServiceError(w, r, err, "User not found")
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]string{"message": "Account confirmed"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.Me(r.Context(), middleware.GetUserID(r))
	if err != nil {
		handleServiceError(w, r, err, "User not found")
		return
	}

	WriteSuccess(w, http.StatusOK, user)
}
