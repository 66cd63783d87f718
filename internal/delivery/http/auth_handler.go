package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"talkwire/internal/entity"
	"talkwire/internal/usecase"

	"go.uber.org/zap"
)

type AuthHandler struct {
	authUc usecase.AuthUsecase
	log    *zap.SugaredLogger
}

func NewAuthHandler(authUc usecase.AuthUsecase, log *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{
		authUc: authUc,
		log:    log,
	}
}

// POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req entity.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Message: "invalid request body"})
		return
	}

	if req.Email == "" || req.Password == "" || req.Username == "" || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, Response{Message: "email, username, password, and name are required"})
		return
	}
	if len(req.Password) < 6 {
		writeJSON(w, http.StatusBadRequest, Response{Message: "password must be at least 6 characters"})
		return
	}

	authResponse, err := h.authUc.Register(r.Context(), req)
	if err != nil {
		statusCode := http.StatusInternalServerError
		message := "internal server error"

		switch {
		case errors.Is(err, usecase.ErrEmailAlreadyTaken):
			statusCode = http.StatusConflict
			message = "email already taken"
		case errors.Is(err, usecase.ErrUsernameAlreadyTaken):
			statusCode = http.StatusConflict
			message = "username already taken"
		default:
			h.log.Errorw("register failed", "error", err)
		}

		writeJSON(w, statusCode, Response{Message: message})
		return
	}

	writeJSON(w, http.StatusCreated, Response{Message: "success", Data: authResponse})
}

// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req entity.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Message: "invalid request body"})
		return
	}

	authResponse, err := h.authUc.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, Response{Message: "invalid email or password"})
			return
		}
		h.log.Errorw("login failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, Response{Message: "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, Response{Message: "success", Data: authResponse})
}
