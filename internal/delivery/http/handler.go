package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"talkwire/internal/repository"
	"talkwire/internal/usecase"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type HttpHandler struct {
	userUc usecase.UserUsecase
	log    *zap.SugaredLogger
}

func NewHttpHandler(userUc usecase.UserUsecase, log *zap.SugaredLogger) *HttpHandler {
	return &HttpHandler{
		userUc: userUc,
		log:    log,
	}
}

type Response struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, response Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}

// GET /user/{id}
func (h *HttpHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userId, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || userId <= 0 {
		writeJSON(w, http.StatusBadRequest, Response{Message: "invalid user id"})
		return
	}

	user, err := h.userUc.Get(r.Context(), userId)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			writeJSON(w, http.StatusNotFound, Response{Message: "user not found"})
			return
		}
		h.log.Errorw("get user failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, Response{Message: "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, Response{Message: "success", Data: user})
}
