package handlers

import (
	"net/http"

	"github.com/superfishal-intelligence/backend/internal/models"
	"github.com/superfishal-intelligence/backend/internal/platform/logger"
	"github.com/superfishal-intelligence/backend/internal/services"
)

type AuthHandler struct {
	users *services.UserService
	log   *logger.Logger
}

func NewAuthHandler(users *services.UserService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{users: users, log: log}
}

type tokenResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.Credentials
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err, "Failed to register user")
		return
	}
	u, err := h.users.Register(r.Context(), &req)
	if err != nil {
		writeError(w, r, h.log, err, "Failed to register user")
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.Credentials
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err, "Failed to log in")
		return
	}
	token, u, err := h.users.Login(r.Context(), &req)
	if err != nil {
		writeError(w, r, h.log, err, "Failed to log in")
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token, User: u})
}
