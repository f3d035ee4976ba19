package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/superfishal-intelligence/backend/internal/models"
	"github.com/superfishal-intelligence/backend/internal/platform/apierr"
	"github.com/superfishal-intelligence/backend/internal/platform/logger"
	"github.com/superfishal-intelligence/backend/internal/services"
)

type ChatHandler struct {
	svc *services.ChatService
	log *logger.Logger
}

func NewChatHandler(svc *services.ChatService, log *logger.Logger) *ChatHandler {
	return &ChatHandler{svc: svc, log: log}
}

type chatExchangeResponse struct {
	UserMessage      *models.ChatMessage `json:"userMessage"`
	AssistantMessage *models.ChatMessage `json:"assistantMessage"`
}

// Post stores a chat message. A user message gets an assistant reply and both
// are returned; any other role returns just the stored message.
func (h *ChatHandler) Post(w http.ResponseWriter, r *http.Request) {
	var req models.NewChatMessage
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err, "Failed to process chat message")
		return
	}
	ex, err := h.svc.Post(r.Context(), &req)
	if err != nil {
		writeError(w, r, h.log, err, "Failed to process chat message")
		return
	}
	if ex.Reply == nil {
		writeJSON(w, http.StatusCreated, ex.Message)
		return
	}
	writeJSON(w, http.StatusCreated, chatExchangeResponse{UserMessage: ex.Message, AssistantMessage: ex.Reply})
}

// History returns every message, or one user's when ?userId= is given.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	var userID *int
	if raw := strings.TrimSpace(r.URL.Query().Get("userId")); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, r, h.log, apierr.BadRequest("Invalid user ID"), "Failed to fetch chat history")
			return
		}
		userID = &id
	}
	out, err := h.svc.History(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.log, err, "Failed to fetch chat history")
		return
	}
	writeJSON(w, http.StatusOK, out)
}
