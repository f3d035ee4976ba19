package handlers

import (
	"net/http"

	"github.com/superfishal-intelligence/backend/internal/platform/logger"
	"github.com/superfishal-intelligence/backend/internal/services"
)

type AdminHandler struct {
	svc *services.AdminService
	log *logger.Logger
}

func NewAdminHandler(svc *services.AdminService, log *logger.Logger) *AdminHandler {
	return &AdminHandler{svc: svc, log: log}
}

func (h *AdminHandler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ResetDatabase(r.Context()); err != nil {
		writeError(w, r, h.log, err, "Failed to reset database")
		return
	}
	writeMessage(w, http.StatusOK, "Database reset successfully")
}

func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
