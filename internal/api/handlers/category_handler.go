package handlers

import (
	"net/http"

	"github.com/superfishal-intelligence/backend/internal/models"
	"github.com/superfishal-intelligence/backend/internal/platform/logger"
	"github.com/superfishal-intelligence/backend/internal/services"
)

type CategoryHandler struct {
	svc *services.CategoryService
	log *logger.Logger
}

func NewCategoryHandler(svc *services.CategoryService, log *logger.Logger) *CategoryHandler {
	return &CategoryHandler{svc: svc, log: log}
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, r, h.log, err, "Failed to fetch categories")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "Invalid category ID")
	if err != nil {
		writeError(w, r, h.log, err, "Failed to fetch category")
		return
	}
	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err, "Failed to fetch category")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.NewCategory
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err, "Failed to create category")
		return
	}
	c, err := h.svc.Create(r.Context(), &req)
	if err != nil {
		writeError(w, r, h.log, err, "Failed to create category")
		return
	}
	writeJSON(w, http.StatusCreated, c)
}
