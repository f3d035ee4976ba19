package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/superfishal-intelligence/backend/internal/models"
	"github.com/superfishal-intelligence/backend/internal/platform/logger"
	"github.com/superfishal-intelligence/backend/internal/services"
)

const (
	msgFetchContent   = "Failed to fetch content"
	msgInvalidContent = "Invalid content ID"
)

type ContentHandler struct {
	svc *services.ContentService
	log *logger.Logger
}

func NewContentHandler(svc *services.ContentService, log *logger.Logger) *ContentHandler {
	return &ContentHandler{svc: svc, log: log}
}

func (h *ContentHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		writeError(w, r, h.log, err, msgFetchContent)
		return
	}
	out, err := h.svc.List(r.Context(), limit)
	if err != nil {
		writeError(w, r, h.log, err, msgFetchContent)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ContentHandler) Featured(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		writeError(w, r, h.log, err, msgFetchContent)
		return
	}
	out, err := h.svc.Featured(r.Context(), limit)
	if err != nil {
		writeError(w, r, h.log, err, "Failed to fetch featured content")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ContentHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		writeError(w, r, h.log, err, msgFetchContent)
		return
	}
	out, err := h.svc.ByCategory(r.Context(), chi.URLParam(r, "category"), limit)
	if err != nil {
		writeError(w, r, h.log, err, "Failed to fetch content by category")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ContentHandler) ByTags(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		writeError(w, r, h.log, err, msgFetchContent)
		return
	}
	out, err := h.svc.ByTags(r.Context(), queryList(r.URL.Query().Get("tags")), limit)
	if err != nil {
		writeError(w, r, h.log, err, "Failed to fetch content by tags")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ContentHandler) Related(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		writeError(w, r, h.log, err, msgFetchContent)
		return
	}
	ids, err := queryInts(r.URL.Query().Get("resourceIds"))
	if err != nil {
		writeError(w, r, h.log, err, msgFetchContent)
		return
	}
	out, err := h.svc.Related(r.Context(), ids, limit)
	if err != nil {
		writeError(w, r, h.log, err, "Failed to fetch related content")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ContentHandler) Search(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, h.log, err, "Failed to search content")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ContentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", msgInvalidContent)
	if err != nil {
		writeError(w, r, h.log, err, msgFetchContent)
		return
	}
	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err, msgFetchContent)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *ContentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.NewGeneratedContent
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err, "Failed to create content")
		return
	}
	c, err := h.svc.Create(r.Context(), &req)
	if err != nil {
		writeError(w, r, h.log, err, "Failed to create content")
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *ContentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", msgInvalidContent)
	if err != nil {
		writeError(w, r, h.log, err, "Failed to update content")
		return
	}
	var patch models.ContentPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, r, h.log, err, "Failed to update content")
		return
	}
	c, err := h.svc.Update(r.Context(), id, &patch)
	if err != nil {
		writeError(w, r, h.log, err, "Failed to update content")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *ContentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", msgInvalidContent)
	if err != nil {
		writeError(w, r, h.log, err, "Failed to delete content")
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, r, h.log, err, "Failed to delete content")
		return
	}
	writeMessage(w, http.StatusOK, "Content deleted successfully")
}

// Generate runs the provider chain. Provider outages still produce 201 with
// fallback content; the headers say which provider was used.
func (h *ContentHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateContentRequest
	if err := decodeOptionalJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err, "Failed to generate content")
		return
	}
	gen, err := h.svc.Generate(r.Context(), &req)
	if err != nil {
		writeError(w, r, h.log, err, "Failed to generate content")
		return
	}
	w.Header().Set("X-Content-Provider", string(gen.Provider))
	if gen.Fallback {
		w.Header().Set("X-Content-Fallback", "true")
	}
	writeJSON(w, http.StatusCreated, gen.Content)
}

// AnalyzeResources answers 200 with placeholder resources when no provider responds.
func (h *ContentHandler) AnalyzeResources(w http.ResponseWriter, r *http.Request) {
	var req models.AnalyzeResourcesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err, "Failed to analyze resources")
		return
	}
	analysis, err := h.svc.AnalyzeResources(r.Context(), &req)
	if err != nil {
		writeError(w, r, h.log, err, "Failed to analyze resources")
		return
	}
	if analysis.Fallback {
		w.Header().Set("X-Content-Fallback", "true")
	}
	w.Header().Set("X-Content-Provider", analysis.Provider)
	writeJSON(w, http.StatusOK, analysis)
}

func (h *ContentHandler) Script(w http.ResponseWriter, r *http.Request) {
	var req models.ScriptRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err, "Failed to generate script")
		return
	}
	pkg, err := h.svc.Script(r.Context(), &req)
	if err != nil {
		writeError(w, r, h.log, err, "Failed to generate script")
		return
	}
	writeJSON(w, http.StatusOK, pkg)
}
