package handlers

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/superfishal-intelligence/backend/internal/models"
	"github.com/superfishal-intelligence/backend/internal/platform/apierr"
	"github.com/superfishal-intelligence/backend/internal/platform/logger"
	"github.com/superfishal-intelligence/backend/internal/services"
)

const (
	msgFetchResources  = "Failed to fetch resources"
	msgFetchResource   = "Failed to fetch resource"
	msgInvalidResource = "Invalid resource ID"
	// maxLogoBytes bounds multipart logo uploads.
	maxLogoBytes = 2 << 20
)

type ResourceHandler struct {
	svc *services.ResourceService
	log *logger.Logger
}

func NewResourceHandler(svc *services.ResourceService, log *logger.Logger) *ResourceHandler {
	return &ResourceHandler{svc: svc, log: log}
}

func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, r, h.log, err, msgFetchResources)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ResourceHandler) Popular(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		writeError(w, r, h.log, err, msgFetchResources)
		return
	}
	out, err := h.svc.Popular(r.Context(), limit)
	if err != nil {
		writeError(w, r, h.log, err, "Failed to fetch popular resources")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ResourceHandler) Featured(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		writeError(w, r, h.log, err, msgFetchResources)
		return
	}
	out, err := h.svc.Featured(r.Context(), limit)
	if err != nil {
		writeError(w, r, h.log, err, "Failed to fetch featured resources")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ResourceHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.ByCategory(r.Context(), chi.URLParam(r, "category"))
	if err != nil {
		writeError(w, r, h.log, err, "Failed to fetch resources by category")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ResourceHandler) Search(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, h.log, err, "Failed to search resources")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ResourceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", msgInvalidResource)
	if err != nil {
		writeError(w, r, h.log, err, msgFetchResource)
		return
	}
	res, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err, msgFetchResource)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ResourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.NewResource
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err, "Failed to create resource")
		return
	}
	res, err := h.svc.Create(r.Context(), &req)
	if err != nil {
		writeError(w, r, h.log, err, "Failed to create resource")
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *ResourceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", msgInvalidResource)
	if err != nil {
		writeError(w, r, h.log, err, "Failed to update resource")
		return
	}
	var patch models.ResourcePatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, r, h.log, err, "Failed to update resource")
		return
	}
	res, err := h.svc.Update(r.Context(), id, &patch)
	if err != nil {
		writeError(w, r, h.log, err, "Failed to update resource")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ResourceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", msgInvalidResource)
	if err != nil {
		writeError(w, r, h.log, err, "Failed to delete resource")
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, r, h.log, err, "Failed to delete resource")
		return
	}
	writeMessage(w, http.StatusOK, "Resource deleted successfully")
}

// UploadLogo accepts a multipart form with the image in field "logo".
func (h *ResourceHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", msgInvalidResource)
	if err != nil {
		writeError(w, r, h.log, err, "Failed to upload logo")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxLogoBytes+(64<<10))
	if err := r.ParseMultipartForm(maxLogoBytes); err != nil {
		writeError(w, r, h.log, apierr.BadRequest("Invalid multipart form"), "Failed to upload logo")
		return
	}
	file, header, err := r.FormFile("logo")
	if err != nil {
		writeError(w, r, h.log, apierr.BadRequest("logo file is required"), "Failed to upload logo")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		buf := make([]byte, 512)
		n, _ := file.Read(buf)
		contentType = http.DetectContentType(buf[:n])
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			writeError(w, r, h.log, err, "Failed to upload logo")
			return
		}
	}

	res, err := h.svc.UploadLogo(r.Context(), id, header.Filename, contentType, file)
	if err != nil {
		writeError(w, r, h.log, err, "Failed to upload logo")
		return
	}
	writeJSON(w, http.StatusOK, res)
}
