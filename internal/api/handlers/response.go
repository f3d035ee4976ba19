package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/superfishal-intelligence/backend/internal/models"
	"github.com/superfishal-intelligence/backend/internal/platform/apierr"
	"github.com/superfishal-intelligence/backend/internal/platform/logger"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

type errorBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Message: msg})
}

// writeError renders err as {"message": ...}. Validation and apierr failures
// keep their own message; anything else is logged and answered with the
// endpoint's generic 500 message.
func writeError(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error, internalMsg string) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		writeMessage(w, http.StatusBadRequest, verr.Error())
		return
	}
	var ae *apierr.Error
	if errors.As(err, &ae) {
		if ae.Status >= http.StatusInternalServerError {
			log.Error("request failed", "path", r.URL.Path, "status", ae.Status, "error", err)
		}
		writeMessage(w, ae.Status, ae.Message)
		return
	}
	log.Error(internalMsg, "path", r.URL.Path, "error", err)
	writeMessage(w, http.StatusInternalServerError, internalMsg)
}

// decodeJSON reads a JSON body into dst. Unknown fields are ignored.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apierr.BadRequest("Invalid JSON body")
	}
	return nil
}

// decodeOptionalJSON is decodeJSON for bodies that may be absent. An empty
// body, chunked or not, leaves dst untouched.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return apierr.BadRequest("Invalid JSON body")
	}
	return nil
}

// pathID parses a positive integer URL parameter.
func pathID(r *http.Request, name, invalidMsg string) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id <= 0 {
		return 0, apierr.BadRequest(invalidMsg)
	}
	return id, nil
}

// queryLimit returns the limit query parameter, or 0 when absent. Services
// replace 0 with their default.
func queryLimit(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apierr.BadRequest("Invalid limit")
	}
	return n, nil
}

// queryInts parses a comma separated list of integers such as "1,2,3".
func queryInts(raw string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, apierr.BadRequest("Invalid resource ID list")
		}
		out = append(out, n)
	}
	return out, nil
}

func queryList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
