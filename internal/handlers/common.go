// Package handlers exposes the grouping, finalize, and export operations over
// HTTP.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hammerstone/lotpix/internal/assembly"
	"github.com/hammerstone/lotpix/internal/blob"
	"github.com/hammerstone/lotpix/internal/grouping"
	"github.com/hammerstone/lotpix/internal/models"
	"github.com/hammerstone/lotpix/internal/store"
)

type Handler struct {
	records      store.Records
	blobs        blob.Store
	grouper      *grouping.MarkerGrouper
	pipeline     *assembly.Pipeline
	imageBaseURL string
}

func New(records store.Records, blobs blob.Store, grouper *grouping.MarkerGrouper, pipeline *assembly.Pipeline, imageBaseURL string) *Handler {
	return &Handler{
		records:      records,
		blobs:        blobs,
		grouper:      grouper,
		pipeline:     pipeline,
		imageBaseURL: imageBaseURL,
	}
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	h.writeJSON(w, code, map[string]string{"error": message})
}

// writeDomainError maps the error taxonomy onto status codes: validation
// failures are the client's fault, missing records are 404, everything else
// is a server error.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		h.writeError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, models.ErrNotFound):
		h.writeError(w, err.Error(), http.StatusNotFound)
	default:
		slog.Error("Request failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":  "Internal server error",
			"detail": err.Error(),
		})
	}
}
