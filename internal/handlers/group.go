package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hammerstone/lotpix/internal/grouping"
	"github.com/hammerstone/lotpix/internal/models"
)

type groupRequest struct {
	NumItems     int    `json:"num_items"`
	ViewsPerItem int    `json:"views_per_item"`
	Strategy     string `json:"strategy"`
	Images       []struct {
		Key string `json:"key"`
	} `json:"images"`
}

// HandleGroupImages partitions a batch of uploaded images into per-item
// groups. The default "pattern" strategy uses the declared shooting sequence;
// the "marker" strategy detects the fiducial tag in each photograph.
func (h *Handler) HandleGroupImages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req groupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Images) == 0 {
		h.writeError(w, "No images provided.", http.StatusBadRequest)
		return
	}

	switch req.Strategy {
	case "", "pattern":
		if req.NumItems == 0 {
			h.writeError(w, "num_items is required.", http.StatusBadRequest)
			return
		}
		if req.ViewsPerItem == 0 {
			h.writeError(w, "views_per_item is required.", http.StatusBadRequest)
			return
		}
		keys := make([]string, len(req.Images))
		for i, img := range req.Images {
			keys[i] = img.Key
		}
		groups, err := grouping.ByDeclaredPattern(req.NumItems, req.ViewsPerItem, keys)
		if err != nil {
			h.writeDomainError(w, err)
			return
		}
		slog.Info("Images grouped", "strategy", "pattern", "groups", len(groups))
		h.writeJSON(w, http.StatusOK, groups)

	case "marker":
		refs := make([]models.ImageRef, len(req.Images))
		for i, img := range req.Images {
			refs[i] = models.ImageRef{Index: i, Key: img.Key}
		}
		groups := h.grouper.Group(r.Context(), refs)
		slog.Info("Images grouped", "strategy", "marker", "groups", len(groups))
		h.writeJSON(w, http.StatusOK, groups)

	default:
		h.writeError(w, "Unknown strategy: "+req.Strategy, http.StatusBadRequest)
	}
}
