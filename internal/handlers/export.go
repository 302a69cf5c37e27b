package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/hammerstone/lotpix/internal/export"
	"github.com/hammerstone/lotpix/internal/models"
)

type exportRequest struct {
	AuctionID string `json:"auction_id"`
	Platform  string `json:"platform"`
}

// HandleExportCatalog writes an auction's catalog CSV to the blob store and
// returns its key.
func (h *Handler) HandleExportCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.AuctionID == "" {
		h.writeError(w, "auction_id is required", http.StatusBadRequest)
		return
	}
	platform := strings.ToLower(req.Platform)
	if platform != "liveauctioneers" {
		h.writeError(w, "Unsupported platform. Currently only 'liveauctioneers' is supported.", http.StatusBadRequest)
		return
	}

	items, err := h.records.ItemsByAuction(r.Context(), req.AuctionID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if len(items) == 0 {
		h.writeDomainError(w, fmt.Errorf("%w: no items found for auction %s", models.ErrNotFound, req.AuctionID))
		return
	}

	var buf bytes.Buffer
	if err := export.WriteLiveAuctioneersCSV(&buf, items, h.imageBaseURL); err != nil {
		h.writeDomainError(w, err)
		return
	}

	key := path.Join("exports", req.AuctionID, platform+"_catalog.csv")
	if err := h.blobs.Put(r.Context(), key, buf.Bytes(), "text/csv"); err != nil {
		h.writeDomainError(w, err)
		return
	}

	slog.Info("Catalog exported", "auction_id", req.AuctionID, "platform", platform, "key", key, "items", len(items))
	h.writeJSON(w, http.StatusOK, map[string]string{
		"message": "Catalog exported successfully",
		"key":     key,
	})
}
