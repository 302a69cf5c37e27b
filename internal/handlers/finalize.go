package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/hammerstone/lotpix/internal/assembly"
	"github.com/hammerstone/lotpix/internal/models"
)

type finalizeRequest struct {
	AuctionID string             `json:"auction_id"`
	CreatedBy string             `json:"created_by"`
	Metadata  map[string]any     `json:"metadata"`
	Groups    []models.ItemGroup `json:"groups"`
}

// HandleFinalizeItems runs the assembly pipeline over the posted groups,
// creating one persisted item per group.
func (h *Handler) HandleFinalizeItems(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req finalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	items, err := h.pipeline.FinalizeGroups(r.Context(), assembly.FinalizeRequest{
		AuctionID: strings.TrimSpace(req.AuctionID),
		CreatedBy: req.CreatedBy,
		Metadata:  req.Metadata,
		Groups:    req.Groups,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Items finalized",
		"items":   items,
	})
}

// HandleItems lists finalized items for an auction.
func (h *Handler) HandleItems(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	auctionID := r.URL.Query().Get("auction_id")
	if auctionID == "" {
		h.writeError(w, "auction_id is required", http.StatusBadRequest)
		return
	}

	items, err := h.records.ItemsByAuction(r.Context(), auctionID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if items == nil {
		items = []*models.Item{}
	}
	h.writeJSON(w, http.StatusOK, items)
}
