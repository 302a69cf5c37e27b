package handlers

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hammerstone/lotpix/internal/assembly"
	"github.com/hammerstone/lotpix/internal/blob"
	"github.com/hammerstone/lotpix/internal/enrich"
	"github.com/hammerstone/lotpix/internal/grouping"
	"github.com/hammerstone/lotpix/internal/marker"
	"github.com/hammerstone/lotpix/internal/models"
	"github.com/hammerstone/lotpix/internal/store"
)

type stubDetector struct {
	markers map[string][]models.DetectedMarker
}

func (d *stubDetector) Detect(data []byte) ([]models.DetectedMarker, error) {
	return d.markers[string(data)], nil
}

type stubEnricher struct{}

func (stubEnricher) Enrich(_ context.Context, _ []string, _ map[string]any) enrich.Result {
	return enrich.Result{
		Title:              "Test Item",
		Description:        "A test item.",
		ValueEstimate:      models.ValueEstimate{MinValue: 50, MaxValue: 150, Currency: "USD"},
		DiscoveredMetadata: map[string]any{},
	}
}

type testEnv struct {
	handler *Handler
	blobs   blob.Store
}

func newTestEnv(t *testing.T, detector marker.Detector) *testEnv {
	t.Helper()
	dir := t.TempDir()

	records, err := store.New(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { records.Close() })
	if err := records.Initialize(); err != nil {
		t.Fatalf("Failed to initialize schema: %v", err)
	}

	blobs, err := blob.NewFSStore(dir)
	if err != nil {
		t.Fatalf("Failed to create blob store: %v", err)
	}

	table := marker.DefaultTable()
	grouper := grouping.NewMarkerGrouper(blobs, detector, table)
	pipeline := assembly.New(blobs, records, detector, table, stubEnricher{})

	return &testEnv{
		handler: New(records, blobs, grouper, pipeline, "https://img.example.com"),
		blobs:   blobs,
	}
}

func postJSON(t *testing.T, h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func decodeGroups(t *testing.T, w *httptest.ResponseRecorder) []models.ItemGroup {
	t.Helper()
	var groups []models.ItemGroup
	if err := json.NewDecoder(w.Body).Decode(&groups); err != nil {
		t.Fatalf("Failed to decode groups: %v", err)
	}
	return groups
}

func TestHandleGroupImagesPattern(t *testing.T) {
	env := newTestEnv(t, &stubDetector{})

	w := postJSON(t, env.handler.HandleGroupImages, `{
		"num_items": 2, "views_per_item": 2,
		"images": [{"key":"a.jpg"},{"key":"b.jpg"},{"key":"c.jpg"},{"key":"d.jpg"}]
	}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body)
	}

	groups := decodeGroups(t, w)
	if len(groups) != 2 {
		t.Fatalf("Expected 2 groups, got %d", len(groups))
	}
	// Flat sequence: item 0 gets positions 0 and 2, item 1 gets 1 and 3.
	if groups[0].Images[0].Key != "a.jpg" || groups[0].Images[1].Key != "c.jpg" {
		t.Errorf("Unexpected group 0: %+v", groups[0].Images)
	}
	if groups[1].Images[0].Key != "b.jpg" || groups[1].Images[1].Key != "d.jpg" {
		t.Errorf("Unexpected group 1: %+v", groups[1].Images)
	}
}

func TestHandleGroupImagesValidation(t *testing.T) {
	env := newTestEnv(t, &stubDetector{})

	tests := []struct {
		name string
		body string
		want string
	}{
		{"invalid JSON", `{nope`, "Invalid JSON"},
		{"no images", `{"num_items":1,"views_per_item":1,"images":[]}`, "No images provided."},
		{"missing num_items", `{"views_per_item":2,"images":[{"key":"a.jpg"}]}`, "num_items is required."},
		{"missing views_per_item", `{"num_items":2,"images":[{"key":"a.jpg"}]}`, "views_per_item is required."},
		{"unknown strategy", `{"strategy":"magic","images":[{"key":"a.jpg"}]}`, "Unknown strategy"},
		{"count mismatch", `{"num_items":3,"views_per_item":2,"images":[{"key":"a.jpg"}]}`, "but got 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, env.handler.HandleGroupImages, tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("Expected 400, got %d: %s", w.Code, w.Body)
			}
			if !strings.Contains(w.Body.String(), tt.want) {
				t.Errorf("Expected error mentioning %q, got %s", tt.want, w.Body)
			}
		})
	}
}

func TestHandleGroupImagesMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t, &stubDetector{})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	env.handler.HandleGroupImages(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", w.Code)
	}
}

func TestHandleGroupImagesMarker(t *testing.T) {
	detector := &stubDetector{markers: map[string][]models.DetectedMarker{
		"image-a": {{ID: 5}},
		"image-b": {{ID: 5}},
		"image-c": {},
	}}
	env := newTestEnv(t, detector)
	ctx := context.Background()
	for key, content := range map[string]string{
		"uploads/a.jpg": "image-a",
		"uploads/b.jpg": "image-b",
		"uploads/c.jpg": "image-c",
	} {
		if err := env.blobs.Put(ctx, key, []byte(content), "image/jpeg"); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	w := postJSON(t, env.handler.HandleGroupImages, `{
		"strategy": "marker",
		"images": [{"key":"uploads/a.jpg"},{"key":"uploads/c.jpg"},{"key":"uploads/b.jpg"}]
	}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body)
	}

	groups := decodeGroups(t, w)
	if len(groups) != 2 {
		t.Fatalf("Expected 2 groups, got %d", len(groups))
	}
	if groups[0].MarkerID != "marker_5" || len(groups[0].Images) != 2 {
		t.Errorf("Unexpected marker group: %+v", groups[0])
	}
	if groups[1].MarkerID != grouping.UnknownGroup || groups[1].Images[0].Key != "uploads/c.jpg" {
		t.Errorf("Unexpected unknown group: %+v", groups[1])
	}
}

func TestHandleFinalizeItems(t *testing.T) {
	env := newTestEnv(t, &stubDetector{})
	ctx := context.Background()
	if err := env.blobs.Put(ctx, "uploads/a.jpg", []byte("not inspected"), "image/jpeg"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	w := postJSON(t, env.handler.HandleFinalizeItems, `{
		"auction_id": " auctionA ",
		"created_by": "user1",
		"metadata": {"metal": "gold"},
		"groups": [{"item_index": 0, "images": [{"index": 0, "key": "uploads/a.jpg"}]}]
	}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body)
	}

	var resp struct {
		Message string         `json:"message"`
		Items   []*models.Item `json:"items"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Message != "Items finalized" {
		t.Errorf("Unexpected message: %s", resp.Message)
	}
	if len(resp.Items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(resp.Items))
	}
	item := resp.Items[0]
	if item.Title != "Test Item" || item.AuctionID != "auctionA" {
		t.Errorf("Unexpected item: %+v", item)
	}
	if item.Metadata == nil || item.Metadata.Metal != "gold" {
		t.Errorf("Declared metadata lost: %+v", item.Metadata)
	}

	// The item is queryable afterwards.
	req := httptest.NewRequest(http.MethodGet, "/?auction_id=auctionA", nil)
	lw := httptest.NewRecorder()
	env.handler.HandleItems(lw, req)
	if lw.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", lw.Code, lw.Body)
	}
	var items []*models.Item
	if err := json.NewDecoder(lw.Body).Decode(&items); err != nil {
		t.Fatalf("Failed to decode items: %v", err)
	}
	if len(items) != 1 || items[0].ItemID != item.ItemID {
		t.Errorf("Finalized item not listed: %+v", items)
	}
}

func TestHandleFinalizeItemsValidation(t *testing.T) {
	env := newTestEnv(t, &stubDetector{})

	w := postJSON(t, env.handler.HandleFinalizeItems, `{
		"groups": [{"item_index": 0}]
	}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", w.Code, w.Body)
	}
	if !strings.Contains(w.Body.String(), "created_by") {
		t.Errorf("Expected created_by error, got %s", w.Body)
	}
}

func TestHandleItemsRequiresAuction(t *testing.T) {
	env := newTestEnv(t, &stubDetector{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	env.handler.HandleItems(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}

func TestHandleItemsEmptyList(t *testing.T) {
	env := newTestEnv(t, &stubDetector{})

	req := httptest.NewRequest(http.MethodGet, "/?auction_id=nothing", nil)
	w := httptest.NewRecorder()
	env.handler.HandleItems(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("Expected an empty JSON array, got %s", w.Body)
	}
}

func TestHandleExportCatalog(t *testing.T) {
	env := newTestEnv(t, &stubDetector{})
	ctx := context.Background()
	if err := env.blobs.Put(ctx, "uploads/a.jpg", []byte("x"), "image/jpeg"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// Nothing finalized yet.
	w := postJSON(t, env.handler.HandleExportCatalog, `{"auction_id":"auctionA","platform":"liveauctioneers"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 before any items exist, got %d: %s", w.Code, w.Body)
	}

	fw := postJSON(t, env.handler.HandleFinalizeItems, `{
		"auction_id": "auctionA",
		"created_by": "user1",
		"groups": [{"item_index": 0, "images": [{"index": 0, "key": "uploads/a.jpg"}]}]
	}`)
	if fw.Code != http.StatusCreated {
		t.Fatalf("Finalize failed: %d: %s", fw.Code, fw.Body)
	}

	w = postJSON(t, env.handler.HandleExportCatalog, `{"auction_id":"auctionA","platform":"LiveAuctioneers"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body)
	}
	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	wantKey := "exports/auctionA/liveauctioneers_catalog.csv"
	if resp["key"] != wantKey {
		t.Errorf("Unexpected key: %s", resp["key"])
	}

	data, err := env.blobs.Fetch(ctx, wantKey)
	if err != nil {
		t.Fatalf("Exported catalog not stored: %v", err)
	}
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("Stored catalog is not valid CSV: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected header plus one lot, got %d rows", len(rows))
	}
	if rows[1][1] != "Test Item" {
		t.Errorf("Unexpected title column: %s", rows[1][1])
	}
}

func TestHandleExportCatalogUnsupportedPlatform(t *testing.T) {
	env := newTestEnv(t, &stubDetector{})

	w := postJSON(t, env.handler.HandleExportCatalog, `{"auction_id":"a","platform":"ebay"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "liveauctioneers") {
		t.Errorf("Expected platform hint, got %s", w.Body)
	}
}
