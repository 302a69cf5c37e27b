package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hammerstone/lotpix/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.Initialize(); err != nil {
		t.Fatalf("Failed to initialize schema: %v", err)
	}
	return s
}

func TestNextIDMonotonic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for want := int64(1); want <= 5; want++ {
		got, err := s.NextID(ctx, CounterItem)
		if err != nil {
			t.Fatalf("NextID failed: %v", err)
		}
		if got != want {
			t.Errorf("Expected %d, got %d", want, got)
		}
	}

	// Counters are independent.
	got, err := s.NextID(ctx, CounterImage)
	if err != nil {
		t.Fatalf("NextID failed: %v", err)
	}
	if got != 1 {
		t.Errorf("Expected image counter to start at 1, got %d", got)
	}
}

func TestPutItemAndQueryByAuction(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	metadata := models.NewItemMetadata()
	metadata.Set("metal", "silver")
	metadata.Set("collection", "summer2026")

	item := &models.Item{
		ItemID:    "2",
		ItemIndex: 0,
		AuctionID: "auctionA",
		CreatedBy: "user1",
		Title:     "Silver Ring",
		Description: "A ring.",
		ValueEstimate: models.ValueEstimate{MinValue: 100, MaxValue: 300, Currency: "USD"},
		Metadata:  metadata,
		Images:    []string{"processed/2/a.jpg"},
		CreatedAt: 1700000000,
		UpdatedAt: 1700000000,
	}
	if err := s.PutItem(ctx, item); err != nil {
		t.Fatalf("PutItem failed: %v", err)
	}

	other := &models.Item{ItemID: "10", AuctionID: "auctionB", CreatedBy: "user1", Title: "x", Description: "y"}
	if err := s.PutItem(ctx, other); err != nil {
		t.Fatalf("PutItem failed: %v", err)
	}

	items, err := s.ItemsByAuction(ctx, "auctionA")
	if err != nil {
		t.Fatalf("ItemsByAuction failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}
	got := items[0]
	if got.Title != "Silver Ring" || got.ValueEstimate.MinValue != 100 {
		t.Errorf("Unexpected item: %+v", got)
	}
	if got.Metadata == nil || got.Metadata.Metal != "silver" {
		t.Errorf("Metadata not restored: %+v", got.Metadata)
	}
	if got.Metadata.Extra["collection"] != "summer2026" {
		t.Errorf("Extension bag not restored: %+v", got.Metadata.Extra)
	}
	if len(got.Images) != 1 || got.Images[0] != "processed/2/a.jpg" {
		t.Errorf("Images not restored: %v", got.Images)
	}
}

func TestItemsByAuctionOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Numeric item-id order, not lexicographic: 9 before 10.
	for _, id := range []string{"10", "9", "11"} {
		item := &models.Item{ItemID: id, AuctionID: "a", CreatedBy: "u", Title: "t", Description: "d"}
		if err := s.PutItem(ctx, item); err != nil {
			t.Fatalf("PutItem failed: %v", err)
		}
	}

	items, err := s.ItemsByAuction(ctx, "a")
	if err != nil {
		t.Fatalf("ItemsByAuction failed: %v", err)
	}
	var order []string
	for _, it := range items {
		order = append(order, it.ItemID)
	}
	if order[0] != "9" || order[1] != "10" || order[2] != "11" {
		t.Errorf("Unexpected order: %v", order)
	}
}

func TestPutImage(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := &models.ImageRecord{
		ImageID:     "img_1",
		ItemID:      "2",
		AuctionID:   "auctionA",
		StorageKey:  "processed/2/a.jpg",
		OriginalKey: "uploads/a.jpg",
		CreatedAt:   1700000000,
	}
	if err := s.PutImage(ctx, rec); err != nil {
		t.Fatalf("PutImage failed: %v", err)
	}
	// Duplicate ids must be rejected by the primary key.
	if err := s.PutImage(ctx, rec); err == nil {
		t.Error("Expected duplicate image id to fail")
	}
}
