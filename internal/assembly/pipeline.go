// Package assembly turns grouped images into finalized auction items: it
// processes each group's photographs (marker detection, metadata extraction,
// crop, write-back), merges metadata, enriches the item, and persists the
// records.
package assembly

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"path"
	"sort"
	"strconv"
	"time"

	"github.com/hammerstone/lotpix/internal/blob"
	"github.com/hammerstone/lotpix/internal/enrich"
	"github.com/hammerstone/lotpix/internal/marker"
	"github.com/hammerstone/lotpix/internal/models"
	"github.com/hammerstone/lotpix/internal/store"
)

// FinalizeRequest carries everything needed to turn groups into items.
// Metadata applies to all items; discovered metadata wins over it on key
// collision.
type FinalizeRequest struct {
	AuctionID string
	CreatedBy string
	Metadata  map[string]any
	Groups    []models.ItemGroup
}

// Pipeline assembles items from image groups. All collaborators are injected;
// the pipeline itself holds no mutable state and processes groups and images
// strictly sequentially.
type Pipeline struct {
	blobs    blob.Store
	records  store.Records
	detector marker.Detector
	table    *marker.Table
	enricher enrich.Enricher
	now      func() time.Time
}

// New builds a pipeline.
func New(blobs blob.Store, records store.Records, detector marker.Detector, table *marker.Table, enricher enrich.Enricher) *Pipeline {
	return &Pipeline{
		blobs:    blobs,
		records:  records,
		detector: detector,
		table:    table,
		enricher: enricher,
		now:      time.Now,
	}
}

// FinalizeGroups processes each group into one persisted item and returns the
// created items in group order.
//
// A per-image failure (fetch, decode, write-back) drops that image from the
// item and continues; a group whose every image failed still yields an item
// with an empty image list. Identifier allocation and record writes are
// fatal: the request stops there, and items already persisted by earlier
// groups stay persisted. There is no cross-group transaction.
func (p *Pipeline) FinalizeGroups(ctx context.Context, req FinalizeRequest) ([]*models.Item, error) {
	if req.CreatedBy == "" {
		return nil, fmt.Errorf("%w: created_by is required", models.ErrValidation)
	}
	if len(req.Groups) == 0 {
		return nil, fmt.Errorf("%w: groups[] is required", models.ErrValidation)
	}

	declared := models.NewItemMetadata()
	declared.SetAll(req.Metadata)

	items := make([]*models.Item, 0, len(req.Groups))
	for _, group := range req.Groups {
		item, err := p.finalizeGroup(ctx, req, declared, group)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (p *Pipeline) finalizeGroup(ctx context.Context, req FinalizeRequest, declared *models.ItemMetadata, group models.ItemGroup) (*models.Item, error) {
	images := append([]models.ImageRef(nil), group.Images...)
	sort.Slice(images, func(a, b int) bool { return images[a].Index < images[b].Index })

	seq, err := p.records.NextID(ctx, store.CounterItem)
	if err != nil {
		return nil, fmt.Errorf("allocate item id: %w", err)
	}
	itemID := strconv.FormatInt(seq, 10)
	now := p.now().Unix()

	// Declared metadata first, then whatever the images reveal on top of
	// it, later images overwriting earlier ones.
	metadata := declared.Clone()

	var finalKeys, originalKeys []string
	for _, img := range images {
		key, err := p.processImage(ctx, itemID, img, metadata)
		if err != nil {
			slog.Warn("Skipping image", "item_id", itemID, "key", img.Key, "err", err)
			continue
		}
		finalKeys = append(finalKeys, key)
		originalKeys = append(originalKeys, img.Key)
	}

	enriched := p.enricher.Enrich(ctx, finalKeys, metadata.ToMap())
	metadata.SetAll(enriched.DiscoveredMetadata)

	item := &models.Item{
		ItemID:        itemID,
		ItemIndex:     group.ItemIndex,
		AuctionID:     req.AuctionID,
		CreatedBy:     req.CreatedBy,
		Title:         enriched.Title,
		Description:   enriched.Description,
		ValueEstimate: enriched.ValueEstimate,
		Metadata:      metadata,
		Images:        finalKeys,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := p.records.PutItem(ctx, item); err != nil {
		return nil, fmt.Errorf("persist item %s: %w", itemID, err)
	}

	for i, key := range finalKeys {
		imgSeq, err := p.records.NextID(ctx, store.CounterImage)
		if err != nil {
			return nil, fmt.Errorf("allocate image id: %w", err)
		}
		rec := &models.ImageRecord{
			ImageID:     fmt.Sprintf("img_%d", imgSeq),
			ItemID:      itemID,
			AuctionID:   req.AuctionID,
			StorageKey:  key,
			OriginalKey: originalKeys[i],
			CreatedAt:   now,
		}
		if err := p.records.PutImage(ctx, rec); err != nil {
			return nil, fmt.Errorf("persist image record %s: %w", rec.ImageID, err)
		}
	}

	slog.Info("Item finalized", "item_id", itemID, "item_index", group.ItemIndex, "images", len(finalKeys))
	return item, nil
}

// processImage runs one photograph through detection, metadata extraction,
// and cropping, writes the processed bytes back under the item's prefix, and
// deletes the original. Returns the processed storage key. Detected metadata
// is folded into metadata before cropping, per stage order.
func (p *Pipeline) processImage(ctx context.Context, itemID string, img models.ImageRef, metadata *models.ItemMetadata) (string, error) {
	data, err := p.blobs.Fetch(ctx, img.Key)
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}

	markers, err := p.detector.Detect(data)
	if err != nil {
		return "", fmt.Errorf("detect: %w", err)
	}
	metadata.SetAll(p.table.Interpret(markers))

	contentType := contentTypeFor(img.Key)
	if m, ok := p.table.ItemMarker(markers); ok {
		cropped, changed, err := marker.CropBytes(data, &m)
		if err != nil {
			return "", fmt.Errorf("crop: %w", err)
		}
		if changed {
			data = cropped
			contentType = "image/jpeg"
		}
	}

	processedKey := path.Join("processed", itemID, path.Base(img.Key))
	if err := p.blobs.Put(ctx, processedKey, data, contentType); err != nil {
		return "", fmt.Errorf("store processed: %w", err)
	}

	// Best-effort: the processed copy is already durable.
	if err := p.blobs.Delete(ctx, img.Key); err != nil {
		slog.Warn("Failed to delete original image", "key", img.Key, "err", err)
	}
	return processedKey, nil
}

func contentTypeFor(key string) string {
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
