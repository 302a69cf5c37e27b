package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/hammerstone/lotpix/internal/models"
)

// PutItem inserts a finalized item.
func (s *Store) PutItem(ctx context.Context, item *models.Item) error {
	metadataJSON, err := json.Marshal(item.Metadata)
	if err != nil {
		return fmt.Errorf("marshal item metadata: %w", err)
	}
	imagesJSON, err := json.Marshal(item.Images)
	if err != nil {
		return fmt.Errorf("marshal item images: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO items (item_id, item_index, auction_id, created_by, title, description,
			min_value, max_value, currency, metadata, images, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ItemID, item.ItemIndex,
		sql.NullString{String: item.AuctionID, Valid: item.AuctionID != ""},
		item.CreatedBy, item.Title, item.Description,
		item.ValueEstimate.MinValue, item.ValueEstimate.MaxValue, item.ValueEstimate.Currency,
		string(metadataJSON), string(imagesJSON), item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert item %s: %w", item.ItemID, err)
	}
	return nil
}

// PutImage inserts an image record.
func (s *Store) PutImage(ctx context.Context, rec *models.ImageRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO images (image_id, item_id, auction_id, storage_key, original_key, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ImageID, rec.ItemID,
		sql.NullString{String: rec.AuctionID, Valid: rec.AuctionID != ""},
		rec.StorageKey,
		sql.NullString{String: rec.OriginalKey, Valid: rec.OriginalKey != ""},
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert image %s: %w", rec.ImageID, err)
	}
	return nil
}

// ItemsByAuction returns every item in the auction, ordered by item id.
// Catalog export assigns lot numbers from this order.
func (s *Store) ItemsByAuction(ctx context.Context, auctionID string) ([]*models.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT item_id, item_index, auction_id, created_by, title, description,
			min_value, max_value, currency, metadata, images, created_at, updated_at
		FROM items WHERE auction_id = ?
		ORDER BY CAST(item_id AS INTEGER)`, auctionID)
	if err != nil {
		return nil, fmt.Errorf("query items for auction %s: %w", auctionID, err)
	}
	defer rows.Close()

	var items []*models.Item
	for rows.Next() {
		var item models.Item
		var auction sql.NullString
		var metadataJSON, imagesJSON sql.NullString
		err := rows.Scan(
			&item.ItemID, &item.ItemIndex, &auction, &item.CreatedBy,
			&item.Title, &item.Description,
			&item.ValueEstimate.MinValue, &item.ValueEstimate.MaxValue, &item.ValueEstimate.Currency,
			&metadataJSON, &imagesJSON, &item.CreatedAt, &item.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		if auction.Valid {
			item.AuctionID = auction.String
		}
		if metadataJSON.Valid && metadataJSON.String != "" {
			item.Metadata = models.NewItemMetadata()
			if err := json.Unmarshal([]byte(metadataJSON.String), item.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal metadata for item %s: %w", item.ItemID, err)
			}
		}
		if imagesJSON.Valid && imagesJSON.String != "" {
			if err := json.Unmarshal([]byte(imagesJSON.String), &item.Images); err != nil {
				return nil, fmt.Errorf("unmarshal images for item %s: %w", item.ItemID, err)
			}
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}
