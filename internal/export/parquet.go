package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/hammerstone/lotpix/internal/models"
	"github.com/parquet-go/parquet-go"
)

// CatalogRow is the flattened analytics projection of a finalized item.
type CatalogRow struct {
	ItemID      string  `parquet:"item_id"`
	LotNum      int32   `parquet:"lot_num"`
	AuctionID   string  `parquet:"auction_id"`
	Title       string  `parquet:"title"`
	Description string  `parquet:"description"`
	LowEst      float64 `parquet:"low_est"`
	HighEst     float64 `parquet:"high_est"`
	Currency    string  `parquet:"currency"`
	ImageCount  int32   `parquet:"image_count"`
	Images      string  `parquet:"images"`
	CreatedAt   int64   `parquet:"created_at"`
}

// WriteParquet writes the items as a parquet snapshot for analytics, lot
// numbers assigned the same way as the CSV export.
func WriteParquet(w io.Writer, items []*models.Item) error {
	writer := parquet.NewGenericWriter[CatalogRow](w)

	rows := make([]CatalogRow, 0, len(items))
	for i, item := range items {
		rows = append(rows, CatalogRow{
			ItemID:      item.ItemID,
			LotNum:      int32(i + 1),
			AuctionID:   item.AuctionID,
			Title:       item.Title,
			Description: item.Description,
			LowEst:      item.ValueEstimate.MinValue,
			HighEst:     item.ValueEstimate.MaxValue,
			Currency:    item.ValueEstimate.Currency,
			ImageCount:  int32(len(item.Images)),
			Images:      strings.Join(item.Images, ","),
			CreatedAt:   item.CreatedAt,
		})
	}

	if len(rows) > 0 {
		if _, err := writer.Write(rows); err != nil {
			return fmt.Errorf("write parquet rows: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}
