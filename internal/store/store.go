// Package store provides SQLite-based persistence for finalized items, their
// image records, and the monotonic identifier counters.
package store

import (
	"context"

	"github.com/hammerstone/lotpix/internal/models"
)

// Counter names used for identifier allocation.
const (
	CounterItem  = "ITEM"
	CounterImage = "IMAGE"
)

// Records defines the contract for item/image persistence and identifier
// allocation. NextID is the only identifier source in the system: callers
// never invent ids, so allocation stays globally unique and strictly
// increasing per counter.
type Records interface {
	NextID(ctx context.Context, counter string) (int64, error)
	PutItem(ctx context.Context, item *models.Item) error
	PutImage(ctx context.Context, rec *models.ImageRecord) error
	ItemsByAuction(ctx context.Context, auctionID string) ([]*models.Item, error)
	Close() error
}
