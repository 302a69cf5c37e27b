package models

import "image"

// ImageRef is a reference to one uploaded photograph: the blob-store key plus
// the image's position in the original upload sequence. The index stays stable
// through grouping so a group's images can always be re-ordered by it.
type ImageRef struct {
	Index int    `json:"index"`
	Key   string `json:"key"`
}

// ItemGroup is the set of images assigned to one prospective item. Declared-
// pattern grouping keys groups by ItemIndex; marker-identity grouping also
// fills MarkerID ("marker_<id>", or "unknown" when no marker was detected).
type ItemGroup struct {
	ItemIndex int        `json:"item_index"`
	MarkerID  string     `json:"marker_id,omitempty"`
	Images    []ImageRef `json:"images"`
}

// DetectedMarker is one fiducial marker located in an image: its decoded
// identity and the pixel coordinates of its four corners. Produced fresh per
// detection call, never persisted.
type DetectedMarker struct {
	ID      int
	Corners [4]image.Point
}

// ValueEstimate is the appraised value range for an item.
type ValueEstimate struct {
	MinValue float64 `json:"min_value"`
	MaxValue float64 `json:"max_value"`
	Currency string  `json:"currency"`
}

// Item is a finalized auction lot: its images (post-crop storage keys, in view
// order), merged metadata, and the AI-generated listing fields. Not mutated
// after creation by this service.
type Item struct {
	ItemID        string        `json:"item_id"`
	ItemIndex     int           `json:"item_index"`
	AuctionID     string        `json:"auction_id,omitempty"`
	CreatedBy     string        `json:"created_by"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	ValueEstimate ValueEstimate `json:"value_estimate"`
	Metadata      *ItemMetadata `json:"metadata"`
	Images        []string      `json:"images"`
	CreatedAt     int64         `json:"created_at"`
	UpdatedAt     int64         `json:"updated_at"`
}

// ImageRecord is the persisted record for one stored image of an item.
type ImageRecord struct {
	ImageID     string `json:"image_id"`
	ItemID      string `json:"item_id"`
	AuctionID   string `json:"auction_id,omitempty"`
	StorageKey  string `json:"storage_key"`
	OriginalKey string `json:"original_key,omitempty"`
	CreatedAt   int64  `json:"created_at"`
}
