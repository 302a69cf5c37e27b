// Package marker locates fiducial markers in lot photographs, interprets
// metadata markers into key/value pairs, and crops the item marker's
// placement zone out of an image.
package marker

import "github.com/hammerstone/lotpix/internal/models"

// Detector locates fiducial markers in an encoded raster image. Detection
// itself never fails on a decodable image; an empty slice means no markers.
// An error is returned only when the bytes cannot be decoded as an image.
//
// No ordering is guaranteed beyond the detector's native return order.
// Callers that need "the marker" must apply an explicit tie-break; see
// Table.ItemMarker.
type Detector interface {
	Detect(data []byte) ([]models.DetectedMarker, error)
}
