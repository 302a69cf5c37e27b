package marker

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/hammerstone/lotpix/internal/models"
	"golang.org/x/image/draw"
)

// BoundingRect returns the axis-aligned bounding rectangle of the marker's
// four corners.
func BoundingRect(corners [4]image.Point) image.Rectangle {
	r := image.Rectangle{Min: corners[0], Max: corners[0]}
	for _, p := range corners[1:] {
		if p.X < r.Min.X {
			r.Min.X = p.X
		}
		if p.Y < r.Min.Y {
			r.Min.Y = p.Y
		}
		if p.X > r.Max.X {
			r.Max.X = p.X
		}
		if p.Y > r.Max.Y {
			r.Max.Y = p.Y
		}
	}
	return r
}

// InExclusionQuadrant reports whether the marker's bounding box sits in the
// bottom-right quadrant of an image with the given bounds. The test point is
// the bounding box's top-left corner and the inequalities are strict: a
// marker starting exactly on the midline is not in the quadrant.
func InExclusionQuadrant(corners [4]image.Point, bounds image.Rectangle) bool {
	r := BoundingRect(corners)
	x := r.Min.X - bounds.Min.X
	y := r.Min.Y - bounds.Min.Y
	return 2*x > bounds.Dx() && 2*y > bounds.Dy()
}

// Crop removes the item marker's placement zone from img. When the marker's
// bounding box lies in the exclusion quadrant, the result is the sub-image
// strictly above and left of the box's top-left corner; everything else in
// that band is discarded along with the marker, which is the accepted
// trade-off of the heuristic. With no marker, or a marker outside the
// quadrant, img is returned unchanged.
func Crop(img image.Image, m *models.DetectedMarker) image.Image {
	if m == nil {
		return img
	}
	bounds := img.Bounds()
	if !InExclusionQuadrant(m.Corners, bounds) {
		return img
	}
	r := BoundingRect(m.Corners)
	kept := image.Rect(bounds.Min.X, bounds.Min.Y, r.Min.X, r.Min.Y)
	out := image.NewRGBA(image.Rect(0, 0, kept.Dx(), kept.Dy()))
	draw.Copy(out, image.Point{}, img, kept, draw.Src, nil)
	return out
}

// CropBytes decodes an encoded image, applies Crop, and re-encodes. The
// second return reports whether anything was actually removed; when false the
// original bytes are returned untouched, preserving the source encoding.
func CropBytes(data []byte, m *models.DetectedMarker) ([]byte, bool, error) {
	if m == nil {
		return data, false, nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, false, fmt.Errorf("decode image: %w", err)
	}
	if !InExclusionQuadrant(m.Corners, img.Bounds()) {
		return data, false, nil
	}
	cropped := Crop(img, m)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, cropped, &jpeg.Options{Quality: 90}); err != nil {
		return nil, false, fmt.Errorf("encode cropped image: %w", err)
	}
	return buf.Bytes(), true, nil
}
