package marker

import (
	"fmt"
	"image"
	"math"

	"github.com/hammerstone/lotpix/internal/models"
	"gocv.io/x/gocv"
)

// ArucoDetector detects 4x4 ArUco fiducial markers via OpenCV.
type ArucoDetector struct {
	detector gocv.ArucoDetector
}

// NewArucoDetector builds a detector over the predefined 4x4_50 dictionary,
// the dictionary the printed lot tags are generated from.
func NewArucoDetector() *ArucoDetector {
	params := gocv.NewArucoDetectorParameters()
	dict := gocv.GetPredefinedDictionary(gocv.ArucoDict4x4_50)
	return &ArucoDetector{
		detector: gocv.NewArucoDetectorWithParams(dict, params),
	}
}

// Detect decodes the image bytes and returns every marker found, in OpenCV's
// native return order. Rejected candidates are discarded.
func (d *ArucoDetector) Detect(data []byte) ([]models.DetectedMarker, error) {
	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	defer mat.Close()
	if mat.Empty() {
		return nil, fmt.Errorf("decode image: empty matrix")
	}

	corners, ids, _ := d.detector.DetectMarkers(mat)

	markers := make([]models.DetectedMarker, 0, len(ids))
	for i, id := range ids {
		if len(corners[i]) != 4 {
			continue
		}
		m := models.DetectedMarker{ID: id}
		for j, p := range corners[i] {
			m.Corners[j] = image.Point{
				X: int(math.Round(float64(p.X))),
				Y: int(math.Round(float64(p.Y))),
			}
		}
		markers = append(markers, m)
	}
	return markers, nil
}

// Close releases the underlying OpenCV detector.
func (d *ArucoDetector) Close() error {
	return d.detector.Close()
}
