// Package export projects finalized items into marketplace catalog files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/hammerstone/lotpix/internal/models"
)

// maxImageColumns is the LiveAuctioneers image column count. Items with more
// images are truncated.
const maxImageColumns = 20

// liveAuctioneersColumns returns the required header row.
func liveAuctioneersColumns() []string {
	columns := []string{"LotNum", "Title", "Description", "LowEst", "HighEst", "StartPrice", "Condition"}
	for i := 1; i <= maxImageColumns; i++ {
		columns = append(columns, fmt.Sprintf("ImageFile.%d", i))
	}
	return columns
}

// WriteLiveAuctioneersCSV writes the items as a LiveAuctioneers import CSV.
// Lot numbers are 1-based in item order; StartPrice is 20% of the low
// estimate rounded to cents; Condition is always "Good". Image URLs are the
// base URL joined with each storage key, columns beyond the item's image
// count left empty.
func WriteLiveAuctioneersCSV(w io.Writer, items []*models.Item, imageBaseURL string) error {
	base := strings.TrimSuffix(imageBaseURL, "/")
	cw := csv.NewWriter(w)
	if err := cw.Write(liveAuctioneersColumns()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for lotNum, item := range items {
		lowEst := item.ValueEstimate.MinValue
		highEst := item.ValueEstimate.MaxValue
		startPrice := math.Round(lowEst*0.2*100) / 100

		row := []string{
			strconv.Itoa(lotNum + 1),
			item.Title,
			item.Description,
			formatEstimate(lowEst),
			formatEstimate(highEst),
			formatEstimate(startPrice),
			"Good",
		}
		for i := 0; i < maxImageColumns; i++ {
			if i < len(item.Images) {
				row = append(row, base+"/"+item.Images[i])
			} else {
				row = append(row, "")
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write lot %d: %w", lotNum+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// formatEstimate renders a price the way the marketplace template expects:
// whole amounts keep one decimal place (100 -> "100.0"), fractional amounts
// keep their shortest form.
func formatEstimate(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
