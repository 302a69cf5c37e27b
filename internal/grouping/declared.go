// Package grouping partitions a batch of uploaded lot photographs into
// per-item groups, either from a declared shooting pattern or from fiducial
// marker detection.
package grouping

import (
	"fmt"
	"sort"

	"github.com/hammerstone/lotpix/internal/models"
)

// ByDeclaredPattern partitions a flat image sequence shot as numItems items
// times viewsPerItem views. The sequence is viewsPerItem consecutive blocks
// of numItems images: block v holds view v for items 0..numItems-1 in order,
// so the image at flat position v*numItems+i belongs to item i.
//
// The result is exactly numItems groups keyed 0..numItems-1 in ascending key
// order, each group's images ordered by ascending flat index. Positions with
// an empty key are skipped and leave no slot behind; a group whose every
// position was empty still appears, with no images.
func ByDeclaredPattern(numItems, viewsPerItem int, keys []string) ([]models.ItemGroup, error) {
	if numItems <= 0 {
		return nil, fmt.Errorf("%w: num_items must be positive", models.ErrValidation)
	}
	if viewsPerItem <= 0 {
		return nil, fmt.Errorf("%w: views_per_item must be positive", models.ErrValidation)
	}
	expected := numItems * viewsPerItem
	if len(keys) != expected {
		return nil, fmt.Errorf("%w: expected %d images (%d items x %d views), but got %d",
			models.ErrValidation, expected, numItems, viewsPerItem, len(keys))
	}

	groups := make([]models.ItemGroup, numItems)
	for i := range groups {
		groups[i].ItemIndex = i
	}

	for view := 0; view < viewsPerItem; view++ {
		offset := view * numItems
		for item := 0; item < numItems; item++ {
			idx := offset + item
			if keys[idx] == "" {
				continue
			}
			groups[item].Images = append(groups[item].Images, models.ImageRef{
				Index: idx,
				Key:   keys[idx],
			})
		}
	}

	for i := range groups {
		sort.Slice(groups[i].Images, func(a, b int) bool {
			return groups[i].Images[a].Index < groups[i].Images[b].Index
		})
	}
	return groups, nil
}
