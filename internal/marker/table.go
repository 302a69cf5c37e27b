package marker

import (
	"fmt"
	"os"

	"github.com/hammerstone/lotpix/internal/models"
	"gopkg.in/yaml.v3"
)

// tableEntry is one metadata-marker row: detecting the marker with this
// identity contributes Key=Value to the item's metadata.
type tableEntry struct {
	ID    int    `yaml:"id"`
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

// tableFile is the YAML shape of a marker table config.
type tableFile struct {
	ItemMarkerID *int         `yaml:"item_marker_id"`
	Markers      []tableEntry `yaml:"metadata_markers"`
}

// Table classifies marker identities. Identities with a row in the table are
// metadata markers; every other identity is an item-marker candidate. The two
// classes are disjoint: a configured reserved item-marker identity must not
// appear in the table.
type Table struct {
	entries      map[int]tableEntry
	itemMarkerID int
	hasReserved  bool
}

// DefaultTable returns the built-in marker table: identity 0 reserved for the
// item marker, 99 -> metal=silver, 101 -> size=7.
func DefaultTable() *Table {
	t, err := NewTable(0, []tableEntry{
		{ID: 99, Key: models.KeyMetal, Value: "silver"},
		{ID: 101, Key: models.KeySize, Value: "7"},
	})
	if err != nil {
		// The built-in rows cannot collide with identity 0.
		panic(err)
	}
	return t
}

// NewTable builds a table from metadata rows and an optional reserved item
// marker identity (pass a negative id for none). It fails if the reserved
// identity also appears as a metadata row, or a metadata identity repeats.
func NewTable(itemMarkerID int, rows []tableEntry) (*Table, error) {
	t := &Table{
		entries:      make(map[int]tableEntry, len(rows)),
		itemMarkerID: itemMarkerID,
		hasReserved:  itemMarkerID >= 0,
	}
	for _, row := range rows {
		if row.Key == "" {
			return nil, fmt.Errorf("metadata marker %d has no key", row.ID)
		}
		if _, dup := t.entries[row.ID]; dup {
			return nil, fmt.Errorf("duplicate metadata marker id %d", row.ID)
		}
		if t.hasReserved && row.ID == itemMarkerID {
			return nil, fmt.Errorf("marker id %d is both the item marker and a metadata marker", row.ID)
		}
		t.entries[row.ID] = row
	}
	return t, nil
}

// LoadTable reads a marker table from a YAML file.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read marker table: %w", err)
	}
	var file tableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse marker table: %w", err)
	}
	reserved := -1
	if file.ItemMarkerID != nil {
		reserved = *file.ItemMarkerID
	}
	return NewTable(reserved, file.Markers)
}

// IsMetadata reports whether the identity has a metadata row.
func (t *Table) IsMetadata(id int) bool {
	_, ok := t.entries[id]
	return ok
}

// Interpret maps the detected markers to metadata key/value pairs. Markers
// without a table row are skipped, as is the reserved item-marker identity.
// Later markers win on key collision, matching the merge policy everywhere
// else in the pipeline.
func (t *Table) Interpret(markers []models.DetectedMarker) map[string]any {
	found := make(map[string]any)
	for _, m := range markers {
		if t.hasReserved && m.ID == t.itemMarkerID {
			continue
		}
		if row, ok := t.entries[m.ID]; ok {
			found[row.Key] = row.Value
		}
	}
	return found
}

// ItemMarker selects the item marker from a detection result: the first
// marker, in the detector's native order, whose identity is not a metadata
// row. No confidence or size ranking is applied; when a stray item-class
// marker appears earlier in the result than the intended one, the stray wins.
func (t *Table) ItemMarker(markers []models.DetectedMarker) (models.DetectedMarker, bool) {
	for _, m := range markers {
		if !t.IsMetadata(m.ID) {
			return m, true
		}
	}
	return models.DetectedMarker{}, false
}
