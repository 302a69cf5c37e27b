package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Well-known metadata keys. Values under these keys are routed to typed
// fields; everything else lands in the open extension bag.
const (
	KeyMetal       = "metal"
	KeySize        = "size"
	KeyWeightGrams = "weight_grams"
	KeyMarkings    = "markings"
)

// ItemMetadata holds the merged per-item metadata: a closed set of well-known
// optional fields plus an open extension bag for everything else. All writes
// are last-write-wins, including list-valued keys such as markings (a later
// markings value replaces the earlier one, it is not unioned).
type ItemMetadata struct {
	Metal       string
	Size        string
	WeightGrams float64
	Markings    []string
	Extra       map[string]any
}

// NewItemMetadata returns an empty metadata map.
func NewItemMetadata() *ItemMetadata {
	return &ItemMetadata{}
}

// Set folds one key/value pair into the metadata, routing well-known keys to
// their typed fields. A nil value clears nothing and is ignored.
func (m *ItemMetadata) Set(key string, value any) {
	if value == nil {
		return
	}
	switch key {
	case KeyMetal:
		m.Metal = asString(value)
	case KeySize:
		m.Size = asString(value)
	case KeyWeightGrams:
		if f, ok := asFloat(value); ok {
			m.WeightGrams = f
		}
	case KeyMarkings:
		if list, ok := asStringList(value); ok {
			m.Markings = list
		}
	default:
		if m.Extra == nil {
			m.Extra = make(map[string]any)
		}
		m.Extra[key] = value
	}
}

// SetAll folds every pair of values into the metadata. Map iteration order is
// not defined, but last-write-wins only matters across successive SetAll
// calls, never within one source map (a map holds one value per key).
func (m *ItemMetadata) SetAll(values map[string]any) {
	for k, v := range values {
		m.Set(k, v)
	}
}

// Merge folds other into m, other's values winning on collision.
func (m *ItemMetadata) Merge(other *ItemMetadata) {
	if other == nil {
		return
	}
	if other.Metal != "" {
		m.Metal = other.Metal
	}
	if other.Size != "" {
		m.Size = other.Size
	}
	if other.WeightGrams != 0 {
		m.WeightGrams = other.WeightGrams
	}
	if other.Markings != nil {
		m.Markings = other.Markings
	}
	for k, v := range other.Extra {
		m.Set(k, v)
	}
}

// Clone returns a deep copy. Finalizing several groups from one request must
// not let one item's discovered metadata leak into the next item.
func (m *ItemMetadata) Clone() *ItemMetadata {
	c := &ItemMetadata{
		Metal:       m.Metal,
		Size:        m.Size,
		WeightGrams: m.WeightGrams,
	}
	if m.Markings != nil {
		c.Markings = append([]string(nil), m.Markings...)
	}
	if m.Extra != nil {
		c.Extra = make(map[string]any, len(m.Extra))
		for k, v := range m.Extra {
			c.Extra[k] = v
		}
	}
	return c
}

// ToMap flattens the metadata into a single map, typed fields included.
func (m *ItemMetadata) ToMap() map[string]any {
	out := make(map[string]any, 4+len(m.Extra))
	for k, v := range m.Extra {
		out[k] = v
	}
	if m.Metal != "" {
		out[KeyMetal] = m.Metal
	}
	if m.Size != "" {
		out[KeySize] = m.Size
	}
	if m.WeightGrams != 0 {
		out[KeyWeightGrams] = m.WeightGrams
	}
	if m.Markings != nil {
		out[KeyMarkings] = m.Markings
	}
	return out
}

// MarshalJSON emits the flattened single-object form.
func (m *ItemMetadata) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.ToMap())
}

// UnmarshalJSON accepts the flattened form, routing well-known keys back to
// the typed fields.
func (m *ItemMetadata) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = ItemMetadata{}
	m.SetAll(raw)
	return nil
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func asStringList(v any) ([]string, bool) {
	switch t := v.(type) {
	case []string:
		return t, true
	case []any:
		list := make([]string, 0, len(t))
		for _, e := range t {
			list = append(list, asString(e))
		}
		return list, true
	case string:
		return []string{t}, true
	default:
		return nil, false
	}
}
