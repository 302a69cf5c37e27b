package models

import (
	"encoding/json"
	"testing"
)

func TestItemMetadataLastWriteWins(t *testing.T) {
	m := NewItemMetadata()
	m.Set("metal", "gold")
	m.Set("metal", "silver")

	if m.Metal != "silver" {
		t.Errorf("Expected metal=silver after two writes, got %s", m.Metal)
	}
}

func TestItemMetadataKnownFieldRouting(t *testing.T) {
	m := NewItemMetadata()
	m.SetAll(map[string]any{
		"metal":        "gold",
		"size":         7.0,
		"weight_grams": "12.5",
		"markings":     []any{"14K", "maker"},
		"provenance":   "estate sale",
	})

	if m.Metal != "gold" {
		t.Errorf("Expected metal=gold, got %s", m.Metal)
	}
	if m.Size != "7" {
		t.Errorf("Expected size coerced to \"7\", got %q", m.Size)
	}
	if m.WeightGrams != 12.5 {
		t.Errorf("Expected weight 12.5, got %v", m.WeightGrams)
	}
	if len(m.Markings) != 2 || m.Markings[0] != "14K" {
		t.Errorf("Unexpected markings: %v", m.Markings)
	}
	if m.Extra["provenance"] != "estate sale" {
		t.Errorf("Expected provenance in the extension bag, got %v", m.Extra)
	}
}

func TestItemMetadataMarkingsOverwriteNotUnion(t *testing.T) {
	m := NewItemMetadata()
	m.Set("markings", []string{"14K"})
	m.Set("markings", []string{"925", "maker"})

	if len(m.Markings) != 2 || m.Markings[0] != "925" {
		t.Errorf("Expected later markings to replace earlier ones, got %v", m.Markings)
	}
}

func TestItemMetadataNilValueIgnored(t *testing.T) {
	m := NewItemMetadata()
	m.Set("weight_grams", 12.5)
	m.Set("weight_grams", nil)

	if m.WeightGrams != 12.5 {
		t.Errorf("Expected nil write to be ignored, got %v", m.WeightGrams)
	}
}

func TestItemMetadataCloneIsolation(t *testing.T) {
	base := NewItemMetadata()
	base.Set("metal", "gold")
	base.Set("collection", "summer")

	clone := base.Clone()
	clone.Set("metal", "silver")
	clone.Set("collection", "winter")

	if base.Metal != "gold" || base.Extra["collection"] != "summer" {
		t.Errorf("Clone writes leaked into the original: %+v", base)
	}
}

func TestItemMetadataJSONRoundTrip(t *testing.T) {
	m := NewItemMetadata()
	m.Set("metal", "silver")
	m.Set("weight_grams", 3.2)
	m.Set("lot_note", "boxed")

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	decoded := NewItemMetadata()
	if err := json.Unmarshal(data, decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded.Metal != "silver" || decoded.WeightGrams != 3.2 {
		t.Errorf("Typed fields lost in round trip: %+v", decoded)
	}
	if decoded.Extra["lot_note"] != "boxed" {
		t.Errorf("Extension bag lost in round trip: %+v", decoded.Extra)
	}
}
