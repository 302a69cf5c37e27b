// Package enrich generates the AI listing fields for a finalized item:
// title, description, value estimate, and any metadata the model can read
// off the photographs (scale readouts, stamps, maker's marks).
package enrich

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/hammerstone/lotpix/internal/models"
)

// Result is the enrichment output. Every field is always populated: when the
// provider fails for any reason the result is the deterministic fallback
// record, never an error. The pipeline must not fail because enrichment did.
type Result struct {
	Title              string               `json:"title"`
	Description        string               `json:"description"`
	ValueEstimate      models.ValueEstimate `json:"value_estimate"`
	DiscoveredMetadata map[string]any       `json:"discovered_metadata"`
}

// Enricher produces listing fields for a group of images and its merged
// metadata.
type Enricher interface {
	Enrich(ctx context.Context, imageKeys []string, metadata map[string]any) Result
}

const disclaimer = "All photos represent the lot condition and may contain unseen imperfections in addition to " +
	"the information provided. All items are described to the best of our abilities. Please " +
	"communicate all questions and concerns prior to bidding. Please read our terms and " +
	"conditions for more details. Good luck bidding."

// Fallback returns the deterministic record used whenever a provider call
// cannot produce a usable response.
func Fallback(reason string) Result {
	return Result{
		Title:              "Untitled Item",
		Description:        "Failed to generate description (" + reason + ").",
		ValueEstimate:      models.ValueEstimate{Currency: "USD"},
		DiscoveredMetadata: map[string]any{},
	}
}

// parseResult decodes a model response into a Result. The response must be
// the documented JSON object, optionally wrapped in a markdown code fence;
// all four top-level fields are required. The disclaimer is appended to the
// description of every successful parse.
func parseResult(content string) (Result, bool) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var present map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &present); err != nil {
		slog.Warn("Enrichment response is not valid JSON", "err", err)
		return Result{}, false
	}
	for _, field := range []string{"title", "description", "value_estimate", "discovered_metadata"} {
		if _, ok := present[field]; !ok {
			slog.Warn("Enrichment response missing required field", "field", field)
			return Result{}, false
		}
	}

	var result Result
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		slog.Warn("Enrichment response has malformed fields", "err", err)
		return Result{}, false
	}
	if result.DiscoveredMetadata == nil {
		result.DiscoveredMetadata = map[string]any{}
	}
	result.Description = result.Description + "\n\n" + disclaimer
	return result, true
}
