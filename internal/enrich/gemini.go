package enrich

import (
	"context"
	"log/slog"
	"path"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/hammerstone/lotpix/internal/blob"
	"google.golang.org/api/option"
)

// Gemini generates listing fields through Google Gemini, sending the image
// bytes inline rather than by URL, so it works against private storage.
type Gemini struct {
	model string
	key   KeySource
	blobs blob.Store
}

// NewGemini builds a Gemini enricher reading image bytes from blobs.
func NewGemini(model string, blobs blob.Store, key KeySource) *Gemini {
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &Gemini{model: model, key: key, blobs: blobs}
}

// Enrich requests listing fields for the images. Every failure path returns
// the fallback record.
func (g *Gemini) Enrich(ctx context.Context, imageKeys []string, metadata map[string]any) Result {
	apiKey, err := g.key()
	if err != nil {
		slog.Warn("No Gemini API key available", "err", err)
		return Fallback("missing API key")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		slog.Warn("Failed to create Gemini client", "err", err)
		return Fallback("provider error")
	}
	defer client.Close()

	parts := []genai.Part{genai.Text(buildPrompt(metadata))}
	for _, key := range imageKeys {
		data, err := g.blobs.Fetch(ctx, key)
		if err != nil {
			slog.Warn("Skipping image for enrichment, fetch failed", "key", key, "err", err)
			continue
		}
		parts = append(parts, genai.ImageData(imageFormat(key), data))
	}

	model := client.GenerativeModel(g.model)
	model.SetTemperature(0.1)

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		slog.Warn("Gemini enrichment failed", "err", err)
		return Fallback("network error")
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		slog.Warn("Gemini returned no content")
		return Fallback("empty response")
	}

	txt, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		slog.Warn("Gemini returned unexpected part type")
		return Fallback("invalid response format")
	}

	result, ok := parseResult(string(txt))
	if !ok {
		return Fallback("invalid response format")
	}
	return result
}

// imageFormat maps a storage key's extension to the genai image format name.
func imageFormat(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".png":
		return "png"
	case ".webp":
		return "webp"
	default:
		return "jpeg"
	}
}
