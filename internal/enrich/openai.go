package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const defaultOpenAIEndpoint = "https://api.openai.com/v1/chat/completions"

// OpenAI generates listing fields through the OpenAI chat completions API,
// sending the images by URL.
type OpenAI struct {
	endpoint string
	model    string
	key      KeySource
	// imageBaseURL prefixes storage keys to form publicly fetchable URLs.
	imageBaseURL string
	client       *http.Client
}

// NewOpenAI builds an OpenAI enricher. endpoint may be empty for the public
// API.
func NewOpenAI(endpoint, model, imageBaseURL string, key KeySource) *OpenAI {
	if endpoint == "" {
		endpoint = defaultOpenAIEndpoint
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAI{
		endpoint:     endpoint,
		model:        model,
		key:          key,
		imageBaseURL: strings.TrimSuffix(imageBaseURL, "/"),
		client:       &http.Client{Timeout: 60 * time.Second},
	}
}

// Enrich requests listing fields for the images. Every failure path returns
// the fallback record.
func (o *OpenAI) Enrich(ctx context.Context, imageKeys []string, metadata map[string]any) Result {
	apiKey, err := o.key()
	if err != nil {
		slog.Warn("No OpenAI API key available", "err", err)
		return Fallback("missing API key")
	}

	content := []map[string]any{
		{"type": "text", "text": buildPrompt(metadata)},
	}
	for _, key := range imageKeys {
		content = append(content, map[string]any{
			"type":      "image_url",
			"image_url": map[string]string{"url": o.imageBaseURL + "/" + key},
		})
	}

	requestBody, err := json.Marshal(map[string]any{
		"model": o.model,
		"messages": []map[string]any{
			{"role": "user", "content": content},
		},
		"max_tokens": 1000,
	})
	if err != nil {
		slog.Error("Failed to marshal enrichment request", "err", err)
		return Fallback("request build error")
	}

	req, err := http.NewRequestWithContext(ctx, "POST", o.endpoint, bytes.NewBuffer(requestBody))
	if err != nil {
		slog.Error("Failed to create enrichment request", "err", err)
		return Fallback("request build error")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		slog.Warn("Enrichment request failed", "err", err)
		return Fallback("network error")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		slog.Warn("Enrichment returned non-200", "status", resp.StatusCode, "body", string(body))
		return Fallback(fmt.Sprintf("provider error %d", resp.StatusCode))
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		slog.Warn("Failed to decode enrichment response", "err", err)
		return Fallback("invalid response format")
	}
	if len(response.Choices) == 0 || response.Choices[0].Message.Content == "" {
		slog.Warn("Enrichment response has no content")
		return Fallback("empty response")
	}

	result, ok := parseResult(response.Choices[0].Message.Content)
	if !ok {
		return Fallback("invalid response format")
	}
	return result
}
