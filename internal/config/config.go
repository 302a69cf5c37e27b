// Package config gathers the service's environment surface into one struct.
package config

import "os"

// Config holds everything the serve and export commands need. Values come
// from the environment (a .env file is loaded by the CLI root first).
type Config struct {
	// DataDir is the blob store root for raw and processed images.
	DataDir string
	// DBPath is the SQLite database file.
	DBPath string
	// ImageBaseURL prefixes storage keys to form public image URLs in
	// catalog exports and URL-based enrichment.
	ImageBaseURL string
	// MarkerTablePath optionally points at a YAML marker table; empty
	// means the built-in table.
	MarkerTablePath string
	// Provider selects the enrichment backend: "openai" or "gemini".
	Provider string
	// Model overrides the provider's default model.
	Model string
	// OpenAIKeyFile optionally points at a secret file holding the OpenAI
	// key; empty means the OPENAI_API_KEY environment variable.
	OpenAIKeyFile string
}

// Load reads the configuration from the environment, applying defaults.
func Load() *Config {
	return &Config{
		DataDir:         getenv("LOTPIX_DATA_DIR", "data"),
		DBPath:          getenv("LOTPIX_DB", "lotpix.db"),
		ImageBaseURL:    getenv("LOTPIX_IMAGE_BASE_URL", "http://localhost:8888/static"),
		MarkerTablePath: os.Getenv("LOTPIX_MARKER_TABLE"),
		Provider:        getenv("LOTPIX_PROVIDER", "openai"),
		Model:           os.Getenv("LOTPIX_MODEL"),
		OpenAIKeyFile:   os.Getenv("OPENAI_KEY_FILE"),
	}
}

func getenv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
