package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hammerstone/lotpix/internal/assembly"
	"github.com/hammerstone/lotpix/internal/blob"
	"github.com/hammerstone/lotpix/internal/config"
	"github.com/hammerstone/lotpix/internal/enrich"
	"github.com/hammerstone/lotpix/internal/grouping"
	"github.com/hammerstone/lotpix/internal/handlers"
	"github.com/hammerstone/lotpix/internal/marker"
	"github.com/hammerstone/lotpix/internal/store"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the lot cataloging API server",
		Long: `Starts the lotpix API on the specified port.

The API groups uploaded lot photographs into items, finalizes items with
AI-generated listing details, and exports marketplace catalogs.`,
		Example: `  # Start server on default port 8888
  lotpix serve

  # Start server on custom port
  lotpix serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()

			records, err := store.New(cfg.DBPath)
			if err != nil {
				return err
			}
			defer records.Close()
			if err := records.Initialize(); err != nil {
				return err
			}

			blobs, err := blob.NewFSStore(cfg.DataDir)
			if err != nil {
				return err
			}

			table := marker.DefaultTable()
			if cfg.MarkerTablePath != "" {
				table, err = marker.LoadTable(cfg.MarkerTablePath)
				if err != nil {
					return err
				}
			}

			detector := marker.NewArucoDetector()
			defer detector.Close()

			enricher, err := newEnricher(cfg, blobs)
			if err != nil {
				return err
			}

			grouper := grouping.NewMarkerGrouper(blobs, detector, table)
			pipeline := assembly.New(blobs, records, detector, table, enricher)
			handler := handlers.New(records, blobs, grouper, pipeline, cfg.ImageBaseURL)

			// Set up routes
			mux := http.NewServeMux()
			mux.HandleFunc("/api/images/group", handler.HandleGroupImages)
			mux.HandleFunc("/api/items/finalize", handler.HandleFinalizeItems)
			mux.HandleFunc("/api/items", handler.HandleItems)
			mux.HandleFunc("/api/export/catalog", handler.HandleExportCatalog)
			mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.DataDir))))
			mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
				if _, err := w.Write([]byte("OK")); err != nil {
					slog.Error("Unable to write healthcheck", "err", err)
				}
			})

			addr := ":" + port
			server := &http.Server{
				Addr:    addr,
				Handler: mux,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Lotpix API available", "addr", addr, "provider", cfg.Provider)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on")

	return cmd
}

func newEnricher(cfg *config.Config, blobs blob.Store) (enrich.Enricher, error) {
	switch cfg.Provider {
	case "openai":
		key := enrich.EnvKey("OPENAI_API_KEY")
		if cfg.OpenAIKeyFile != "" {
			key = enrich.FileKey(cfg.OpenAIKeyFile)
		}
		return enrich.NewOpenAI("", cfg.Model, cfg.ImageBaseURL, key), nil
	case "gemini":
		return enrich.NewGemini(cfg.Model, blobs, enrich.EnvKey("GEMINI_API_KEY")), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}
