package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/hammerstone/lotpix/internal/config"
	"github.com/hammerstone/lotpix/internal/export"
	"github.com/hammerstone/lotpix/internal/store"
	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	var auctionID string
	var format string
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export an auction's catalog to a local file",
		Example: `  # LiveAuctioneers CSV
  lotpix export --auction spring2026 --output catalog.csv

  # Parquet snapshot for analytics
  lotpix export --auction spring2026 --format parquet --output catalog.parquet`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if auctionID == "" {
				return fmt.Errorf("--auction is required")
			}

			cfg := config.Load()
			records, err := store.New(cfg.DBPath)
			if err != nil {
				return err
			}
			defer records.Close()
			if err := records.Initialize(); err != nil {
				return err
			}

			items, err := records.ItemsByAuction(cmd.Context(), auctionID)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				return fmt.Errorf("no items found for auction %s", auctionID)
			}

			f, err := os.Create(output)
			if err != nil {
				return err
			}
			defer f.Close()

			switch strings.ToLower(format) {
			case "csv":
				err = export.WriteLiveAuctioneersCSV(f, items, cfg.ImageBaseURL)
			case "parquet":
				err = export.WriteParquet(f, items)
			default:
				err = fmt.Errorf("unsupported format: %s (supported: csv, parquet)", format)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d items to %s\n", len(items), output)
			return nil
		},
	}

	cmd.Flags().StringVar(&auctionID, "auction", "", "Auction to export")
	cmd.Flags().StringVar(&format, "format", "csv", "Output format: csv or parquet")
	cmd.Flags().StringVarP(&output, "output", "o", "catalog.csv", "Output file")

	return cmd
}
