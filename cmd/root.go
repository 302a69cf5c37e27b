package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lotpix",
		Short: "Auction lot photo cataloger with AI-generated listings",
		Long: `Lotpix ingests photographs of auction lots, groups them into per-item
clusters (by declared shooting pattern or by fiducial marker), removes the
physical lot tag from each photo, generates listing details with a vision
LLM, and exports marketplace catalogs.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	// Add subcommands
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newExportCmd())

	return cmd
}
