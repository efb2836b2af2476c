package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/recipeviz/cmd/recipeviz/commands"
	"github.com/teranos/recipeviz/logger"
)

var rootCmd = &cobra.Command{
	Use:   "recipeviz",
	Short: "recipeviz - progressive recipe graph visualizer",
	Long: `recipeviz - progressive recipe graph visualizer.

recipeviz fetches combination-search results from a search backend and
reveals them node by node on a pannable, zoomable canvas with a minimap.

Available commands:
  server  - Host canvas sessions over WebSocket and snapshot endpoints
  render  - Render one search to SVG (or the minimap to PNG)
  am      - Manage recipeviz configuration ("I am")
  version - Show build information

Examples:
  recipeviz server -v                         # Serve with info logging
  recipeviz render --target Steam --out a.svg # Snapshot a search
  recipeviz render --dataset steam.yaml       # Snapshot a dataset file
  recipeviz am show                           # Show effective configuration`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		jsonLogs, _ := cmd.Flags().GetBool("json-logs")
		if err := logger.Initialize(jsonLogs); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		verbosity, _ := cmd.Flags().GetCount("verbose")
		logger.SetVerbosity(verbosity)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Emit structured JSON logs")
	rootCmd.PersistentFlags().Bool("json", false, "Output command results as JSON")

	rootCmd.AddCommand(commands.ServerCmd)
	rootCmd.AddCommand(commands.RenderCmd)
	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
