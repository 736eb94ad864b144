// Package cli implements the tasksctl cobra commands.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	serverURL string
	dataDir   string
)

var rootCmd = &cobra.Command{
	Use:   "tasksctl",
	Short: "Operator tooling for the campus tasks API",
	Long: `tasksctl inspects the campus task corpus and exercises a running
API server: corpus statistics, ranked search queries, and manual NPC chat
testing.`,
	SilenceUsage: true,
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8000", "base URL of a running API server")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "data", "path to the corpus data directory")
}
