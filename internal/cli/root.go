// Package cli wires the selfstate binary's subcommands.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	flagDB     string
	flagConfig string
)

var rootCmd = &cobra.Command{
	Use:   "selfstate",
	Short: "Adaptive self-state engine",
	Long: `selfstate observes interaction behavior, classifies the current
cognitive state, predicts attention crashes and flow windows, and dispatches
state-appropriate interventions.`,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", envOr("SELFSTATE_DB", "selfstate.db"), "Path to the SQLite database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", envOr("SELFSTATE_CONFIG", ""), "Path to a YAML tuning file")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
