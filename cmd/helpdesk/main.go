// Package main is the entry point for the helpdesk service and CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/helpdesk/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "helpdesk",
	Short: "Question answering over the airline booking API documentation",
	Long: `helpdesk answers questions about the booking API from a curated corpus of
FAQs, HTML guides, documentation records and past support emails.

Retrieval tries the vector index first and falls back to keyword scoring
over the corpus when the index is unavailable.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("env", "", "config environment (default: $ENV or local)")
}

// envFlag returns the --env flag value, falling back to $ENV.
func envFlag(cmd *cobra.Command) string {
	if env, _ := cmd.Flags().GetString("env"); env != "" {
		return env
	}
	return config.GetEnv()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
