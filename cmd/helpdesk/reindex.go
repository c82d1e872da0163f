package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/helpdesk/internal/domain"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the vector index from the corpus",
	Long: `reindex loads every configured corpus source, embeds the items and writes
them into the vector index. Keys that are no longer in the corpus are removed,
so running it twice leaves the index unchanged.

--recreate drops the index definition first. Use it after changing the
embedding model or dimensions.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(envFlag(cmd))
		if err != nil {
			return err
		}
		defer a.Close()

		if a.reindex == nil {
			return fmt.Errorf("vector_store.addrs is empty: %w", domain.ErrSemanticDisabled)
		}

		run := a.reindex.Run
		if recreate, _ := cmd.Flags().GetBool("recreate"); recreate {
			run = a.reindex.Rebuild
		}
		report, err := run(context.Background())
		if err != nil {
			return fmt.Errorf("reindex: %w", err)
		}

		fmt.Printf("items: %d\nindexed: %d\nfailed: %d\npruned: %d\ntokens: %d\nduration: %s\n",
			report.Items, report.Indexed, report.Failed, report.Pruned, report.Tokens, report.Duration)
		for _, f := range report.Failures {
			fmt.Fprintf(os.Stderr, "failed %s: %v\n", f.ID(), f.Err())
		}
		return nil
	},
}

func init() {
	reindexCmd.Flags().Bool("recreate", false, "drop the index before rebuilding it")
	rootCmd.AddCommand(reindexCmd)
}
