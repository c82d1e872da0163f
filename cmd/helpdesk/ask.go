package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a single question and exit",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(envFlag(cmd))
		if err != nil {
			return err
		}
		defer a.Close()

		resp := a.chat.Answer(context.Background(), strings.Join(args, " "))

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"text":      resp.Text,
				"outcome":   resp.Tag(),
				"tier":      resp.Outcome.Tier(),
				"escalated": resp.Escalated(),
				"degraded":  resp.Degraded,
			})
		}

		fmt.Println(resp.Text)
		fmt.Fprintf(os.Stderr, "\noutcome=%s tier=%s escalated=%t degraded=%t\n",
			resp.Tag(), resp.Outcome.Tier(), resp.Escalated(), resp.Degraded)
		return nil
	},
}

func init() {
	askCmd.Flags().Bool("json", false, "print the response as JSON")
	rootCmd.AddCommand(askCmd)
}
