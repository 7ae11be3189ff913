package main

import (
	"fmt"
	"os"

	"github.com/cloo-solutions/recallai/internal/cli"
	"github.com/cloo-solutions/recallai/internal/cli/client"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "recall",
		Short: "Recall CLI - Team knowledge recall",
		Long: `Recall CLI asks questions against your team's message history and
saved documentation, and posts messages for future recall.

Environment variables:
  RECALL_API_URL   API base URL (default: http://localhost:8080)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.AskCmd())
	rootCmd.AddCommand(client.CheckCmd())
	rootCmd.AddCommand(client.PostCmd())
	rootCmd.AddCommand(client.DocsCmd())
	rootCmd.AddCommand(client.ChannelsCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
