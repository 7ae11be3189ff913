package main

import (
	"fmt"
	"os"

	"github.com/cloo-solutions/recallai/internal/cli"
	"github.com/cloo-solutions/recallai/internal/cli/admin"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "recalld",
		Short: "Recall daemon and CLI",
		Long:  "Recall daemon for running the API server and managing channels and embedding backfills",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.BackfillCmd())
	rootCmd.AddCommand(admin.ChannelCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
