package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for urlextract.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "urlextract",
		Short: "Extract and classify the URLs of a website",
		Long: `urlextract crawls a website from a seed URL and lists every page it can
reach without leaving the site's origin.

Sites that look like Peruvian administrative portals get their pages sorted
into departamentos, provincias and distritos.

Run "urlextract crawl" for a one-off crawl or "urlextract serve" for the HTTP API.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .urlextract in current or home directory)")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON lines")

	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
