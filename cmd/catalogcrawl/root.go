package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalogcrawl",
		Short: "Crawl a PeopleSoft class search catalog",
		Long: `catalogcrawl drives a PeopleSoft class search site with a headless Chrome.

It opens the search form, reads the majors and careers it offers, runs one
search per combination and visits every class detail view. Courses and their
sections are written as JSON files and optionally to SQLite or PostgreSQL.

The site is configured with LOGIN_PAGE and SEARCH_PAGE (environment or .env),
a .catalogcrawl file, or the --login-url and --search-url flags.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewDimensionsCmd())
	cmd.AddCommand(NewRunsCmd())
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
