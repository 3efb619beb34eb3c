package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nao1215/catalogcrawl/internal/model"
	"github.com/nao1215/catalogcrawl/internal/session"
)

// NewDimensionsCmd creates the dimensions command.
func NewDimensionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dimensions",
		Short: "List the majors and careers offered by the search form",
		Long: `Dimensions signs in, opens the class search form and prints the majors
and careers it offers. Nothing is searched or stored. The printed values
are what --major and --career of the crawl command accept.`,
		Args: cobra.NoArgs,
		RunE: runDimensionsCmd,
	}
	addSiteFlags(cmd)
	cmd.Flags().BoolP("json", "j", false, "Print the dimensions as JSON")
	return cmd
}

func runDimensionsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.ValidateSite(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	logger := setupLogger(cfg)
	ctx, cancel := signalContext(logger)
	defer cancel()

	env := defaultEnv(cmd.OutOrStdout())
	b, err := env.newBrowser(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}

	// No store: the session is only initialized.
	sess := session.New(b, env.newSettler(cfg), nil,
		session.Site{LoginURL: cfg.LoginURL, SearchURL: cfg.SearchURL},
		session.WithLogger(logger),
		session.WithElementTimeout(cfg.ElementTimeout),
	)
	defer func() {
		if err := sess.Terminate(); err != nil {
			logger.Warn("failed to close browser", "error", err)
		}
	}()

	if err := sess.Initialize(ctx); err != nil {
		return err
	}
	return printDimensions(env.stdout, sess.Dimensions(), asJSON)
}

type dimensionsJSON struct {
	Majors  []model.DimensionValue `json:"majors"`
	Careers []model.DimensionValue `json:"careers"`
}

func printDimensions(w io.Writer, dims model.Dimensions, asJSON bool) error {
	if asJSON {
		out := dimensionsJSON{Majors: dims.Majors, Careers: dims.Careers}
		if out.Majors == nil {
			out.Majors = []model.DimensionValue{}
		}
		if out.Careers == nil {
			out.Careers = []model.DimensionValue{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Fprintf(w, "Majors (%d):\n", len(dims.Majors))
	for _, m := range dims.Majors {
		fmt.Fprintf(w, "  %s\n", m)
	}
	fmt.Fprintf(w, "Careers (%d):\n", len(dims.Careers))
	for _, c := range dims.Careers {
		fmt.Fprintf(w, "  %s\n", c)
	}
	return nil
}
