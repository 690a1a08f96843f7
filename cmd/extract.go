package main

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/appelson/litigation-extract/internal/extract"
	"github.com/appelson/litigation-extract/internal/records"
)

var (
	extractInputCSV  string
	extractPrompt    string
	extractOutputDir string
	extractLimit     int
	extractProviders string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Run the multi-provider extraction pipeline",
	Long: `Dispatches every complaint record to each enabled provider under a
per-provider concurrency cap. Records whose output file already exists are
skipped, so an interrupted run resumes by re-running the command.

Examples:
  # All enabled providers, full input
  litigation-extract extract

  # Single provider, first 20 records
  litigation-extract extract --providers claude --limit 20`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if extractInputCSV != "" {
			cfg.Extract.InputCSV = extractInputCSV
		}
		if extractPrompt != "" {
			cfg.Extract.PromptFile = extractPrompt
		}
		if extractOutputDir != "" {
			cfg.Extract.OutputDir = extractOutputDir
		}
		if extractProviders != "" {
			restrictProviders(extractProviders)
		}

		recs, err := records.LoadRecords(ctx, cfg.Extract.InputCSV)
		if err != nil {
			return eris.Wrap(err, "extract: load records")
		}
		zap.L().Info("loaded input records", zap.Int("records", len(recs)))

		limit := cfg.Extract.SampleSize
		if extractLimit > 0 {
			limit = extractLimit
		}
		if limit > 0 && limit < len(recs) {
			recs = recs[:limit]
		}

		promptTemplate, err := extract.LoadPrompt(cfg.Extract.PromptFile)
		if err != nil {
			return err
		}

		registry := extract.NewRegistry(cfg.Keys)
		coord := extract.NewCoordinator(cfg, registry)

		// A run with zero successes still writes its summaries and exits 0.
		_, err = coord.Run(ctx, recs, promptTemplate)
		return err
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractInputCSV, "input", "", "input CSV path (overrides config)")
	extractCmd.Flags().StringVar(&extractPrompt, "prompt", "", "prompt template path (overrides config)")
	extractCmd.Flags().StringVar(&extractOutputDir, "out", "", "output base directory (overrides config)")
	extractCmd.Flags().IntVar(&extractLimit, "limit", 0, "max records to process (0 = all)")
	extractCmd.Flags().StringVar(&extractProviders, "providers", "", "comma-separated provider names to enable (overrides config enabled flags)")
	rootCmd.AddCommand(extractCmd)
}

// restrictProviders enables exactly the named providers and disables the rest.
func restrictProviders(list string) {
	wanted := make(map[string]bool)
	for _, name := range strings.Split(list, ",") {
		wanted[strings.TrimSpace(name)] = true
	}
	for name, pcfg := range cfg.Providers {
		pcfg.Enabled = wanted[name]
		cfg.Providers[name] = pcfg
	}
}
