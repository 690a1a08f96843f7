package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/appelson/litigation-extract/internal/parse"
	"github.com/appelson/litigation-extract/internal/records"
	"github.com/appelson/litigation-extract/internal/store"
)

var (
	parseFolder   string
	parseInputCSV string
	parseOutDir   string
	parseDBPath   string
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Normalize persisted extraction files into relational tables",
	Long: `Parses every extraction file in a provider's output folder into the four
entity tables, attaches document/case identifiers from the input CSV, expands
the harm associations, and writes the assembled tables as CSV (and optionally
to a SQLite database).

Example:
  litigation-extract parse --folder data/openai_extracted_text --out data`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if parseInputCSV == "" {
			parseInputCSV = cfg.Extract.InputCSV
		}
		if parseOutDir == "" {
			parseOutDir = cfg.Extract.OutputDir
		}

		tables, failed, err := parse.LoadFolder(parseFolder)
		if err != nil {
			return eris.Wrap(err, "parse: load folder")
		}

		ids, err := records.LoadIdentityMap(ctx, parseInputCSV)
		if err != nil {
			return eris.Wrap(err, "parse: load identity map")
		}
		parse.AttachIDs(tables, ids)

		harmsPlaintiffs := parse.ExplodeHarmPlaintiffs(tables.Harms, tables.Plaintiffs)
		harmsDefendants := parse.ExplodeHarmDefendants(tables.Harms, tables.Defendants)

		if err := parse.WriteAll(parseOutDir, tables, harmsPlaintiffs, harmsDefendants, failed); err != nil {
			return err
		}

		if parseDBPath != "" {
			if err := persistTables(cmd, tables, failed); err != nil {
				return err
			}
		}

		return nil
	},
}

func init() {
	parseCmd.Flags().StringVar(&parseFolder, "folder", "", "provider output folder to parse (required)")
	parseCmd.Flags().StringVar(&parseInputCSV, "input", "", "input CSV for the identity mapping (default: config input_csv)")
	parseCmd.Flags().StringVar(&parseOutDir, "out", "", "directory for assembled CSV tables (default: config output_dir)")
	parseCmd.Flags().StringVar(&parseDBPath, "db", "", "also persist normalized tables to this SQLite database")
	_ = parseCmd.MarkFlagRequired("folder")
	rootCmd.AddCommand(parseCmd)
}

// persistTables writes the normalized tables to SQLite.
func persistTables(cmd *cobra.Command, tables *parse.Tables, failed []parse.Failure) error {
	ctx := cmd.Context()

	st, err := store.NewSQLite(parseDBPath)
	if err != nil {
		return eris.Wrap(err, "parse: open sqlite")
	}
	defer st.Close() //nolint:errcheck

	if err := st.Migrate(ctx); err != nil {
		return eris.Wrap(err, "parse: migrate sqlite")
	}
	if err := st.InsertTables(ctx, tables, failed); err != nil {
		return eris.Wrap(err, "parse: persist tables")
	}

	zap.L().Info("tables persisted", zap.String("db", parseDBPath))
	return nil
}
