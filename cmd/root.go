package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/appelson/litigation-extract/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "litigation-extract",
	Short: "Multi-provider legal complaint extraction pipeline",
	Long:  "Fans complaint documents out to multiple text-generation providers, persists raw JSON extractions with resumable re-runs, and normalizes the outputs into relational incident tables.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
