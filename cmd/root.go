package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/civicdata/complaints-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "complaints-cli",
	Short: "NYC 311 complaint data pipeline",
	Long:  "Downloads 311 service request extracts, normalizes them, and loads them into a dimensional PostgreSQL schema in transactional batches.",
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
