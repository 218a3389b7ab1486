package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/civicdata/complaints-cli/internal/schema"
	"github.com/civicdata/complaints-cli/internal/store"
)

var indexesCmd = &cobra.Command{
	Use:   "indexes",
	Short: "Manage the query indexes on the complaints schema",
}

var indexesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create query indexes and refresh planner statistics",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		pool, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := schema.CreateIndexes(ctx, pool); err != nil {
			return err
		}
		if err := schema.Analyze(ctx, pool); err != nil {
			return err
		}

		zap.L().Info("indexes created")
		return nil
	},
}

var indexesDropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Drop query indexes, typically before a large load",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		pool, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := schema.DropIndexes(ctx, pool); err != nil {
			return err
		}

		zap.L().Info("indexes dropped")
		return nil
	},
}

func init() {
	indexesCmd.AddCommand(indexesCreateCmd, indexesDropCmd)
	rootCmd.AddCommand(indexesCmd)
}
