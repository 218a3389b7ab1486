package main

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/civicdata/complaints-cli/internal/importer"
	"github.com/civicdata/complaints-cli/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show table row counts and recent import runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		pool, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer pool.Close()

		for _, table := range []string{"complaints", "locations", "complaint_types", "statuses"} {
			var count int64
			if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
				return eris.Wrapf(err, "count %s", table)
			}
			fmt.Printf("%-16s %d\n", table, count)
		}

		runs, err := importer.RecentRuns(ctx, pool, 10)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("\nNo recorded import runs.")
			return nil
		}

		fmt.Println("\nRecent imports:")
		for _, r := range runs {
			fmt.Printf("  %s  %-20s total=%d success=%d errors=%d took=%s\n",
				r.StartedAt.Format("2006-01-02 15:04:05"),
				r.SourceFile, r.Total, r.Success, r.Errors,
				r.FinishedAt.Sub(r.StartedAt).Round(time.Second),
			)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
