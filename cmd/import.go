package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/civicdata/complaints-cli/internal/importer"
	"github.com/civicdata/complaints-cli/internal/schema"
	"github.com/civicdata/complaints-cli/internal/store"
)

var (
	importFile      string
	importBatchSize int
	importTruncate  bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a 311 complaints CSV into PostgreSQL",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		path := importFile
		if path == "" {
			p, err := newestCSV(cfg.Import.DataDir)
			if err != nil {
				return err
			}
			path = p
		}

		batchSize := importBatchSize
		if batchSize == 0 {
			batchSize = cfg.Import.BatchSize
		}

		pool, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer pool.Close()

		if importTruncate {
			if err := schema.TruncateData(ctx, pool); err != nil {
				return err
			}
		}

		if err := importer.EnsureRunLog(ctx, pool); err != nil {
			return err
		}

		file, err := os.Open(path)
		if err != nil {
			return eris.Wrapf(err, "open %s", path)
		}
		defer file.Close() //nolint:errcheck

		src, err := importer.NewCSVSource(file)
		if err != nil {
			return err
		}

		zap.L().Info("starting import",
			zap.String("file", path),
			zap.Int("batch_size", batchSize),
		)

		started := time.Now()
		stats := importer.New(pool, batchSize).Run(ctx, src)
		finished := time.Now()

		if err := importer.RecordRun(ctx, pool, filepath.Base(path), stats, started, finished); err != nil {
			zap.L().Warn("failed to record run", zap.Error(err))
		}

		fmt.Print(stats.Summary())

		if !stats.OK() {
			return eris.Errorf("import completed with %d errors", stats.Errors)
		}
		return nil
	},
}

// newestCSV returns the most recently modified .csv file in dir.
func newestCSV(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return "", eris.Wrapf(err, "scan %s", dir)
	}
	if len(matches) == 0 {
		return "", eris.Errorf("no CSV files in %s; run download first or pass --file", dir)
	}

	sort.Slice(matches, func(i, j int) bool {
		fi, errI := os.Stat(matches[i])
		fj, errJ := os.Stat(matches[j])
		if errI != nil || errJ != nil {
			return matches[i] < matches[j]
		}
		return fi.ModTime().After(fj.ModTime())
	})
	return matches[0], nil
}

func init() {
	importCmd.Flags().StringVar(&importFile, "file", "", "CSV file to import (defaults to newest in data dir)")
	importCmd.Flags().IntVar(&importBatchSize, "batch-size", 0, "rows per insert transaction (defaults to config)")
	importCmd.Flags().BoolVar(&importTruncate, "truncate", false, "empty all data tables before importing")
	rootCmd.AddCommand(importCmd)
}
