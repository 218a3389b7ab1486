package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/civicdata/complaints-cli/internal/fetcher"
)

var downloadRowCounts []int

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download 311 complaint extracts from the NYC open data portal",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := os.MkdirAll(cfg.Import.DataDir, 0o755); err != nil {
			return eris.Wrapf(err, "create data dir %s", cfg.Import.DataDir)
		}

		f := fetcher.New(fetcher.Options{
			Timeout:      time.Duration(cfg.Download.TimeoutSecs) * time.Second,
			MaxRetries:   cfg.Download.MaxRetries,
			RateLimiters: fetcher.DefaultRateLimiters(),
		})

		g, ctx := errgroup.WithContext(ctx)
		g.SetLimit(cfg.Download.Concurrency)

		for _, n := range downloadRowCounts {
			g.Go(func() error {
				url := fmt.Sprintf("%s?$limit=%d", cfg.Download.BaseURL, n)
				dest := filepath.Join(cfg.Import.DataDir, fmt.Sprintf("%d_rows.csv", n))

				size, err := f.DownloadToFile(ctx, url, dest)
				if err != nil {
					return eris.Wrapf(err, "download %d rows", n)
				}

				zap.L().Info("extract downloaded",
					zap.String("file", dest),
					zap.Int("rows", n),
					zap.Int64("bytes", size),
				)
				return nil
			})
		}

		return g.Wait()
	},
}

func init() {
	downloadCmd.Flags().IntSliceVar(&downloadRowCounts, "rows", []int{1000}, "extract sizes to download, in rows")
	rootCmd.AddCommand(downloadCmd)
}
