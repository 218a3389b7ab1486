package importer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/civicdata/complaints-cli/internal/db"
)

// RunRecord is the persisted bookkeeping row for one import run.
type RunRecord struct {
	ID         uuid.UUID
	SourceFile string
	Total      int
	Success    int
	Errors     int
	StartedAt  time.Time
	FinishedAt time.Time
}

const runLogDDL = `
CREATE TABLE IF NOT EXISTS import_runs (
	run_id       UUID PRIMARY KEY,
	source_file  TEXT NOT NULL,
	total_rows   INTEGER NOT NULL,
	success_rows INTEGER NOT NULL,
	error_rows   INTEGER NOT NULL,
	started_at   TIMESTAMPTZ NOT NULL,
	finished_at  TIMESTAMPTZ NOT NULL
)`

// EnsureRunLog creates the import_runs bookkeeping table if needed.
func EnsureRunLog(ctx context.Context, pool db.Pool) error {
	_, err := pool.Exec(ctx, runLogDDL)
	return eris.Wrap(err, "importer: ensure run log table")
}

// RecordRun inserts one bookkeeping row for a completed run.
func RecordRun(ctx context.Context, pool db.Pool, sourceFile string, stats *Stats, startedAt, finishedAt time.Time) error {
	_, err := pool.Exec(ctx, `
		INSERT INTO import_runs (run_id, source_file, total_rows, success_rows, error_rows, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.New(), sourceFile, stats.Total, stats.Success, stats.Errors, startedAt, finishedAt,
	)
	return eris.Wrap(err, "importer: record run")
}

// RecentRuns returns the most recent bookkeeping rows, newest first.
func RecentRuns(ctx context.Context, pool db.Pool, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := pool.Query(ctx, `
		SELECT run_id, source_file, total_rows, success_rows, error_rows, started_at, finished_at
		FROM import_runs
		ORDER BY started_at DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "importer: query recent runs")
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.ID, &r.SourceFile, &r.Total, &r.Success, &r.Errors, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, eris.Wrap(err, "importer: scan run record")
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
