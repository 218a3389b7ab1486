// Package schema manages the query indexes and maintenance operations for
// the complaints database. Table DDL is owned by the operator; only index
// management, planner stats, and data truncation live here.
package schema

import (
	"context"
	_ "embed"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/civicdata/complaints-cli/internal/db"
)

//go:embed sql/create_indexes.sql
var createIndexesSQL string

//go:embed sql/drop_indexes.sql
var dropIndexesSQL string

// dataTables lists the tables holding imported data, fact table first so a
// truncate never breaks a foreign key.
var dataTables = []string{"complaints", "locations", "complaint_types", "statuses"}

// CreateIndexes creates the query indexes used by analytical workloads.
// Indexes are created after bulk loads; loading into an unindexed fact
// table is considerably faster.
func CreateIndexes(ctx context.Context, pool db.Pool) error {
	return execStatements(ctx, pool, createIndexesSQL, "create index")
}

// DropIndexes removes the query indexes, typically before a large load.
func DropIndexes(ctx context.Context, pool db.Pool) error {
	return execStatements(ctx, pool, dropIndexesSQL, "drop index")
}

// Analyze refreshes planner statistics for every data table.
func Analyze(ctx context.Context, pool db.Pool) error {
	for _, table := range dataTables {
		if _, err := pool.Exec(ctx, "ANALYZE "+table); err != nil {
			return eris.Wrapf(err, "schema: analyze %s", table)
		}
	}
	return nil
}

// TruncateData empties every data table, resetting surrogate id sequences.
func TruncateData(ctx context.Context, pool db.Pool) error {
	stmt := "TRUNCATE " + strings.Join(dataTables, ", ") + " RESTART IDENTITY CASCADE"
	if _, err := pool.Exec(ctx, stmt); err != nil {
		return eris.Wrap(err, "schema: truncate data tables")
	}
	zap.L().Info("data tables truncated",
		zap.String("component", "schema"),
		zap.Strings("tables", dataTables),
	)
	return nil
}

// execStatements runs each semicolon-terminated statement in src in order.
func execStatements(ctx context.Context, pool db.Pool, src, action string) error {
	for _, stmt := range strings.Split(src, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return eris.Wrapf(err, "schema: %s", action)
		}
	}
	return nil
}
