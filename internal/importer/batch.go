package importer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/civicdata/complaints-cli/internal/db"
)

// factColumns are the complaints columns populated by the loader, in COPY
// order.
var factColumns = []string{
	"unique_key", "created_date", "closed_date",
	"status_id", "complaint_type_id", "location_id",
}

// FactRow is one resolved complaint ready for insertion.
type FactRow struct {
	UniqueKey       string
	CreatedDate     time.Time
	ClosedDate      *time.Time
	StatusID        int64
	ComplaintTypeID int64
	LocationID      int64

	line int // input line number, for error ranges
}

// BatchLoader buffers resolved fact rows and flushes them in all-or-nothing
// transactional groups. A failed flush rolls back, invalidates the dimension
// caches via onRollback, records one aggregated error for the group's
// row-number range, and lets the run continue: losing one batch never aborts
// the load.
type BatchLoader struct {
	pool       db.Pool
	size       int
	onRollback func()
	rows       []FactRow
}

// NewBatchLoader creates a loader flushing every size buffered valid rows.
// Flushing is triggered by buffered valid rows, not input rows; skipped
// input rows do not advance the batch boundary.
func NewBatchLoader(pool db.Pool, size int, onRollback func()) *BatchLoader {
	if size <= 0 {
		size = 100
	}
	return &BatchLoader{pool: pool, size: size, onRollback: onRollback}
}

// Add buffers one row and flushes when the buffer is full.
func (b *BatchLoader) Add(ctx context.Context, row FactRow, stats *Stats) {
	b.rows = append(b.rows, row)
	if len(b.rows) >= b.size {
		b.Flush(ctx, stats)
	}
}

// Flush inserts the buffered rows in one transaction and clears the buffer.
// Outcomes are recorded in stats; Flush itself never fails the run.
func (b *BatchLoader) Flush(ctx context.Context, stats *Stats) {
	if len(b.rows) == 0 {
		return
	}

	n := len(b.rows)
	firstLine, lastLine := b.rows[0].line, b.rows[n-1].line
	values := make([][]any, n)
	for i, r := range b.rows {
		values[i] = []any{
			r.UniqueKey, r.CreatedDate, r.ClosedDate,
			r.StatusID, r.ComplaintTypeID, r.LocationID,
		}
	}
	b.rows = b.rows[:0]

	if err := b.insert(ctx, values); err != nil {
		b.onRollback()
		stats.RecordBatchError(n, fmt.Sprintf("rows %d-%d: batch insert failed: %v", firstLine, lastLine, err))
		zap.L().Warn("batch insert failed, continuing",
			zap.String("component", "importer.batch"),
			zap.Int("rows", n),
			zap.Int("first_line", firstLine),
			zap.Int("last_line", lastLine),
			zap.Error(err),
		)
		return
	}

	stats.Success += n
	zap.L().Debug("batch committed",
		zap.String("component", "importer.batch"),
		zap.Int("rows", n),
	)
}

func (b *BatchLoader) insert(ctx context.Context, values [][]any) error {
	tx, err := b.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := db.CopyInto(ctx, tx, "complaints", factColumns, values); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Buffered returns the number of rows waiting for the next flush.
func (b *BatchLoader) Buffered() int {
	return len(b.rows)
}
