package importer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/civicdata/complaints-cli/internal/db"
	"github.com/civicdata/complaints-cli/internal/normalize"
)

// progressEvery controls how often running totals are logged.
const progressEvery = 1000

// Importer drives the import pipeline over a row source: normalize, resolve
// dimension ids, buffer, batch-insert. Rows are processed strictly in input
// order on a single connection pool.
type Importer struct {
	dims  *DimensionResolver
	batch *BatchLoader
	stats Stats
}

// New creates an importer with the given fact batch size.
func New(pool db.Pool, batchSize int) *Importer {
	imp := &Importer{dims: NewDimensionResolver(pool)}
	imp.batch = NewBatchLoader(pool, batchSize, imp.dims.ClearCaches)
	return imp
}

// rowOutcome classifies the handling of one input row.
type rowOutcome int

const (
	rowOK      rowOutcome = iota
	rowSkipped            // failed hard validation, never touched the store
	rowFailed             // store error during dimension resolution
)

type rowResult struct {
	outcome rowOutcome
	fact    FactRow
	reason  string
}

// Run processes every row from src and returns the aggregated statistics.
// Row- and batch-level failures are recorded and skipped; Run itself only
// stops early when ctx is cancelled, in which case the in-flight buffer is
// dropped (already-committed batches and dimension rows stay put).
func (imp *Importer) Run(ctx context.Context, src RowSource) *Stats {
	log := zap.L().With(zap.String("component", "importer"))

	for {
		if ctx.Err() != nil {
			log.Warn("run interrupted, dropping in-flight buffer",
				zap.Int("buffered", imp.batch.Buffered()),
			)
			return &imp.stats
		}

		rec, line, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		imp.stats.Total++

		if err != nil {
			imp.stats.RecordError(fmt.Sprintf("row %d: %v", line, err))
			continue
		}

		res := imp.processRow(ctx, rec, line)
		switch res.outcome {
		case rowOK:
			imp.batch.Add(ctx, res.fact, &imp.stats)
		case rowSkipped:
			imp.stats.RecordError(fmt.Sprintf("row %d: %s", line, res.reason))
		case rowFailed:
			imp.dims.ClearCaches()
			imp.stats.RecordError(fmt.Sprintf("row %d: %s", line, res.reason))
		}

		if imp.stats.Total%progressEvery == 0 {
			log.Info("progress",
				zap.Int("total", imp.stats.Total),
				zap.Int("success", imp.stats.Success),
				zap.Int("errors", imp.stats.Errors),
			)
		}
	}

	imp.batch.Flush(ctx, &imp.stats)

	log.Info("run complete",
		zap.Int("total", imp.stats.Total),
		zap.Int("success", imp.stats.Success),
		zap.Int("errors", imp.stats.Errors),
	)
	return &imp.stats
}

// processRow normalizes and validates one record and resolves its dimension
// ids. It never returns an error: outcomes are encoded in the result.
func (imp *Importer) processRow(ctx context.Context, rec Record, line int) rowResult {
	uniqueKey, keyOK := normalize.Value(rec.Get("unique_key"))
	created, createdOK := normalize.Date(rec.Get("created_date"))
	complaintType, typeOK := normalize.Value(rec.Get("complaint_type"))

	if !keyOK || !createdOK || !typeOK {
		return rowResult{outcome: rowSkipped, reason: "missing or invalid unique_key, created_date or complaint_type"}
	}

	closedRaw, closedRawOK := normalize.Date(rec.Get("closed_date"))
	closed, closedOK := normalize.ClosedDate(created, true, closedRaw, closedRawOK)

	status := normalize.Status(rec.Get("status"))

	// An invalid coordinate pair degrades to null coordinates; the row is
	// still loaded.
	latRaw, _ := normalize.Value(rec.Get("latitude"))
	lonRaw, _ := normalize.Value(rec.Get("longitude"))
	coords, _ := normalize.Coordinates(latRaw, lonRaw)

	statusID, err := imp.dims.ResolveStatus(ctx, status)
	if err != nil {
		return rowResult{outcome: rowFailed, reason: fmt.Sprintf("resolve status: %v", err)}
	}

	typeID, err := imp.dims.ResolveComplaintType(ctx, complaintType)
	if err != nil {
		return rowResult{outcome: rowFailed, reason: fmt.Sprintf("resolve complaint type: %v", err)}
	}

	loc := Location{
		Borough:      normalize.Borough(rec.Get("borough")),
		City:         optional(rec.Get("city")),
		Zip:          optional(rec.Get("incident_zip")),
		Lat:          coords.Lat,
		Lon:          coords.Lon,
		XStatePlane:  optional(rec.Get("x_coordinate_state_plane")),
		YStatePlane:  optional(rec.Get("y_coordinate_state_plane")),
		Location:     optional(rec.Get("location")),
		LocationType: optional(rec.Get("location_type")),
	}
	locID, err := imp.dims.ResolveLocation(ctx, loc)
	if err != nil {
		return rowResult{outcome: rowFailed, reason: fmt.Sprintf("resolve location: %v", err)}
	}

	fact := FactRow{
		UniqueKey:       uniqueKey,
		CreatedDate:     created,
		StatusID:        statusID,
		ComplaintTypeID: typeID,
		LocationID:      locID,
		line:            line,
	}
	if closedOK {
		fact.ClosedDate = &closed
	}
	return rowResult{outcome: rowOK, fact: fact}
}

// optional normalizes a raw field into a nullable column value.
func optional(raw string) *string {
	v, ok := normalize.Value(raw)
	if !ok {
		return nil
	}
	return &v
}
