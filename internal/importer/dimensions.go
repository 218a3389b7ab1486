package importer

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/civicdata/complaints-cli/internal/db"
)

// Location describes one row of the locations dimension. Identity is the
// (Borough, Lat, Lon) triple with null-aware coordinate matching; the other
// attributes keep whatever values the first-seen row carried.
type Location struct {
	Borough      string
	City         *string
	Zip          *string
	Lat          *float64
	Lon          *float64
	XStatePlane  *string
	YStatePlane  *string
	Location     *string
	LocationType *string
}

// DimensionResolver maps canonical dimension values to surrogate ids,
// creating rows on first sighting. Status and complaint-type ids are
// memoized in-process; locations are looked up per row because their
// composite identity is too sparse to cache usefully.
//
// Dimension inserts run on the pool in autocommit mode, so a created
// dimension row is durable even if the fact batch that referenced it later
// rolls back.
type DimensionResolver struct {
	pool      db.Pool
	statusIDs map[string]int64
	typeIDs   map[string]int64
}

// NewDimensionResolver creates a resolver with empty caches.
func NewDimensionResolver(pool db.Pool) *DimensionResolver {
	return &DimensionResolver{
		pool:      pool,
		statusIDs: make(map[string]int64),
		typeIDs:   make(map[string]int64),
	}
}

// ClearCaches drops the status and complaint-type memos, forcing fresh store
// lookups. The batch loader calls this after a rollback, when id visibility
// within the session is no longer certain.
func (r *DimensionResolver) ClearCaches() {
	clear(r.statusIDs)
	clear(r.typeIDs)
}

// ResolveStatus returns the surrogate id for a canonical status label.
func (r *DimensionResolver) ResolveStatus(ctx context.Context, status string) (int64, error) {
	return r.resolveSmall(ctx, r.statusIDs, status,
		`SELECT status_id FROM statuses WHERE status = $1`,
		`INSERT INTO statuses (status) VALUES ($1) RETURNING status_id`,
	)
}

// ResolveComplaintType returns the surrogate id for a canonical complaint
// category.
func (r *DimensionResolver) ResolveComplaintType(ctx context.Context, complaintType string) (int64, error) {
	return r.resolveSmall(ctx, r.typeIDs, complaintType,
		`SELECT complaint_type_id FROM complaint_types WHERE complaint_type = $1`,
		`INSERT INTO complaint_types (complaint_type) VALUES ($1) RETURNING complaint_type_id`,
	)
}

func (r *DimensionResolver) resolveSmall(ctx context.Context, cache map[string]int64, value, selectSQL, insertSQL string) (int64, error) {
	if id, hit := cache[value]; hit {
		return id, nil
	}

	var id int64
	err := r.pool.QueryRow(ctx, selectSQL, value).Scan(&id)
	switch {
	case err == nil:
	case errors.Is(err, pgx.ErrNoRows):
		if err := r.pool.QueryRow(ctx, insertSQL, value).Scan(&id); err != nil {
			return 0, eris.Wrapf(err, "importer: create dimension value %q", value)
		}
	default:
		return 0, eris.Wrapf(err, "importer: look up dimension value %q", value)
	}

	cache[value] = id
	return id, nil
}

// ResolveLocation returns the surrogate id for a location, inserting it if
// no row matches the (borough, latitude, longitude) identity.
func (r *DimensionResolver) ResolveLocation(ctx context.Context, loc Location) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		SELECT location_id FROM locations
		WHERE borough = $1
		  AND (latitude = $2 OR (latitude IS NULL AND $2::float8 IS NULL))
		  AND (longitude = $3 OR (longitude IS NULL AND $3::float8 IS NULL))
		LIMIT 1`,
		loc.Borough, loc.Lat, loc.Lon,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, eris.Wrapf(err, "importer: look up location %s", loc.Borough)
	}

	err = r.pool.QueryRow(ctx, `
		INSERT INTO locations (borough, city, incident_zip, latitude, longitude,
		                       x_coordinate_state_plane, y_coordinate_state_plane,
		                       location, location_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING location_id`,
		loc.Borough, loc.City, loc.Zip, loc.Lat, loc.Lon,
		loc.XStatePlane, loc.YStatePlane, loc.Location, loc.LocationType,
	).Scan(&id)
	if err != nil {
		return 0, eris.Wrapf(err, "importer: create location %s", loc.Borough)
	}
	return id, nil
}
