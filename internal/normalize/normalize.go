// Package normalize converts raw 311 CSV field values into canonical typed
// values. All functions are pure; absent or junk input maps to a zero value
// and an ok=false flag rather than an error.
package normalize

import (
	"strconv"
	"strings"
	"time"
)

// nullTokens are raw values treated as absent, compared case-insensitively.
var nullTokens = map[string]struct{}{
	"":            {},
	"null":        {},
	"n/a":         {},
	"na":          {},
	"unspecified": {},
}

// boroughs is the fixed borough enumeration. "Unspecified" is the catch-all.
var boroughs = map[string]struct{}{
	"BRONX":         {},
	"BROOKLYN":      {},
	"MANHATTAN":     {},
	"QUEENS":        {},
	"STATEN ISLAND": {},
	"Unspecified":   {},
}

// statuses is the fixed valid-status enumeration enforced by the store's
// chk_status_valid constraint.
var statuses = map[string]struct{}{
	"Open":        {},
	"Closed":      {},
	"In Progress": {},
	"Assigned":    {},
	"Pending":     {},
}

// Value trims whitespace and maps null-ish tokens to absent.
func Value(raw string) (string, bool) {
	v := strings.TrimSpace(raw)
	if _, null := nullTokens[strings.ToLower(v)]; null {
		return "", false
	}
	return v, true
}

// Borough canonicalizes a borough name. The result is always a member of the
// borough enumeration; anything unrecognized collapses to "Unspecified".
func Borough(raw string) string {
	v, ok := Value(raw)
	if !ok {
		return "Unspecified"
	}
	v = strings.ToUpper(v)
	if strings.HasPrefix(v, "STATEN") {
		return "STATEN ISLAND"
	}
	if _, valid := boroughs[v]; !valid {
		return "Unspecified"
	}
	return v
}

// Status canonicalizes a complaint status. Absent and unrecognized values
// fall back to "Open"; "started" (any case) maps to "In Progress". The
// result is always a member of the status enumeration.
func Status(raw string) string {
	v, ok := Value(raw)
	if !ok {
		return "Open"
	}
	if strings.EqualFold(v, "started") {
		return "In Progress"
	}
	if _, valid := statuses[v]; valid {
		return v
	}
	return "Open"
}

// Coords holds validated geographic coordinates. A nil field means the
// coordinate was absent from the input.
type Coords struct {
	Lat *float64
	Lon *float64
}

// Coordinates parses and range-checks a latitude/longitude pair. Empty
// strings mean absent, which is valid. A parse failure or out-of-range value
// invalidates the whole pair and both values come back nil.
func Coordinates(lat, lon string) (Coords, bool) {
	var c Coords
	if lat != "" {
		f, err := strconv.ParseFloat(lat, 64)
		if err != nil || f < -90 || f > 90 {
			return Coords{}, false
		}
		c.Lat = &f
	}
	if lon != "" {
		f, err := strconv.ParseFloat(lon, 64)
		if err != nil || f < -180 || f > 180 {
			return Coords{}, false
		}
		c.Lon = &f
	}
	return c, true
}

// dateLayouts are the ISO-8601 shapes seen in 311 exports. RFC 3339 covers
// the trailing-Z and explicit-offset forms.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Date parses an ISO-8601 timestamp. Unparsable or absent input yields
// ok=false, never an error.
func Date(raw string) (time.Time, bool) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ClosedDate drops a closed timestamp that precedes the creation timestamp,
// pre-empting the store's chk_closed_after_created constraint. If either
// side is unknown the closed value passes through untouched.
func ClosedDate(created time.Time, createdOK bool, closed time.Time, closedOK bool) (time.Time, bool) {
	if !createdOK || !closedOK {
		return closed, closedOK
	}
	if closed.Before(created) {
		return time.Time{}, false
	}
	return closed, true
}
