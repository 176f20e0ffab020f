// Package argo holds the domain types shared by the ingestion pipeline
// stages: catalog entries from the global profile index and flattened
// per-level observation records.
package argo

import "time"

// JuldEpoch is the reference instant of the JULD time axis in ARGO
// profile files: observation times are stored as days since 1950-01-01.
var JuldEpoch = time.Date(1950, time.January, 1, 0, 0, 0, 0, time.UTC)

// AcceptedQC reports whether a quality-control flag marks a measurement
// as usable: '1' (good) or '2' (probably good).
func AcceptedQC(flag byte) bool {
	return flag == '1' || flag == '2'
}

// CatalogEntry is one row of the global profile index: the relative
// path of a profile file plus its summary metadata.
type CatalogEntry struct {
	File         string
	Date         time.Time
	Latitude     float64
	Longitude    float64
	Ocean        string
	ProfilerType string
	Institution  string
	DateUpdate   string
}

// Record is one flattened (profile, depth-level) observation.
// Temperature and Salinity stay nil when the measurement is missing or
// failed quality control.
type Record struct {
	FloatID     string
	Date        time.Time
	Latitude    float64
	Longitude   float64
	Depth       float64
	Temperature *float64
	Salinity    *float64
}

// Region is a latitude/longitude bounding box with inclusive bounds.
type Region struct {
	LatMin float64
	LatMax float64
	LonMin float64
	LonMax float64
}

// Contains reports whether the point lies inside the box.
func (r Region) Contains(lat, lon float64) bool {
	return lat >= r.LatMin && lat <= r.LatMax &&
		lon >= r.LonMin && lon <= r.LonMax
}

// TimeWindow is an inclusive [Start, End] observation date range.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}
