// Package catalog parses the GDAC global profile index and selects the
// entries inside a configured region and time window.
package catalog

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/oceanobs/floatchat/internal/argo"
)

// indexDateLayout is the 14-digit date format of the index file.
const indexDateLayout = "20060102150405"

// ParseIndex parses the decompressed global index: leading '#' comment
// lines, then a header row, then one row per profile file. Columns are
// resolved by header name. Rows with a blank or garbled date, latitude
// or longitude are dropped (the real index contains such rows); a
// malformed stream is an error.
func ParseIndex(data []byte) ([]argo.CatalogEntry, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comment = '#'
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read index header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, name := range []string{"file", "date", "latitude", "longitude"} {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("index is missing column %q", name)
		}
	}

	entries := make([]argo.CatalogEntry, 0, 1024)
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read index row: %w", err)
		}
		field := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		date, err := time.ParseInLocation(indexDateLayout, field("date"), time.UTC)
		if err != nil {
			continue
		}
		lat, err := strconv.ParseFloat(field("latitude"), 64)
		if err != nil {
			continue
		}
		lon, err := strconv.ParseFloat(field("longitude"), 64)
		if err != nil {
			continue
		}

		entries = append(entries, argo.CatalogEntry{
			File:         field("file"),
			Date:         date,
			Latitude:     lat,
			Longitude:    lon,
			Ocean:        field("ocean"),
			ProfilerType: field("profiler_type"),
			Institution:  field("institution"),
			DateUpdate:   field("date_update"),
		})
	}
	return entries, nil
}

// Filter returns the entries whose coordinates lie inside the region
// and whose date falls inside the window, all bounds inclusive. The
// input is not mutated; zero matches yields an empty slice.
func Filter(entries []argo.CatalogEntry, region argo.Region, window argo.TimeWindow) []argo.CatalogEntry {
	out := make([]argo.CatalogEntry, 0, len(entries))
	for _, e := range entries {
		if region.Contains(e.Latitude, e.Longitude) && window.Contains(e.Date) {
			out = append(out, e)
		}
	}
	return out
}
