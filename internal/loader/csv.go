// Package loader persists flattened observation records: a CSV
// artifact on disk and a bulk load into the argo_profiles table.
package loader

import (
	"encoding/csv"
	"math"
	"os"
	"strconv"

	"github.com/oceanobs/floatchat/internal/argo"
)

// Header is the column order of the CSV artifact and of the table load.
var Header = []string{"float_id", "date", "latitude", "longitude", "depth", "temperature", "salinity"}

const dateLayout = "2006-01-02 15:04:05"

// WriteCSV persists the records to path with a header row. Optional
// fields rejected by QC become empty cells.
func WriteCSV(records []argo.Record, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		f.Close()
		return err
	}
	for _, r := range records {
		row := []string{
			r.FloatID,
			r.Date.UTC().Format(dateLayout),
			formatFloat(r.Latitude),
			formatFloat(r.Longitude),
			formatFloat(r.Depth),
			formatOptional(r.Temperature),
			formatOptional(r.Salinity),
		}
		if err := w.Write(row); err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
