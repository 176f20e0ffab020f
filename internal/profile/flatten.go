// Package profile flattens multidimensional ARGO profile files into
// one observation record per (profile, depth-level) pair.
package profile

import (
	"log"
	"math"
	"time"

	"github.com/oceanobs/floatchat/internal/argo"
)

// DefaultVars are the variables extracted when no explicit list is
// configured.
var DefaultVars = []string{"TEMP", "PSAL"}

// knownVars maps profile variable names onto record fields; TEMP is
// published as temperature and PSAL as salinity.
var knownVars = map[string]func(*argo.Record, float64){
	"TEMP": func(r *argo.Record, v float64) { r.Temperature = &v },
	"PSAL": func(r *argo.Record, v float64) { r.Salinity = &v },
}

// Flatten builds one record per (profile, level) pair. A requested
// variable contributes its value only when its QC flag at that pair is
// accepted; otherwise the field stays nil. Pairs where no requested
// variable passed QC yield no record at all.
func Flatten(ds *Dataset, vars []string) []argo.Record {
	if len(vars) == 0 {
		vars = DefaultVars
	}

	records := make([]argo.Record, 0, ds.NProf*ds.NLevels)
	for i := 0; i < ds.NProf; i++ {
		// a filled JULD means the profile has no usable timestamp
		if math.IsNaN(ds.Juld[i]) {
			continue
		}
		date := argo.JuldEpoch.Add(time.Duration(ds.Juld[i] * 24 * float64(time.Hour))).Round(time.Second)
		for j := 0; j < ds.NLevels; j++ {
			k := i*ds.NLevels + j
			rec := argo.Record{
				FloatID:   ds.FloatID,
				Date:      date,
				Latitude:  ds.Latitude[i],
				Longitude: ds.Longitude[i],
				Depth:     ds.Pres[k],
			}

			kept := false
			for _, name := range vars {
				set, ok := knownVars[name]
				if !ok {
					continue
				}
				vd, ok := ds.Vars[name]
				if !ok {
					continue
				}
				if k >= len(vd.QC) || k >= len(vd.Values) || !argo.AcceptedQC(vd.QC[k]) {
					continue
				}
				v := vd.Values[k]
				if math.IsNaN(v) {
					continue
				}
				set(&rec, v)
				kept = true
			}

			if kept {
				records = append(records, rec)
			}
		}
	}
	return records
}

// FlattenFile reads and flattens one profile file. An open or parse
// failure yields an empty result so the run continues without the
// file.
func FlattenFile(path string, vars []string) []argo.Record {
	ds, err := ReadFile(path, vars)
	if err != nil {
		log.Printf("error opening %s: %v", path, err)
		return nil
	}
	return Flatten(ds, vars)
}
