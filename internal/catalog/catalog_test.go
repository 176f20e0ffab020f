package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oceanobs/floatchat/internal/argo"
)

const sampleIndex = `# Title : Profile directory file of the Argo Global Data Assembly Center
# Date of update : 20230401000000
file,date,latitude,longitude,ocean,profiler_type,institution,date_update
aoml/13857/profiles/R13857_001.nc,20230315060000,0.267,70.532,I,845,AO,20230316020100
aoml/13857/profiles/R13857_002.nc,20230310120000,10.000,70.000,I,845,AO,20230311020100
aoml/13858/profiles/R13858_001.nc,,1.500,65.000,I,845,AO,20230316020100
aoml/13859/profiles/R13859_001.nc,20230305000000,,66.000,I,845,AO,20230306020100
`

func TestParseIndex(t *testing.T) {
	entries, err := ParseIndex([]byte(sampleIndex))
	require.NoError(t, err)

	// rows with a blank date or latitude are dropped
	require.Len(t, entries, 2)

	first := entries[0]
	assert.Equal(t, "aoml/13857/profiles/R13857_001.nc", first.File)
	assert.Equal(t, time.Date(2023, 3, 15, 6, 0, 0, 0, time.UTC), first.Date)
	assert.InDelta(t, 0.267, first.Latitude, 1e-9)
	assert.InDelta(t, 70.532, first.Longitude, 1e-9)
	assert.Equal(t, "I", first.Ocean)
	assert.Equal(t, "845", first.ProfilerType)
	assert.Equal(t, "AO", first.Institution)
}

func TestParseIndexMissingColumn(t *testing.T) {
	_, err := ParseIndex([]byte("file,latitude,longitude\na.nc,0,70\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "date")
}

func TestFilter(t *testing.T) {
	region := argo.Region{LatMin: -5, LatMax: 5, LonMin: 60, LonMax: 80}
	window := argo.TimeWindow{
		Start: time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2023, 3, 31, 0, 0, 0, 0, time.UTC),
	}

	entry := func(lat, lon float64, date time.Time) argo.CatalogEntry {
		return argo.CatalogEntry{File: "x.nc", Latitude: lat, Longitude: lon, Date: date}
	}
	mid := time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC)

	t.Run("inside box selected, outside excluded", func(t *testing.T) {
		entries := []argo.CatalogEntry{
			entry(0, 70, mid),
			entry(10, 70, mid),
		}
		got := Filter(entries, region, window)
		require.Len(t, got, 1)
		assert.Equal(t, entries[0], got[0])
	})

	t.Run("all six bounds are inclusive", func(t *testing.T) {
		entries := []argo.CatalogEntry{
			entry(-5, 70, mid),
			entry(5, 70, mid),
			entry(0, 60, mid),
			entry(0, 80, mid),
			entry(0, 70, window.Start),
			entry(0, 70, window.End),
		}
		assert.Len(t, Filter(entries, region, window), len(entries))
	})

	t.Run("date outside window excluded", func(t *testing.T) {
		entries := []argo.CatalogEntry{
			entry(0, 70, window.End.Add(time.Second)),
		}
		assert.Empty(t, Filter(entries, region, window))
	})

	t.Run("zero matches yields empty slice", func(t *testing.T) {
		got := Filter(nil, region, window)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestFilterOnParsedIndex(t *testing.T) {
	entries, err := ParseIndex([]byte(sampleIndex))
	require.NoError(t, err)

	got := Filter(entries,
		argo.Region{LatMin: -5, LatMax: 5, LonMin: 60, LonMax: 80},
		argo.TimeWindow{
			Start: time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2023, 3, 31, 0, 0, 0, 0, time.UTC),
		})

	require.Len(t, got, 1)
	assert.Equal(t, "aoml/13857/profiles/R13857_001.nc", got[0].File)
}
