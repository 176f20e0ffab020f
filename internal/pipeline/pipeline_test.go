package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oceanobs/floatchat/internal/argo"
)

const testIndex = `# Profile directory file
file,date,latitude,longitude,ocean,profiler_type,institution,date_update
aoml/13857/profiles/R13857_001.nc,20230315000000,0.0,70.0,I,845,AO,20230316020100
aoml/13857/profiles/R13857_002.nc,20230315000000,10.0,70.0,I,845,AO,20230316020100
`

type stubIndex struct {
	data []byte
	err  error
}

func (s stubIndex) FetchIndex(context.Context) ([]byte, error) {
	return s.data, s.err
}

type stubDownloader struct {
	calls []string
}

func (d *stubDownloader) Download(_ context.Context, relPath, destPath string) error {
	d.calls = append(d.calls, relPath)
	return os.WriteFile(destPath, []byte("nc"), 0o644)
}

// fakeSink records the order of store operations.
type fakeSink struct {
	ops     []string
	loaded  int64
	loadErr error
}

func (s *fakeSink) EnsureSchema(context.Context) error {
	s.ops = append(s.ops, "schema")
	return nil
}

func (s *fakeSink) Truncate(context.Context) error {
	s.ops = append(s.ops, "truncate")
	return nil
}

func (s *fakeSink) BulkLoad(_ context.Context, csvPath string) (int64, error) {
	s.ops = append(s.ops, "load")
	if s.loadErr != nil {
		return 0, s.loadErr
	}
	data, err := os.ReadFile(csvPath)
	if err != nil {
		return 0, err
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	s.loaded = int64(len(lines) - 1) // header skipped
	return s.loaded, nil
}

func params(t *testing.T) Params {
	t.Helper()
	dir := t.TempDir()
	return Params{
		Region: argo.Region{LatMin: -5, LatMax: 5, LonMin: 60, LonMax: 80},
		Window: argo.TimeWindow{
			Start: time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2023, 3, 31, 0, 0, 0, 0, time.UTC),
		},
		DownloadDir: filepath.Join(dir, "downloads"),
		CSVPath:     filepath.Join(dir, "argo_processed.csv"),
		Vars:        []string{"TEMP", "PSAL"},
	}
}

func stubFlatten(path string, _ []string) []argo.Record {
	temp := 28.4
	return []argo.Record{{
		FloatID:     "13857",
		Date:        time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC),
		Latitude:    0,
		Longitude:   70,
		Depth:       5.1,
		Temperature: &temp,
	}}
}

func TestRunEndToEnd(t *testing.T) {
	p := params(t)
	dl := &stubDownloader{}
	sink := &fakeSink{}

	err := Run(context.Background(), stubIndex{data: []byte(testIndex)}, dl, stubFlatten, sink, p)
	require.NoError(t, err)

	// only the in-box entry was retrieved; the lat=10 entry is excluded
	assert.Equal(t, []string{"aoml/13857/profiles/R13857_001.nc"}, dl.calls)

	// schema before truncate before load
	assert.Equal(t, []string{"schema", "truncate", "load"}, sink.ops)

	// loaded row count equals the CSV line count minus the header
	assert.Equal(t, int64(1), sink.loaded)
	assert.FileExists(t, p.CSVPath)
}

// tableSink models the table contents across runs: Truncate clears,
// BulkLoad appends the CSV's data rows.
type tableSink struct {
	rows []string
}

func (s *tableSink) EnsureSchema(context.Context) error { return nil }

func (s *tableSink) Truncate(context.Context) error {
	s.rows = nil
	return nil
}

func (s *tableSink) BulkLoad(_ context.Context, csvPath string) (int64, error) {
	data, err := os.ReadFile(csvPath)
	if err != nil {
		return 0, err
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	s.rows = append(s.rows, lines[1:]...)
	return int64(len(lines) - 1), nil
}

func TestRunTwiceKeepsOnlySecondRunRows(t *testing.T) {
	p := params(t)
	sink := &tableSink{}

	flattenAs := func(floatID string, depths ...float64) Flattener {
		return func(string, []string) []argo.Record {
			temp := 28.4
			records := make([]argo.Record, 0, len(depths))
			for _, d := range depths {
				records = append(records, argo.Record{
					FloatID:     floatID,
					Date:        time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC),
					Latitude:    0,
					Longitude:   70,
					Depth:       d,
					Temperature: &temp,
				})
			}
			return records
		}
	}

	err := Run(context.Background(), stubIndex{data: []byte(testIndex)}, &stubDownloader{}, flattenAs("13857", 5.1), sink, p)
	require.NoError(t, err)
	firstRows := append([]string(nil), sink.rows...)
	require.Len(t, firstRows, 1)

	err = Run(context.Background(), stubIndex{data: []byte(testIndex)}, &stubDownloader{}, flattenAs("13858", 5.1, 100.4), sink, p)
	require.NoError(t, err)

	// exactly the second run's rows, not a union of both runs
	require.Len(t, sink.rows, 2)
	for _, row := range sink.rows {
		assert.Contains(t, row, "13858")
	}
	assert.NotContains(t, sink.rows, firstRows[0])
}

func TestRunFatalOnIndexError(t *testing.T) {
	p := params(t)
	err := Run(context.Background(), stubIndex{err: errors.New("550 not found")}, &stubDownloader{}, stubFlatten, &fakeSink{}, p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch index")
}

func TestRunFatalOnParseError(t *testing.T) {
	p := params(t)
	err := Run(context.Background(), stubIndex{data: []byte("file,latitude\n")}, &stubDownloader{}, stubFlatten, &fakeSink{}, p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse index")
}

func TestRunFatalWhenNothingFlattened(t *testing.T) {
	p := params(t)
	empty := func(string, []string) []argo.Record { return nil }
	sink := &fakeSink{}

	err := Run(context.Background(), stubIndex{data: []byte(testIndex)}, &stubDownloader{}, empty, sink, p)
	require.ErrorIs(t, err, ErrNoRecords)

	// the store is never touched
	assert.Empty(t, sink.ops)
}

func TestRunDryRunSkipsStore(t *testing.T) {
	p := params(t)
	p.DryRun = true

	err := Run(context.Background(), stubIndex{data: []byte(testIndex)}, &stubDownloader{}, stubFlatten, nil, p)
	require.NoError(t, err)
	assert.FileExists(t, p.CSVPath)
}

func TestRunSurfacesLoadError(t *testing.T) {
	p := params(t)
	sink := &fakeSink{loadErr: errors.New("connection refused")}

	err := Run(context.Background(), stubIndex{data: []byte(testIndex)}, &stubDownloader{}, stubFlatten, sink, p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}
