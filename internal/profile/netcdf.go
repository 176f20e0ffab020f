package profile

import (
	"fmt"
	"math"
	"strings"

	"github.com/fhs/go-netcdf/netcdf"
)

// Dataset holds the arrays pulled out of one profile file. 2-D arrays
// are stored row-major, indexed by profile*NLevels + level.
type Dataset struct {
	FloatID   string
	Juld      []float64 // days since 1950-01-01, one per profile
	Latitude  []float64 // one per profile
	Longitude []float64 // one per profile
	Pres      []float64 // depth/pressure per (profile, level)
	NProf     int
	NLevels   int
	Vars      map[string]VarData
}

// VarData is one measured variable plus its per-measurement QC flags.
type VarData struct {
	Values []float64
	QC     []byte
}

// ReadFile opens a NetCDF profile file and extracts the float
// identifier, the per-profile position and time arrays, the pressure
// grid and each requested variable with its QC companion. A requested
// variable absent from the file is simply not extracted.
func ReadFile(path string, vars []string) (*Dataset, error) {
	if len(vars) == 0 {
		vars = DefaultVars
	}

	nc, err := netcdf.OpenFile(path, netcdf.NOWRITE)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer nc.Close()

	floatID, err := readFloatID(nc)
	if err != nil {
		return nil, err
	}
	juld, err := readFloats(nc, "JULD")
	if err != nil {
		return nil, err
	}
	lat, err := readFloats(nc, "LATITUDE")
	if err != nil {
		return nil, err
	}
	lon, err := readFloats(nc, "LONGITUDE")
	if err != nil {
		return nil, err
	}
	pres, nprof, nlevels, err := readGrid(nc, "PRES")
	if err != nil {
		return nil, err
	}

	ds := &Dataset{
		FloatID:   floatID,
		Juld:      juld,
		Latitude:  lat,
		Longitude: lon,
		Pres:      pres,
		NProf:     nprof,
		NLevels:   nlevels,
		Vars:      make(map[string]VarData, len(vars)),
	}

	for _, name := range vars {
		values, _, _, err := readGrid(nc, name)
		if err != nil {
			continue
		}
		qc, err := readChars(nc, name+"_QC")
		if err != nil {
			continue
		}
		ds.Vars[name] = VarData{Values: values, QC: qc}
	}
	return ds, nil
}

// readFloatID decodes PLATFORM_NUMBER, a (N_PROF, STRING*) char array;
// the identifier of the first profile names the whole file.
func readFloatID(nc netcdf.Dataset) (string, error) {
	vr, err := nc.Var("PLATFORM_NUMBER")
	if err != nil {
		return "", fmt.Errorf("variable PLATFORM_NUMBER: %w", err)
	}
	dims, err := vr.LenDims()
	if err != nil {
		return "", err
	}
	n, err := vr.Len()
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if err := vr.ReadBytes(buf); err != nil {
		return "", fmt.Errorf("read PLATFORM_NUMBER: %w", err)
	}

	width := len(buf)
	if len(dims) > 0 {
		if w := int(dims[len(dims)-1]); w < width {
			width = w
		}
	}
	id := strings.TrimFunc(string(buf[:width]), func(r rune) bool {
		return r == ' ' || r == 0
	})
	return id, nil
}

// readFloats reads a 1-D numeric variable as float64, masking filled
// entries to NaN.
func readFloats(nc netcdf.Dataset, name string) ([]float64, error) {
	vr, err := nc.Var(name)
	if err != nil {
		return nil, fmt.Errorf("variable %s: %w", name, err)
	}
	n, err := vr.Len()
	if err != nil {
		return nil, err
	}
	data := make([]float64, n)
	if err := vr.ReadFloat64s(data); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	maskFillValue(vr, data)
	return data, nil
}

// readGrid reads a 2-D (N_PROF, N_LEVELS) numeric variable as float64
// plus its dimension lengths, masking filled entries to NaN.
func readGrid(nc netcdf.Dataset, name string) ([]float64, int, int, error) {
	vr, err := nc.Var(name)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("variable %s: %w", name, err)
	}
	dims, err := vr.LenDims()
	if err != nil {
		return nil, 0, 0, err
	}
	if len(dims) != 2 {
		return nil, 0, 0, fmt.Errorf("variable %s: expected 2 dimensions, got %d", name, len(dims))
	}
	data := make([]float64, dims[0]*dims[1])
	if err := vr.ReadFloat64s(data); err != nil {
		return nil, 0, 0, fmt.Errorf("read %s: %w", name, err)
	}
	maskFillValue(vr, data)
	return data, int(dims[0]), int(dims[1]), nil
}

// readChars reads a char variable (QC flag arrays) as raw bytes.
func readChars(nc netcdf.Dataset, name string) ([]byte, error) {
	vr, err := nc.Var(name)
	if err != nil {
		return nil, fmt.Errorf("variable %s: %w", name, err)
	}
	n, err := vr.Len()
	if err != nil {
		return nil, err
	}
	data := make([]byte, n)
	if err := vr.ReadBytes(data); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// maskFillValue replaces entries equal to the variable's _FillValue
// attribute with NaN. Variables without the attribute pass through.
func maskFillValue(vr netcdf.Var, data []float64) {
	attr := vr.Attr("_FillValue")
	if n, err := attr.Len(); err != nil || n != 1 {
		return
	}
	fill := make([]float64, 1)
	if err := attr.ReadFloat64s(fill); err != nil {
		return
	}
	for i, v := range data {
		if v == fill[0] {
			data[i] = math.NaN()
		}
	}
}
