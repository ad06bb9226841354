/*
Copyright © 2018 the clearsky authors.
This file is part of clearsky.

clearsky is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

clearsky is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with clearsky.  If not, see <http://www.gnu.org/licenses/>.
*/

package merra2

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// fileInfo holds the coordinates of a MERRA2 file.
type fileInfo struct {
	path     string
	times    []time.Time
	lat, lon []float64
	vars     map[string]bool
}

// openNCF opens a NetCDF file for reading. The caller is responsible
// for closing the returned *os.File.
func openNCF(path string) (*os.File, *cdf.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	ff, err := cdf.Open(f)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("merra2: opening %s: %v", path, err)
	}
	return f, ff, nil
}

// readFileInfo reads the time, latitude and longitude coordinates of
// the given file. If static is true, the file is not required to
// have a time coordinate.
func readFileInfo(path string, static bool) (*fileInfo, error) {
	f, ff, err := openNCF(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi := &fileInfo{path: path, vars: make(map[string]bool)}
	for _, v := range ff.Header.Variables() {
		fi.vars[v] = true
	}
	if fi.lat, err = readCoordinate(f, ff, "lat"); err != nil {
		return nil, fmt.Errorf("merra2: %s: %v", path, err)
	}
	if fi.lon, err = readCoordinate(f, ff, "lon"); err != nil {
		return nil, fmt.Errorf("merra2: %s: %v", path, err)
	}
	if !sort.Float64sAreSorted(fi.lat) || !sort.Float64sAreSorted(fi.lon) {
		return nil, fmt.Errorf("merra2: %s: latitude and longitude must be increasing", path)
	}
	if static && !fi.vars["time"] {
		return fi, nil
	}
	if fi.times, err = readTimes(f, ff); err != nil {
		return nil, fmt.Errorf("merra2: %s: %v", path, err)
	}
	return fi, nil
}

// lengths returns the dimension lengths of variable name,
// including the current number of records for record variables.
func lengths(f *os.File, ff *cdf.File, name string) ([]int, error) {
	dims := ff.Header.Lengths(name)
	if len(dims) == 0 || !ff.Header.IsRecordVariable(name) {
		return dims, nil
	}
	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	o := make([]int, len(dims))
	copy(o, dims)
	o[0] = int(ff.Header.NumRecs(fi.Size()))
	return o, nil
}

// readCoordinate reads a one-dimensional variable.
func readCoordinate(f *os.File, ff *cdf.File, name string) ([]float64, error) {
	dims, err := lengths(f, ff, name)
	if err != nil {
		return nil, err
	}
	if len(dims) != 1 {
		return nil, fmt.Errorf("coordinate variable %s is missing or is not one-dimensional", name)
	}
	r := ff.Reader(name, []int{0}, []int{dims[0]})
	buf := r.Zero(dims[0])
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("reading %s: %v", name, err)
	}
	return toFloat64s(buf)
}

func toFloat64s(buf interface{}) ([]float64, error) {
	switch b := buf.(type) {
	case []float64:
		return b, nil
	case []float32:
		o := make([]float64, len(b))
		for i, v := range b {
			o[i] = float64(v)
		}
		return o, nil
	case []int32:
		o := make([]float64, len(b))
		for i, v := range b {
			o[i] = float64(v)
		}
		return o, nil
	case []int16:
		o := make([]float64, len(b))
		for i, v := range b {
			o[i] = float64(v)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("unsupported data type %T", buf)
	}
}

// readTimes reads the time coordinate and converts it to
// absolute times using its units attribute.
func readTimes(f *os.File, ff *cdf.File) ([]time.Time, error) {
	v, err := readCoordinate(f, ff, "time")
	if err != nil {
		return nil, err
	}
	units, ok := ff.Header.GetAttribute("time", "units").(string)
	if !ok {
		return nil, fmt.Errorf("time variable is missing units attribute")
	}
	step, ref, err := parseTimeUnits(units)
	if err != nil {
		return nil, err
	}
	o := make([]time.Time, len(v))
	for i, val := range v {
		o[i] = ref.Add(time.Duration(val * float64(step)))
	}
	return o, nil
}

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.0",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseTimeUnits parses CF time units in the format
// "<unit> since <reference time>".
func parseTimeUnits(units string) (time.Duration, time.Time, error) {
	parts := strings.SplitN(strings.TrimSpace(units), " since ", 2)
	if len(parts) != 2 {
		return 0, time.Time{}, fmt.Errorf("invalid time units '%s'", units)
	}
	var step time.Duration
	switch strings.ToLower(parts[0]) {
	case "seconds", "second", "s":
		step = time.Second
	case "minutes", "minute", "min":
		step = time.Minute
	case "hours", "hour", "h":
		step = time.Hour
	case "days", "day", "d":
		step = 24 * time.Hour
	default:
		return 0, time.Time{}, fmt.Errorf("invalid time unit '%s' in '%s'", parts[0], units)
	}
	refStr := strings.TrimSuffix(strings.TrimSpace(parts[1]), " UTC")
	for _, layout := range timeLayouts {
		if ref, err := time.Parse(layout, refStr); err == nil {
			return step, ref, nil
		}
	}
	return 0, time.Time{}, fmt.Errorf("invalid reference time '%s' in time units '%s'", refStr, units)
}

// readSlab reads a single (lat, lon) slab of variable varName.
// If the variable has a time dimension, record rec is read.
func readSlab(path, varName string, rec int) (*sparse.DenseArray, error) {
	f, ff, err := openNCF(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dims, err := lengths(f, ff, varName)
	if err != nil {
		return nil, fmt.Errorf("merra2: reading %s: %v", path, err)
	}
	if len(dims) == 0 {
		return nil, fmt.Errorf("merra2: variable %s not in file %s", varName, path)
	}
	dimNames := ff.Header.Dimensions(varName)
	start, end := make([]int, len(dims)), make([]int, len(dims))
	if dimNames[0] == "time" {
		if rec >= dims[0] {
			return nil, fmt.Errorf("merra2: record %d of variable %s is beyond the end of file %s (%d records)",
				rec, varName, path, dims[0])
		}
		start[0], end[0] = rec, rec+1
		dims = dims[1:]
	}
	if len(dims) != 2 {
		return nil, fmt.Errorf("merra2: variable %s in %s should have dimensions (time, lat, lon)", varName, path)
	}
	if dimNames[0] != "time" {
		start, end = nil, nil
	}
	r := ff.Reader(varName, start, end)
	buf := r.Zero(dims[0] * dims[1])
	if _, err = r.Read(buf); err != nil {
		return nil, fmt.Errorf("merra2: reading variable %s from %s: %v", varName, path, err)
	}
	vals, err := toFloat64s(buf)
	if err != nil {
		return nil, fmt.Errorf("merra2: variable %s in %s: %v", varName, path, err)
	}
	data := sparse.ZerosDense(dims...)
	copy(data.Elements, vals)
	return data, nil
}

// slabKey returns the cache key for a slab.
func slabKey(path, varName string, rec int) string {
	return path + "|" + varName + "|" + strconv.Itoa(rec)
}
