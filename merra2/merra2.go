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

// Package merra2 extracts MERRA2 reanalysis data at station locations.
//
// Files must be in NetCDF classic format with variables dimensioned
// (time, lat, lon) and coordinate variables time, lat, and lon. Files
// distributed in NetCDF4 format can be converted, for example with
// `nccopy -k classic`.
package merra2

import (
	"context"
	"fmt"
	"io/ioutil"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/ctessum/requestcache"
	"github.com/ctessum/sparse"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/clearsky"
)

// DefaultCacheSize is the default number of (lat, lon) record
// slabs held in memory.
const DefaultCacheSize = 200

// record identifies a time record in a file.
type record struct {
	t    time.Time
	file *fileInfo
	i    int
}

// Reader is a clearsky.DataProvider for MERRA2 files.
type Reader struct {
	files     []*fileInfo
	constFile *fileInfo
	cache     *requestcache.Cache

	// Log receives information about files that are read.
	Log logrus.FieldLogger
}

// NewReader returns a reader for the given time-varying files and the
// time-invariant constFile (MERRA2 collection const_2d_asm_Nx). constFile
// may be empty if static variables are not needed. cacheSize is the
// number of record slabs to hold in memory.
func NewReader(files []string, constFile string, cacheSize int, log logrus.FieldLogger) (*Reader, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("merra2: no data files specified")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	r := &Reader{Log: log}
	for _, f := range files {
		fi, err := readFileInfo(f, false)
		if err != nil {
			return nil, err
		}
		r.Log.WithFields(logrus.Fields{
			"file":    f,
			"records": len(fi.times),
		}).Debug("merra2: found data file")
		r.files = append(r.files, fi)
	}
	if constFile != "" {
		fi, err := readFileInfo(constFile, true)
		if err != nil {
			return nil, err
		}
		r.constFile = fi
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	r.cache = requestcache.NewCache(func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(slabRequest)
		return readSlab(req.path, req.varName, req.rec)
	}, runtime.GOMAXPROCS(-1), requestcache.Deduplicate(), requestcache.Memory(cacheSize))
	return r, nil
}

// ScanDir finds MERRA2 files in dir. Files with names containing
// "merra2" (in any case) are returned as data files, except for the one
// containing "const_2d_asm", which is returned as constFile. Files with
// names containing "index" are ignored.
func ScanDir(dir string) (files []string, constFile string, err error) {
	entries, err := ioutil.ReadDir(dir)
	if err != nil {
		return nil, "", fmt.Errorf("merra2: scanning data directory: %v", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := strings.ToLower(e.Name())
		switch {
		case strings.Contains(name, "index"):
		case strings.Contains(name, "const_2d_asm"):
			if constFile != "" {
				return nil, "", fmt.Errorf("merra2: more than one const_2d_asm file in %s", dir)
			}
			constFile = filepath.Join(dir, e.Name())
		case strings.Contains(name, "merra2"):
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		return nil, "", fmt.Errorf("merra2: no MERRA2 files found in %s", dir)
	}
	return files, constFile, nil
}

// ExpandTemplate returns the files matching fileTemplate, where
// "[DATE]" is replaced by each date from start to end (inclusive) in
// steps of fileDelta, formatted using dateFormat.
func ExpandTemplate(fileTemplate, dateFormat string, start, end time.Time, fileDelta time.Duration) ([]string, error) {
	if !strings.Contains(fileTemplate, "[DATE]") {
		return []string{fileTemplate}, nil
	}
	if fileDelta <= 0 {
		return nil, fmt.Errorf("merra2: file interval must be > 0 but is %v", fileDelta)
	}
	var o []string
	seen := make(map[string]bool)
	for date := start; !date.After(end); date = date.Add(fileDelta) {
		f := strings.Replace(fileTemplate, "[DATE]", date.Format(dateFormat), -1)
		if !seen[f] {
			o = append(o, f)
			seen[f] = true
		}
	}
	return o, nil
}

type slabRequest struct {
	path, varName string
	rec           int
}

// slab returns record rec of variable varName in file f.
// The returned array should not be modified.
func (r *Reader) slab(ctx context.Context, f *fileInfo, varName string, rec int) (*sparse.DenseArray, error) {
	req := r.cache.NewRequest(ctx, slabRequest{path: f.path, varName: varName, rec: rec}, slabKey(f.path, varName, rec))
	result, err := req.Result()
	if err != nil {
		return nil, err
	}
	return result.(*sparse.DenseArray), nil
}

// records returns the time records of variable varName
// across all files, sorted by time.
func (r *Reader) records(varName string) []record {
	var o []record
	for _, f := range r.files {
		if !f.vars[varName] {
			continue
		}
		for i, t := range f.times {
			o = append(o, record{t: t, file: f, i: i})
		}
	}
	sort.SliceStable(o, func(i, j int) bool { return o[i].t.Before(o[j].t) })
	return o
}

// locations returns the horizontal interpolation weights for each station.
func locations(f *fileInfo, s *clearsky.Stations, interpolate bool) []location {
	o := make([]location, s.Len())
	for i := range o {
		o[i] = location{
			lat: axisWeight(f.lat, s.Lat[i]),
			lon: lonWeight(f.lon, s.Lon[i]),
		}
		if !interpolate {
			o[i].lat, o[i].lon = o[i].lat.nearest(), o[i].lon.nearest()
		}
	}
	return o
}

// Extract implements clearsky.DataProvider.
func (r *Reader) Extract(ctx context.Context, s *clearsky.Stations, variables []string, times []time.Time, interpolate bool) ([]*sparse.DenseArray, error) {
	o := make([]*sparse.DenseArray, len(variables))
	errChan := make(chan error, len(variables))
	for i, v := range variables {
		go func(i int, v string) {
			var err error
			o[i], err = r.extract(ctx, s, v, times, interpolate)
			errChan <- err
		}(i, v)
	}
	for range variables {
		if err := <-errChan; err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (r *Reader) extract(ctx context.Context, s *clearsky.Stations, varName string, times []time.Time, interpolate bool) (*sparse.DenseArray, error) {
	recs := r.records(varName)
	if len(recs) == 0 {
		return nil, fmt.Errorf("merra2: variable %s is not in any of the data files", varName)
	}
	recTimes := make([]time.Time, len(recs))
	for i, rec := range recs {
		recTimes[i] = rec.t
	}
	locs := make(map[*fileInfo][]location)
	n := s.Len()
	o := sparse.ZerosDense(len(times), n)
	for it, t := range times {
		tw := timeWeight(recTimes, t)
		if !interpolate {
			tw = tw.nearest()
		}
		var v [2][]float64
		for j, ri := range []int{tw.i0, tw.i1} {
			rec := recs[ri]
			if j == 1 && tw.i1 == tw.i0 {
				v[1] = v[0]
				break
			}
			data, err := r.slab(ctx, rec.file, varName, rec.i)
			if err != nil {
				return nil, err
			}
			l, ok := locs[rec.file]
			if !ok {
				l = locations(rec.file, s, interpolate)
				locs[rec.file] = l
			}
			v[j] = make([]float64, n)
			for i := range l {
				v[j][i] = l[i].value(data)
			}
		}
		for i := 0; i < n; i++ {
			o.Elements[it*n+i] = lerp(v[0][i], v[1][i], tw.w)
		}
	}
	r.Log.WithFields(logrus.Fields{
		"variable": varName,
		"times":    len(times),
		"stations": n,
	}).Info("merra2: extracted variable")
	return o, nil
}

// ExtractStatic implements clearsky.DataProvider. Values are
// taken from the nearest grid cell of the first record of the
// const file.
func (r *Reader) ExtractStatic(ctx context.Context, s *clearsky.Stations, variable string) ([]float64, error) {
	if r.constFile == nil {
		return nil, fmt.Errorf("merra2: no const file specified for static variable %s", variable)
	}
	if !r.constFile.vars[variable] {
		return nil, fmt.Errorf("merra2: variable %s not in const file %s", variable, r.constFile.path)
	}
	data, err := r.slab(ctx, r.constFile, variable, 0)
	if err != nil {
		return nil, err
	}
	o := make([]float64, s.Len())
	for i, l := range locations(r.constFile, s, false) {
		o[i] = l.value(data)
	}
	return o, nil
}

var _ clearsky.DataProvider = (*Reader)(nil)
