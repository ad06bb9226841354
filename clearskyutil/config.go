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

package clearskyutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/clearsky"
	"github.com/spatialmodel/clearsky/merra2"
	"github.com/spf13/cast"
)

// checkOutputVars removes end lines and expands environment
// variables in the output variables.
func checkOutputVars(vars map[string]string) (map[string]string, error) {
	if len(vars) == 0 {
		return nil, fmt.Errorf("there are no variables specified for output. Please fill in " +
			"the OutputVariables configuration and try again")
	}
	o := make(map[string]string, len(vars))
	for k, v := range vars {
		v = strings.Replace(v, "\r\n", " ", -1)
		v = strings.Replace(v, "\n", " ", -1)
		o[os.ExpandEnv(k)] = os.ExpandEnv(v)
	}
	return o, nil
}

// expandStringSlice expands the environment variables in a slice of strings.
func expandStringSlice(s []string) []string {
	for i := 0; i < len(s); i++ {
		s[i] = os.ExpandEnv(s[i])
	}
	return s
}

// checkOutputFile makes sure that the output file is specified and its
// directory exists, and expand any environment variables.
func checkOutputFile(ctx context.Context, f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`you need to specify an output file configuration variable (for example: OutputFile="output.nc")`)
	}
	f = os.ExpandEnv(f)
	if IsBlob(f) {
		if _, _, err := openBlob(ctx, f); err != nil {
			return f, fmt.Errorf("clearsky: checking OutputFile location: %v", err)
		}
		return f, nil
	}
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("clearsky: the OutputFile directory doesn't exist: %v", err)
	}
	return f, nil
}

// checkLogFile fills in a default value for the log file path if one isn't
// specified.
func checkLogFile(logFile, outputFile string) string {
	logFile = os.ExpandEnv(logFile)
	if logFile == "" {
		logFile = strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + ".log"
	}
	return logFile
}

// GetStringMapString returns a map[string]string from a viper configuration,
// accounting for the fact that it might be a json object if it was set
// from a command line argument.
func GetStringMapString(varName string, cfg *viper.Viper) (map[string]string, error) {
	i := cfg.Get(varName)
	switch v := i.(type) {
	case map[string]string:
		return v, nil
	case map[string]interface{}:
		return cast.ToStringMapStringE(v)
	case string:
		o := make(map[string]string)
		if v == "" {
			return o, nil
		}
		d := json.NewDecoder(bytes.NewBufferString(v))
		if err := d.Decode(&o); err != nil {
			return nil, fmt.Errorf("clearsky: parsing configuration variable %s: %v", varName, err)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("clearsky: invalid type for configuration variable %s: %#v", varName, i)
	}
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseTime parses a time in one of timeLayouts. Times without
// a time zone are assumed to be in UTC.
func parseTime(varName, s string) (time.Time, error) {
	s = strings.TrimSpace(os.ExpandEnv(s))
	if s == "" {
		return time.Time{}, fmt.Errorf("clearsky: configuration variable %s must be specified", varName)
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("clearsky: invalid time '%s' for configuration variable %s", s, varName)
}

// timeConfig returns the calculation times specified by cfg.
func timeConfig(cfg *viper.Viper) ([]time.Time, error) {
	start, err := parseTime("StartTime", cfg.GetString("StartTime"))
	if err != nil {
		return nil, err
	}
	end, err := parseTime("EndTime", cfg.GetString("EndTime"))
	if err != nil {
		return nil, err
	}
	step, err := cast.ToDurationE(cfg.Get("TimeStep"))
	if err != nil {
		return nil, fmt.Errorf("clearsky: invalid TimeStep: %v", err)
	}
	return clearsky.TimeSteps(start, end, step)
}

// parseStations parses stations from a JSON list of
// [latitude, longitude, elevation] values.
func parseStations(s string) (*clearsky.Stations, error) {
	var v [][]float64
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, fmt.Errorf("clearsky: parsing Stations: %v", err)
	}
	lat, lon, elev := make([]float64, len(v)), make([]float64, len(v)), make([]float64, len(v))
	for i, st := range v {
		if len(st) != 2 && len(st) != 3 {
			return nil, fmt.Errorf("clearsky: parsing Stations: station %d has %d values; it should have 2 or 3", i, len(st))
		}
		lat[i], lon[i] = st[0], st[1]
		if len(st) == 3 {
			elev[i] = st[2]
		}
	}
	return clearsky.NewStations(lat, lon, elev)
}

// stationConfig returns the stations specified by cfg, downloading the
// station file if necessary.
func stationConfig(ctx context.Context, cfg *viper.Viper, log logrus.FieldLogger) (*clearsky.Stations, error) {
	if f := os.ExpandEnv(cfg.GetString("StationFile")); f != "" {
		path, err := maybeDownload(ctx, f, log)
		if err != nil {
			return nil, err
		}
		return readStationShapefile(path, cfg.GetString("StationElevationColumn"))
	}
	s := os.ExpandEnv(cfg.GetString("Stations"))
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("clearsky: either Stations or StationFile must be specified")
	}
	return parseStations(s)
}

// merra2Config returns the local paths of the MERRA2 data files and
// const file specified by cfg, downloading them if necessary.
func merra2Config(ctx context.Context, cfg *viper.Viper, start, end time.Time, log logrus.FieldLogger) (files []string, constFile string, err error) {
	templates := expandStringSlice(cfg.GetStringSlice("MERRA2.Files"))
	if len(templates) == 0 {
		dir := os.ExpandEnv(cfg.GetString("MERRA2.Dir"))
		if dir == "" {
			return nil, "", fmt.Errorf("clearsky: either MERRA2.Files or MERRA2.Dir must be specified")
		}
		return merra2.ScanDir(dir)
	}
	for _, t := range templates {
		expanded, err := merra2.ExpandTemplate(t, cfg.GetString("MERRA2.DateFormat"), start.Truncate(24*time.Hour), end, 24*time.Hour)
		if err != nil {
			return nil, "", err
		}
		for _, f := range expanded {
			path, err := maybeDownload(ctx, f, log)
			if err != nil {
				return nil, "", err
			}
			files = append(files, path)
		}
	}
	if constFile = os.ExpandEnv(cfg.GetString("MERRA2.ConstFile")); constFile == "" {
		return nil, "", fmt.Errorf("clearsky: MERRA2.ConstFile must be specified along with MERRA2.Files")
	}
	if constFile, err = maybeDownload(ctx, constFile, log); err != nil {
		return nil, "", err
	}
	return files, constFile, nil
}
