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
	"context"
	"errors"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/clearsky"
)

func TestCheckOutputVars(t *testing.T) {
	os.Setenv("CLEARSKY_TEST_VAR", "DNI")
	defer os.Unsetenv("CLEARSKY_TEST_VAR")
	vars, err := checkOutputVars(map[string]string{
		"GHI":  "GHI",
		"Beam": "${CLEARSKY_TEST_VAR} *\ncosd(Zenith)",
	})
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{"GHI": "GHI", "Beam": "DNI * cosd(Zenith)"}
	if !reflect.DeepEqual(vars, want) {
		t.Errorf("have %v, want %v", vars, want)
	}
	if _, err := checkOutputVars(nil); err == nil {
		t.Errorf("no output variables should cause an error")
	}
}

func TestCheckLogFile(t *testing.T) {
	if f := checkLogFile("", "/tmp/out.nc"); f != "/tmp/out.log" {
		t.Errorf("default log file: %s", f)
	}
	if f := checkLogFile("run.log", "/tmp/out.nc"); f != "run.log" {
		t.Errorf("specified log file: %s", f)
	}
}

func TestCheckOutputFile(t *testing.T) {
	if _, err := checkOutputFile(context.Background(), ""); err == nil {
		t.Errorf("an empty output file should cause an error")
	}
	if _, err := checkOutputFile(context.Background(), "/not/a/real/directory/out.nc"); err == nil {
		t.Errorf("a missing output directory should cause an error")
	}
	if f, err := checkOutputFile(context.Background(), os.TempDir()+"/out.nc"); err != nil || f != os.TempDir()+"/out.nc" {
		t.Errorf("have %s, %v", f, err)
	}
}

func TestGetStringMapString(t *testing.T) {
	want := map[string]string{"GHI": "GHI", "Frac": "DHI / GHI"}
	cfg := viper.New()
	cfg.Set("a", want)
	cfg.Set("b", map[string]interface{}{"ghi": "GHI", "frac": "DHI / GHI"})
	cfg.Set("c", `{"GHI": "GHI", "Frac": "DHI / GHI"}`)
	cfg.Set("d", `{"GHI": `)
	cfg.Set("e", 5)
	for _, v := range []string{"a", "b", "c"} {
		t.Run(v, func(t *testing.T) {
			have, err := GetStringMapString(v, cfg)
			if err != nil {
				t.Fatal(err)
			}
			want := want
			if v == "b" {
				want = map[string]string{"ghi": "GHI", "frac": "DHI / GHI"}
			}
			if !reflect.DeepEqual(have, want) {
				t.Errorf("have %v, want %v", have, want)
			}
		})
	}
	for _, v := range []string{"d", "e"} {
		t.Run(v, func(t *testing.T) {
			if _, err := GetStringMapString(v, cfg); err == nil {
				t.Errorf("should have an error")
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	vars, err := GetStringMapString("OutputVariables", Cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(vars) != 0 {
		t.Errorf("default output variables: %v", vars)
	}
	if s := Cfg.GetString("TimeStep"); s != "1h" {
		t.Errorf("default time step: %s", s)
	}
	if a := Cfg.GetFloat64("Albedo"); a != -1 {
		t.Errorf("default albedo: %g", a)
	}
	if c := Cfg.GetInt("Components"); c != 3 {
		t.Errorf("default components: %d", c)
	}
	if !Cfg.GetBool("Interpolate") {
		t.Errorf("interpolation should be on by default")
	}
}

func TestParseTime(t *testing.T) {
	want := time.Date(2018, time.March, 20, 12, 30, 0, 0, time.UTC)
	for _, s := range []string{
		"2018-03-20T12:30:00Z",
		"2018-03-20T05:30:00-07:00",
		"2018-03-20 12:30:00",
		"2018-03-20T12:30",
		" 2018-03-20 12:30 ",
	} {
		have, err := parseTime("StartTime", s)
		if err != nil {
			t.Errorf("%s: %v", s, err)
			continue
		}
		if !have.Equal(want) {
			t.Errorf("%s: have %v, want %v", s, have, want)
		}
	}
	if have, err := parseTime("StartTime", "2018-03-20"); err != nil || !have.Equal(time.Date(2018, time.March, 20, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date only: have %v, %v", have, err)
	}
	for _, s := range []string{"", "yesterday", "20/03/2018"} {
		if _, err := parseTime("StartTime", s); err == nil {
			t.Errorf("'%s' should cause an error", s)
		}
	}
}

func TestTimeConfig(t *testing.T) {
	cfg := viper.New()
	cfg.Set("StartTime", "2018-03-20 00:00")
	cfg.Set("EndTime", "2018-03-20 02:00")
	cfg.Set("TimeStep", "30m")
	times, err := timeConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(times) != 5 || !times[4].Equal(time.Date(2018, time.March, 20, 2, 0, 0, 0, time.UTC)) {
		t.Errorf("times: %v", times)
	}
	cfg.Set("TimeStep", "often")
	if _, err := timeConfig(cfg); err == nil {
		t.Errorf("invalid time step should cause an error")
	}
	cfg.Set("TimeStep", "1h")
	cfg.Set("EndTime", "2018-03-19 00:00")
	if _, err := timeConfig(cfg); err == nil {
		t.Errorf("end before start should cause an error")
	}
}

func TestParseStations(t *testing.T) {
	s, err := parseStations("[[40.0, -105.25, 1655], [-33.9, 18.4]]")
	if err != nil {
		t.Fatal(err)
	}
	want := &clearsky.Stations{
		Lat:  []float64{40, -33.9},
		Lon:  []float64{-105.25, 18.4},
		Elev: []float64{1655, 0},
	}
	if !reflect.DeepEqual(s, want) {
		t.Errorf("have %+v, want %+v", s, want)
	}
	for _, bad := range []string{"[[40]]", "[[40, 1, 2, 3]]", "40, 100", "[[95, 0]]"} {
		if _, err := parseStations(bad); err == nil {
			t.Errorf("'%s' should cause an error", bad)
		}
	}
	if _, err := parseStations("[[95, 0]]"); !errors.Is(err, clearsky.ErrStation) {
		t.Errorf("have error %v, want %v", err, clearsky.ErrStation)
	}
}

func TestStationConfig(t *testing.T) {
	cfg := viper.New()
	if _, err := stationConfig(context.Background(), cfg, testLogger()); err == nil {
		t.Errorf("no stations should cause an error")
	}
	cfg.Set("Stations", "[[10, 20, 30]]")
	s, err := stationConfig(context.Background(), cfg, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 1 || s.Elev[0] != 30 {
		t.Errorf("stations: %+v", s)
	}
}
