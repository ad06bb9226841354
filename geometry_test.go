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

package clearsky

import (
	"math"
	"testing"
	"time"
)

func TestMeeusSolarZenith(t *testing.T) {
	s, err := NewStations([]float64{0, 0, 23.44, -23.44, 40}, []float64{0, 180, 0, 0, -105}, nil)
	if err != nil {
		t.Fatal(err)
	}
	equinox := []time.Time{time.Date(2020, time.March, 20, 12, 0, 0, 0, time.UTC)}
	z, err := Meeus{}.SolarZenith(s, equinox)
	if err != nil {
		t.Fatal(err)
	}
	if z.Shape[0] != 1 || z.Shape[1] != s.Len() {
		t.Fatalf("shape %v", z.Shape)
	}
	if v := z.Get(0, 0); v > 3 {
		t.Errorf("equatorial noon zenith at equinox: have %g, want < 3", v)
	}
	if v := z.Get(0, 1); v < 177 {
		t.Errorf("equatorial midnight zenith at equinox: have %g, want > 177", v)
	}
	if v, want := z.Get(0, 2), 23.44; math.Abs(v-want) > 3 {
		t.Errorf("tropic of cancer noon zenith at equinox: have %g, want about %g", v, want)
	}
	if v, want := z.Get(0, 3), 23.44; math.Abs(v-want) > 3 {
		t.Errorf("tropic of capricorn noon zenith at equinox: have %g, want about %g", v, want)
	}

	solstice := []time.Time{time.Date(2019, time.June, 21, 12, 0, 0, 0, time.UTC)}
	z, err = Meeus{}.SolarZenith(s, solstice)
	if err != nil {
		t.Fatal(err)
	}
	if v := z.Get(0, 2); v > 3 {
		t.Errorf("tropic of cancer noon zenith at solstice: have %g, want < 3", v)
	}
	if v, want := z.Get(0, 3), 46.88; math.Abs(v-want) > 3 {
		t.Errorf("tropic of capricorn noon zenith at solstice: have %g, want about %g", v, want)
	}
	if v := z.Get(0, 4); v < 80 || v > 90 {
		t.Errorf("Colorado zenith just after sunrise at solstice: have %g, want between 80 and 90", v)
	}

	predawn := []time.Time{time.Date(2019, time.June, 21, 10, 0, 0, 0, time.UTC)}
	z, err = Meeus{}.SolarZenith(s, predawn)
	if err != nil {
		t.Fatal(err)
	}
	if v := z.Get(0, 4); v < 90 {
		t.Errorf("Colorado zenith before dawn at solstice: have %g, want > 90", v)
	}
}

func TestMeeusZenithRange(t *testing.T) {
	s, err := NewStations([]float64{-90, -45, 0, 45, 90}, []float64{-180, -60, 0, 60, 180}, nil)
	if err != nil {
		t.Fatal(err)
	}
	times, err := TimeSteps(time.Date(2018, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2018, time.December, 31, 0, 0, 0, 0, time.UTC), 97*time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	z, err := Meeus{}.SolarZenith(s, times)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range z.Elements {
		if !(v >= 0 && v <= 180) {
			t.Errorf("element %d: zenith %g is out of range", i, v)
		}
	}
}

func TestMeeusExtraterrestrialIrradiance(t *testing.T) {
	times := []time.Time{
		time.Date(2018, time.January, 3, 6, 0, 0, 0, time.UTC), // perihelion
		time.Date(2018, time.July, 6, 17, 0, 0, 0, time.UTC),   // aphelion
		time.Date(2018, time.April, 4, 0, 0, 0, 0, time.UTC),
	}
	e, err := Meeus{}.ExtraterrestrialIrradiance(2, times)
	if err != nil {
		t.Fatal(err)
	}
	if e.Shape[0] != 3 || e.Shape[1] != 2 {
		t.Fatalf("shape %v", e.Shape)
	}
	for i, v := range e.Elements {
		if v < 1315 || v > 1420 {
			t.Errorf("element %d: %g is out of range", i, v)
		}
	}
	if e.Get(0, 0) != e.Get(0, 1) {
		t.Errorf("irradiance should not vary among stations")
	}
	if p, a := e.Get(0, 0), e.Get(1, 0); p < 1405 || a > 1330 {
		t.Errorf("perihelion %g and aphelion %g irradiance are not as expected", p, a)
	}
	r := EarthRadiusFactor(e)
	if r.Get(0, 0) >= 1 || r.Get(1, 0) <= 1 {
		t.Errorf("distance factors %g (perihelion) and %g (aphelion) are not as expected", r.Get(0, 0), r.Get(1, 0))
	}
	// Heliocentric distances in AU.
	if different(r.Get(0, 0), 0.9833, 1.e-3) {
		t.Errorf("perihelion distance: have %g AU, want 0.9833", r.Get(0, 0))
	}
	if different(r.Get(1, 0), 1.0167, 1.e-3) {
		t.Errorf("aphelion distance: have %g AU, want 1.0167", r.Get(1, 0))
	}
	for it, tt := range times {
		if want := meeusPosition(tt).distance; different(r.Get(it, 1), want, testTolerance) {
			t.Errorf("time %d: have %g AU, want %g", it, r.Get(it, 1), want)
		}
	}
}
