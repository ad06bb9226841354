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
	"time"

	"github.com/ctessum/sparse"
	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/sidereal"
	"github.com/soniakeys/meeus/v3/solar"
)

// GeometryProvider calculates solar geometry for a set of stations.
// Returned arrays have shape [time, station].
type GeometryProvider interface {
	// SolarZenith returns the solar zenith angle [degrees].
	SolarZenith(s *Stations, times []time.Time) (*sparse.DenseArray, error)

	// ExtraterrestrialIrradiance returns irradiance at the top of the
	// atmosphere on a surface normal to the sun's rays [W/m²].
	ExtraterrestrialIrradiance(nStations int, times []time.Time) (*sparse.DenseArray, error)
}

// Meeus is a GeometryProvider that uses the low-precision solar
// position algorithms of Meeus (1998), Astronomical Algorithms.
// Atmospheric refraction is not included.
type Meeus struct{}

// sunPosition holds the solar position at a single time.
type sunPosition struct {
	ra, dec  float64 // apparent right ascension and declination [rad]
	sidereal float64 // apparent Greenwich sidereal time [rad]
	distance float64 // Earth-Sun distance [AU]
}

func meeusPosition(t time.Time) sunPosition {
	jd := julian.TimeToJD(t.UTC())
	α, δ := solar.ApparentEquatorial(jd)
	return sunPosition{
		ra:       α.Rad(),
		dec:      δ.Rad(),
		sidereal: sidereal.Apparent(jd).Rad(),
		distance: solar.Radius(base.J2000Century(jd)),
	}
}

// SolarZenith implements GeometryProvider.
func (Meeus) SolarZenith(s *Stations, times []time.Time) (*sparse.DenseArray, error) {
	n := s.Len()
	o := sparse.ZerosDense(len(times), n)
	for it, t := range times {
		p := meeusPosition(t)
		sinδ, cosδ := math.Sincos(p.dec)
		for i := 0; i < n; i++ {
			φ := s.Lat[i] * math.Pi / 180
			h := p.sidereal + s.Lon[i]*math.Pi/180 - p.ra // local hour angle
			sinφ, cosφ := math.Sincos(φ)
			cosz := sinφ*sinδ + cosφ*cosδ*math.Cos(h)
			cosz = math.Max(-1, math.Min(1, cosz))
			o.Elements[it*n+i] = math.Acos(cosz) * 180 / math.Pi
		}
	}
	return o, nil
}

// ExtraterrestrialIrradiance implements GeometryProvider.
func (Meeus) ExtraterrestrialIrradiance(nStations int, times []time.Time) (*sparse.DenseArray, error) {
	o := sparse.ZerosDense(len(times), nStations)
	for it, t := range times {
		r := meeusPosition(t).distance
		e := GeometrySolarConstant / (r * r)
		for i := 0; i < nStations; i++ {
			o.Elements[it*nStations+i] = e
		}
	}
	return o, nil
}
