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
	"context"
	"fmt"
	"math"
	"time"

	"github.com/ctessum/sparse"
	"github.com/sirupsen/logrus"
)

// Model calculates clear-sky irradiance at a set of stations from
// solar geometry and reanalysis data.
type Model struct {
	Geometry GeometryProvider
	Data     DataProvider

	// Components specifies which irradiance components to calculate.
	// The default is AllComponents.
	Components Components

	// Interpolate specifies whether reanalysis data should be
	// interpolated in space and time rather than taken from the
	// nearest grid cell and record.
	Interpolate bool

	// ScaleHeight is the aerosol and water vapor scale height [m].
	// The default is 2100 m.
	ScaleHeight float64

	// Albedo is a fixed ground albedo in [0, 1]. If it is nil, the
	// reanalysis surface albedo is used.
	Albedo *float64

	// Log receives progress messages. If it is nil, the
	// logrus standard logger is used.
	Log logrus.FieldLogger
}

// Result holds the output of a model run together with the
// inputs that produced it.
type Result struct {
	*Irradiance

	Stations *Stations
	Times    []time.Time

	// Zenith is the solar zenith angle [degrees].
	Zenith *sparse.DenseArray

	// EarthRadius is the Earth-Sun distance factor passed to MAC2.
	EarthRadius *sparse.DenseArray

	// Alpha and Beta are the Angstrom exponent and turbidity coefficient.
	Alpha, Beta *sparse.DenseArray

	// Albedo is the ground albedo passed to MAC2.
	Albedo *sparse.DenseArray

	Inputs *Inputs
}

func (m *Model) logger() logrus.FieldLogger {
	if m.Log == nil {
		return logrus.StandardLogger()
	}
	return m.Log
}

// Run calculates irradiance at stations s for each of the given times.
func (m *Model) Run(ctx context.Context, s *Stations, times []time.Time) (*Result, error) {
	if len(times) == 0 {
		return nil, fmt.Errorf("clearsky: no times specified")
	}
	if s.Len() == 0 {
		return nil, fmt.Errorf("clearsky: no stations specified")
	}
	if m.Albedo != nil && !(*m.Albedo >= 0 && *m.Albedo <= 1) {
		return nil, fmt.Errorf("clearsky: fixed albedo must be within [0, 1] but is %g", *m.Albedo)
	}
	components := m.Components
	if components == 0 {
		components = AllComponents
	}
	scaleHeight := m.ScaleHeight
	if scaleHeight == 0 {
		scaleHeight = ScaleHeight
	}
	log := m.logger().WithFields(logrus.Fields{
		"stations":   s.Len(),
		"times":      len(times),
		"components": int(components),
	})
	log.WithFields(logrus.Fields{
		"start": times[0],
		"end":   times[len(times)-1],
	}).Info("clearsky: starting calculation")

	zenith, err := m.Geometry.SolarZenith(s, times)
	if err != nil {
		return nil, fmt.Errorf("clearsky: calculating solar zenith angle: %w", err)
	}
	eext, err := m.Geometry.ExtraterrestrialIrradiance(s.Len(), times)
	if err != nil {
		return nil, fmt.Errorf("clearsky: calculating extraterrestrial irradiance: %w", err)
	}
	log.Debug("clearsky: calculated solar geometry")

	in, err := CollectData(ctx, m.Data, s, times, m.Interpolate, scaleHeight)
	if err != nil {
		return nil, err
	}
	log.Debug("clearsky: collected reanalysis data")

	r := &Result{
		Stations:    s,
		Times:       times,
		Zenith:      zenith,
		EarthRadius: EarthRadiusFactor(eext),
		Alpha:       in.Angstrom,
		Beta:        AngstromBeta(in.AOD550, in.Angstrom),
		Albedo:      in.Albedo,
		Inputs:      in,
	}
	if m.Albedo != nil {
		r.Albedo = ConstantField(len(times), s.Len(), *m.Albedo)
	}

	r.Irradiance, err = MAC2(&Atmosphere{
		Zenith:        r.Zenith,
		EarthRadius:   r.EarthRadius,
		Pressure:      in.Pressure,
		WaterVapor:    in.WaterVapor,
		AngstromBeta:  r.Beta,
		AngstromAlpha: r.Alpha,
		Albedo:        r.Albedo,
	}, components)
	if err != nil {
		return nil, err
	}
	log.Info("clearsky: finished calculation")
	return r, nil
}

// EarthRadiusFactor converts extraterrestrial irradiance [W/m²]
// calculated with GeometrySolarConstant to the Earth-Sun distance
// factor r, where irradiance = GeometrySolarConstant * r^-2.
// r is the heliocentric distance of the Earth in astronomical units,
// so it is less than 1 near perihelion in January.
func EarthRadiusFactor(eext *sparse.DenseArray) *sparse.DenseArray {
	o := sparse.ZerosDense(eext.Shape...)
	for i, e := range eext.Elements {
		o.Elements[i] = math.Sqrt(GeometrySolarConstant / e)
	}
	return o
}

// AngstromBeta calculates the Angstrom turbidity coefficient from
// aerosol optical depth at 550 nm and the Angstrom exponent alpha.
func AngstromBeta(aod550, alpha *sparse.DenseArray) *sparse.DenseArray {
	o := sparse.ZerosDense(aod550.Shape...)
	for i, aod := range aod550.Elements {
		o.Elements[i] = aod / math.Pow(0.55, -alpha.Elements[i])
	}
	return o
}

// TimeSteps returns the times from start to end, inclusive,
// at the given interval.
func TimeSteps(start, end time.Time, step time.Duration) ([]time.Time, error) {
	if step <= 0 {
		return nil, fmt.Errorf("clearsky: time step must be > 0 but is %v", step)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("clearsky: end time %v is before start time %v", end, start)
	}
	var o []time.Time
	for t := start; !t.After(end); t = t.Add(step) {
		o = append(o, t)
	}
	return o, nil
}
