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
	"time"

	"github.com/ctessum/sparse"
	"github.com/gonum/floats"
)

// DataProvider extracts atmospheric reanalysis data at station locations.
type DataProvider interface {
	// Extract returns one [time, station] array for each of the
	// requested variables. If interpolate is true, values are
	// interpolated in space and time; otherwise the nearest grid cell
	// and record are used.
	Extract(ctx context.Context, s *Stations, variables []string, times []time.Time, interpolate bool) ([]*sparse.DenseArray, error)

	// ExtractStatic returns the value of a time-invariant variable at
	// each station.
	ExtractStatic(ctx context.Context, s *Stations, variable string) ([]float64, error)
}

// MERRA2 variable names.
const (
	VarAOD550       = "TOTEXTTAU" // total aerosol extinction optical depth at 550 nm
	VarScatterAOD   = "TOTSCATAU" // total aerosol scattering optical depth at 550 nm
	VarAngstrom     = "TOTANGSTR" // total aerosol Angstrom exponent (470-870 nm)
	VarAlbedo       = "ALBEDO"    // surface albedo
	VarOzone        = "TO3"       // total column ozone [Dobson]
	VarWaterVapor   = "TQV"       // total precipitable water vapor [kg/m²]
	VarPressure     = "PS"        // surface pressure [Pa]
	VarGeopotential = "PHIS"      // surface geopotential [m²/s²]
)

// Inputs holds atmospheric fields at station locations, converted to the
// units used by MAC2.
type Inputs struct {
	// AOD550 is aerosol optical depth at 550 nm, corrected to
	// station elevation.
	AOD550 *sparse.DenseArray

	// ScatterAOD is aerosol scattering optical depth at 550 nm.
	ScatterAOD *sparse.DenseArray

	// Angstrom is the Angstrom exponent, with negative values set to zero.
	Angstrom *sparse.DenseArray

	// Albedo is surface albedo.
	Albedo *sparse.DenseArray

	// Ozone is the ozone column [atm-cm].
	Ozone *sparse.DenseArray

	// WaterVapor is precipitable water [cm], corrected to station
	// elevation.
	WaterVapor *sparse.DenseArray

	// Pressure is surface pressure [mb].
	Pressure *sparse.DenseArray

	// NO2 is the nitrogen dioxide column [atm-cm].
	NO2 *sparse.DenseArray

	// GridHeight is the reanalysis surface height at each station [m].
	GridHeight []float64
}

// CollectData extracts the reanalysis variables needed by MAC2 from p,
// converts their units, and corrects aerosol optical depth and water vapor
// from grid-cell surface height to station elevation using scaleHeight [m].
func CollectData(ctx context.Context, p DataProvider, s *Stations, times []time.Time, interpolate bool, scaleHeight float64) (*Inputs, error) {
	vars := []string{VarAOD550, VarScatterAOD, VarAngstrom, VarAlbedo, VarOzone, VarWaterVapor, VarPressure}
	d, err := p.Extract(ctx, s, vars, times, interpolate)
	if err != nil {
		return nil, fmt.Errorf("clearsky: collecting data: %w", err)
	}
	if len(d) != len(vars) {
		return nil, fmt.Errorf("clearsky: collecting data: requested %d variables but received %d", len(vars), len(d))
	}
	for i, v := range d {
		if len(v.Shape) != 2 || v.Shape[0] != len(times) || v.Shape[1] != s.Len() {
			return nil, fmt.Errorf("%w: variable %s has shape %v; want [%d %d]",
				ErrShapeMismatch, vars[i], v.Shape, len(times), s.Len())
		}
	}
	phis, err := p.ExtractStatic(ctx, s, VarGeopotential)
	if err != nil {
		return nil, fmt.Errorf("clearsky: collecting data: %w", err)
	}

	in := &Inputs{
		ScatterAOD: d[1],
		Angstrom:   d[2].Copy(),
		Albedo:     d[3],
		Ozone:      d[4].Copy(),
		Pressure:   d[6].Copy(),
		NO2:        ConstantField(len(times), s.Len(), NO2Column),
		GridHeight: GridHeight(phis),
	}
	floats.Scale(0.001, in.Ozone.Elements)   // Dobson -> atm-cm
	floats.Scale(0.01, in.Pressure.Elements) // Pa -> mb
	for i, v := range in.Angstrom.Elements {
		if v < 0 {
			in.Angstrom.Elements[i] = 0
		}
	}
	wv := d[5].Copy()
	floats.Scale(0.1, wv.Elements) // kg/m² -> cm

	factors, err := ScaleFactors(in.GridHeight, s.Elev, scaleHeight)
	if err != nil {
		return nil, err
	}
	if in.AOD550, err = ApplyScaleFactors(d[0], factors); err != nil {
		return nil, err
	}
	if in.WaterVapor, err = ApplyScaleFactors(wv, factors); err != nil {
		return nil, err
	}
	return in, nil
}

// ConstantField returns a [nTimes, nStations] array filled with v.
func ConstantField(nTimes, nStations int, v float64) *sparse.DenseArray {
	o := sparse.ZerosDense(nTimes, nStations)
	for i := range o.Elements {
		o.Elements[i] = v
	}
	return o
}
