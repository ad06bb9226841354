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
	"fmt"
	"math"

	"github.com/ctessum/sparse"
	"github.com/ctessum/unit"
	"github.com/gonum/floats"
)

// metersPerGeopotential is the height [m] of a unit of
// surface geopotential [m²/s²].
var metersPerGeopotential = func() float64 {
	geopotential := unit.New(1, unit.Dimensions{unit.LengthDim: 2, unit.TimeDim: -2})
	gravity := unit.New(g, unit.Dimensions{unit.LengthDim: 1, unit.TimeDim: -2})
	h := unit.Div(geopotential, gravity)
	if err := h.Check(unit.Meter); err != nil {
		panic(err)
	}
	return h.Value()
}()

// GridHeight converts surface geopotential [m²/s²] to
// surface height [m].
func GridHeight(phis []float64) []float64 {
	h := make([]float64, len(phis))
	copy(h, phis)
	floats.Scale(metersPerGeopotential, h)
	return h
}

// ScaleFactors returns, for each station, the factor
// exp((elev - gridHeight) / scaleHeight) that adjusts column
// aerosol and water vapor from the reanalysis grid-cell surface height
// to the station elevation.
func ScaleFactors(gridHeight, elev []float64, scaleHeight float64) ([]float64, error) {
	if len(gridHeight) != len(elev) {
		return nil, fmt.Errorf("%w: %d grid heights but %d station elevations",
			ErrShapeMismatch, len(gridHeight), len(elev))
	}
	if !(scaleHeight > 0) {
		return nil, fmt.Errorf("clearsky: scale height must be > 0 but is %g", scaleHeight)
	}
	f := make([]float64, len(elev))
	for i, e := range elev {
		f[i] = math.Exp((e - gridHeight[i]) / scaleHeight)
	}
	return f, nil
}

// ApplyScaleFactors returns a copy of field, which must have shape
// [time, station], with each station column multiplied by the
// corresponding factor.
func ApplyScaleFactors(field *sparse.DenseArray, factors []float64) (*sparse.DenseArray, error) {
	if len(field.Shape) != 2 || field.Shape[1] != len(factors) {
		return nil, fmt.Errorf("%w: field shape %v cannot be scaled by %d station factors",
			ErrShapeMismatch, field.Shape, len(factors))
	}
	o := field.Copy()
	nStations := len(factors)
	for t := 0; t < field.Shape[0]; t++ {
		floats.Mul(o.Elements[t*nStations:(t+1)*nStations], factors)
	}
	return o, nil
}
