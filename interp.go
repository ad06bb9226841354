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

	"gonum.org/v1/gonum/interp"
)

// lookupTable is a piecewise-linear function defined at strictly
// increasing nodes. Values outside of the node range take the value
// of the nearest end.
type lookupTable struct {
	x, y []float64
	fit  interp.PiecewiseLinear
}

func newLookupTable(x, y []float64) *lookupTable {
	t := &lookupTable{x: x, y: y}
	t.fit.Fit(x, y)
	return t
}

// rayleighTable gives Rayleigh transmittance as a function of
// relative air mass (Davies and McKay 1982, Table 2).
var rayleighTable = newLookupTable(
	[]float64{0.5, 1, 1.2, 1.4, 1.6, 1.8, 2.0, 3.0, 3.5, 4.0, 4.5, 5.0, 5.5, 6, 10, 30},
	[]float64{.9385, .8973, .8830, .8696, .8572, .8455, .8344, .7872, .7673, .7493,
		.7328, .7177, .7037, .6907, .6108, .4364},
)

// forwardScatterTable gives the aerosol forward-scatter fraction as
// a function of solar zenith angle in degrees.
var forwardScatterTable = newLookupTable(
	[]float64{0, 25.8, 36.9, 45.6, 53.1, 60.0, 66.4, 72.5, 78.5, 90},
	[]float64{.92, .91, .89, .86, .83, .78, .71, .67, .60, .60},
)

// interpolate returns the table value at v. NaN is returned for NaN.
func (t *lookupTable) interpolate(v float64) float64 {
	if math.IsNaN(v) {
		return math.NaN()
	}
	return t.fit.Predict(v)
}
