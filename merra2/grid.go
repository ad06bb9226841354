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
	"math"
	"sort"
	"time"

	"github.com/ctessum/sparse"
)

// weight specifies a linear combination of two neighboring indices:
// value = (1-w)*v[i0] + w*v[i1].
type weight struct {
	i0, i1 int
	w      float64
}

// nearest collapses w onto its closest index.
func (w weight) nearest() weight {
	if w.w > 0.5 {
		return weight{i0: w.i1, i1: w.i1}
	}
	return weight{i0: w.i0, i1: w.i0}
}

// axisWeight returns the weight for location x along increasing
// coordinates c. Locations outside of the coordinates take the value
// at the nearest end.
func axisWeight(c []float64, x float64) weight {
	n := len(c)
	if x <= c[0] {
		return weight{}
	}
	if x >= c[n-1] {
		return weight{i0: n - 1, i1: n - 1}
	}
	i := sort.SearchFloat64s(c, x)
	if c[i] == x {
		return weight{i0: i, i1: i}
	}
	return weight{i0: i - 1, i1: i, w: (x - c[i-1]) / (c[i] - c[i-1])}
}

// lonWeight returns the weight for longitude x [degrees] along
// increasing longitudes c. For global grids the interpolation wraps
// across the antimeridian.
func lonWeight(c []float64, x float64) weight {
	n := len(c)
	if n == 1 {
		return weight{}
	}
	x = c[0] + math.Mod(math.Mod(x-c[0], 360)+360, 360)
	if x <= c[n-1] {
		return axisWeight(c, x)
	}
	gap := c[0] + 360 - c[n-1]
	if gap <= 1.5*(c[1]-c[0]) { // global grid
		return weight{i0: n - 1, i1: 0, w: (x - c[n-1]) / gap}
	}
	if x-c[n-1] < c[0]+360-x {
		return weight{i0: n - 1, i1: n - 1}
	}
	return weight{}
}

// timeWeight returns the weight for time t along increasing times c.
func timeWeight(c []time.Time, t time.Time) weight {
	n := len(c)
	if !t.After(c[0]) {
		return weight{}
	}
	if !t.Before(c[n-1]) {
		return weight{i0: n - 1, i1: n - 1}
	}
	i := sort.Search(n, func(i int) bool { return !c[i].Before(t) })
	if c[i].Equal(t) {
		return weight{i0: i, i1: i}
	}
	return weight{i0: i - 1, i1: i, w: float64(t.Sub(c[i-1])) / float64(c[i].Sub(c[i-1]))}
}

// location holds the horizontal interpolation weights for a station.
type location struct {
	lat, lon weight
}

// value returns the bilinearly-interpolated value of the
// (lat, lon) slab s at l.
func (l location) value(s *sparse.DenseArray) float64 {
	y, x := l.lat, l.lon
	v0 := lerp(s.Get(y.i0, x.i0), s.Get(y.i0, x.i1), x.w)
	v1 := lerp(s.Get(y.i1, x.i0), s.Get(y.i1, x.i1), x.w)
	return lerp(v0, v1, y.w)
}

func lerp(a, b, w float64) float64 {
	if w == 0 {
		return a
	}
	return (1-w)*a + w*b
}
