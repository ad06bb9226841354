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
	"errors"
	"math"
	"testing"

	"github.com/gonum/floats"
)

func TestScaleFactors(t *testing.T) {
	t.Run("equal elevation", func(t *testing.T) {
		f, err := ScaleFactors([]float64{0, 1500.5, -20}, []float64{0, 1500.5, -20}, ScaleHeight)
		if err != nil {
			t.Fatal(err)
		}
		for i, v := range f {
			if v != 1 {
				t.Errorf("station %d: have %g, want 1", i, v)
			}
		}
	})
	t.Run("one scale height", func(t *testing.T) {
		f, err := ScaleFactors([]float64{0, 2100}, []float64{2100, 0}, ScaleHeight)
		if err != nil {
			t.Fatal(err)
		}
		want := []float64{math.E, 1 / math.E}
		if !floats.EqualApprox(f, want, testTolerance) {
			t.Errorf("have %v, want %v", f, want)
		}
	})
	t.Run("errors", func(t *testing.T) {
		if _, err := ScaleFactors([]float64{0}, []float64{0, 1}, ScaleHeight); !errors.Is(err, ErrShapeMismatch) {
			t.Errorf("have error %v, want %v", err, ErrShapeMismatch)
		}
		if _, err := ScaleFactors([]float64{0}, []float64{0}, 0); err == nil {
			t.Errorf("zero scale height should cause an error")
		}
	})
}

func TestApplyScaleFactors(t *testing.T) {
	in := ConstantField(3, 2, 0.5)
	o, err := ApplyScaleFactors(in, []float64{1, 2})
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{0.5, 1, 0.5, 1, 0.5, 1}
	if !floats.Equal(o.Elements, want) {
		t.Errorf("have %v, want %v", o.Elements, want)
	}
	if !floats.Equal(in.Elements, []float64{0.5, 0.5, 0.5, 0.5, 0.5, 0.5}) {
		t.Errorf("input was modified: %v", in.Elements)
	}
	if _, err := ApplyScaleFactors(in, []float64{1, 2, 3}); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("have error %v, want %v", err, ErrShapeMismatch)
	}
}

func TestGridHeight(t *testing.T) {
	h := GridHeight([]float64{0, 9.80665, 9806.65})
	want := []float64{0, 1, 1000}
	if !floats.EqualApprox(h, want, testTolerance) {
		t.Errorf("have %v, want %v", h, want)
	}
}
