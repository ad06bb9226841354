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

	"github.com/ctessum/sparse"
	"github.com/gonum/floats"
)

const testTolerance = 1.e-12

func different(a, b, tolerance float64) bool {
	if a == b {
		return false
	}
	if 2*math.Abs(a-b)/math.Abs(a+b) > tolerance || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}

// field returns a [1, len(vals)] array.
func field(vals ...float64) *sparse.DenseArray {
	o := sparse.ZerosDense(1, len(vals))
	copy(o.Elements, vals)
	return o
}

// uniformAtmosphere returns an atmosphere with the given zenith angles
// and the same value of every other input at every point.
func uniformAtmosphere(r, p, wv, beta, alpha, albedo float64, zenith ...float64) *Atmosphere {
	n := len(zenith)
	return &Atmosphere{
		Zenith:        field(zenith...),
		EarthRadius:   ConstantField(1, n, r),
		Pressure:      ConstantField(1, n, p),
		WaterVapor:    ConstantField(1, n, wv),
		AngstromBeta:  ConstantField(1, n, beta),
		AngstromAlpha: ConstantField(1, n, alpha),
		Albedo:        ConstantField(1, n, albedo),
	}
}

func TestMAC2Reference(t *testing.T) {
	a := uniformAtmosphere(1, 1013.25, 1, 0.1, 1.3, 0.2, 0, 60)
	ir, err := MAC2(a, AllComponents)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		have *sparse.DenseArray
		want []float64
	}{
		{name: "DNI", have: ir.DNI, want: []float64{875.1631125924117, 643.6350107546357}},
		{name: "DHI", have: ir.DHI, want: []float64{206.3104676314993, 144.66051147199005}},
		{name: "GHI", have: ir.GHI, want: []float64{1081.473580223911, 466.4780168493079}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			for i, want := range test.want {
				if test.have.Elements[i] != want {
					t.Errorf("point %d: have %g, want %g", i, test.have.Elements[i], want)
				}
			}
		})
	}
	if v := ir.DNI.Elements[0]; v < 600 || v > 900 {
		t.Errorf("overhead direct normal irradiance %g is outside of expected range", v)
	}
	outputs := ir.Outputs()
	if len(outputs) != 3 || outputs[0] != ir.GHI || outputs[1] != ir.DNI || outputs[2] != ir.DHI {
		t.Errorf("outputs are not in [GHI, DNI, DHI] order")
	}
}

func TestMAC2NonNegative(t *testing.T) {
	var zenith []float64
	for z := -10.0; z <= 180; z += 2.5 {
		zenith = append(zenith, z)
	}
	for _, a := range []*Atmosphere{
		uniformAtmosphere(1, 1013.25, 1, 0.1, 1.3, 0.2, zenith...),
		uniformAtmosphere(0.983, 600, 7, 2, 0, 0.9, zenith...),
		uniformAtmosphere(1.017, 1050, 0, 0, 2.5, 0, zenith...),
		uniformAtmosphere(1, 1013.25, 20, 5, 1, 0.5, zenith...),
	} {
		ir, err := MAC2(a, AllComponents)
		if err != nil {
			t.Fatal(err)
		}
		for _, o := range ir.Outputs() {
			if floats.HasNaN(o.Elements) {
				t.Errorf("output contains NaN: %v", o.Elements)
			}
			if floats.Min(o.Elements) < 0 {
				t.Errorf("output contains negative values: %v", o.Elements)
			}
		}
	}
}

func TestMAC2BelowHorizon(t *testing.T) {
	a := uniformAtmosphere(1, 1013.25, 1, 0.1, 1.3, 0.2, 90, 90.5, 120, 180, -1, math.NaN())
	for _, c := range []Components{DirectNormal, DirectDiffuse, AllComponents} {
		ir, err := MAC2(a, c)
		if err != nil {
			t.Fatal(err)
		}
		for i, o := range ir.Outputs() {
			for j, v := range o.Elements {
				if v != 0 {
					t.Errorf("components %d output %d point %d: have %g, want 0", c, i, j, v)
				}
			}
		}
	}
}

func TestMAC2Idempotent(t *testing.T) {
	a := uniformAtmosphere(0.99, 900, 2, 0.2, 1.1, 0.25, 0, 15, 45, 75, 89, 95)
	zenith := a.Zenith.Copy()
	ir1, err := MAC2(a, AllComponents)
	if err != nil {
		t.Fatal(err)
	}
	ir2, err := MAC2(a, AllComponents)
	if err != nil {
		t.Fatal(err)
	}
	o1, o2 := ir1.Outputs(), ir2.Outputs()
	for i := range o1 {
		for j := range o1[i].Elements {
			if o1[i].Elements[j] != o2[i].Elements[j] {
				t.Errorf("output %d point %d: %g != %g", i, j, o1[i].Elements[j], o2[i].Elements[j])
			}
		}
	}
	if !floats.Equal(zenith.Elements, a.Zenith.Elements) {
		t.Errorf("zenith input was modified: %v", a.Zenith.Elements)
	}
}

func TestMAC2Components(t *testing.T) {
	a := uniformAtmosphere(1, 1013.25, 1.5, 0.15, 1.2, 0.2, 0, 20, 40, 60, 80, 89.5, 100)
	ir1, err := MAC2(a, DirectNormal)
	if err != nil {
		t.Fatal(err)
	}
	ir2, err := MAC2(a, DirectDiffuse)
	if err != nil {
		t.Fatal(err)
	}
	ir3, err := MAC2(a, AllComponents)
	if err != nil {
		t.Fatal(err)
	}
	if len(ir1.Outputs()) != 1 || ir1.DHI != nil || ir1.GHI != nil {
		t.Errorf("one component should only include DNI")
	}
	if o := ir2.Outputs(); len(o) != 2 || o[0] != ir2.DNI || o[1] != ir2.DHI || ir2.GHI != nil {
		t.Errorf("two components should be [DNI, DHI]")
	}
	dni1 := ir1.Outputs()[0].Elements
	dni2 := ir2.Outputs()[0].Elements
	dni3 := ir3.Outputs()[1].Elements
	if !floats.Equal(dni1, dni2) || !floats.Equal(dni1, dni3) {
		t.Errorf("DNI differs among component counts: %v, %v, %v", dni1, dni2, dni3)
	}
	if !floats.Equal(ir2.DHI.Elements, ir3.DHI.Elements) {
		t.Errorf("DHI differs among component counts: %v, %v", ir2.DHI.Elements, ir3.DHI.Elements)
	}
}

func TestMAC2Errors(t *testing.T) {
	t.Run("components", func(t *testing.T) {
		a := uniformAtmosphere(1, 1013.25, 1, 0.1, 1.3, 0.2, 0)
		for _, c := range []Components{0, 4, -1} {
			if _, err := MAC2(a, c); !errors.Is(err, ErrComponents) {
				t.Errorf("components %d: have error %v, want %v", c, err, ErrComponents)
			}
		}
	})
	t.Run("shape", func(t *testing.T) {
		a := uniformAtmosphere(1, 1013.25, 1, 0.1, 1.3, 0.2, 0, 10)
		a.Albedo = ConstantField(2, 1, 0.2)
		if _, err := MAC2(a, AllComponents); !errors.Is(err, ErrShapeMismatch) {
			t.Errorf("have error %v, want %v", err, ErrShapeMismatch)
		}
	})
	t.Run("dimensions", func(t *testing.T) {
		a := uniformAtmosphere(1, 1013.25, 1, 0.1, 1.3, 0.2, 0, 10)
		a.Zenith = sparse.ZerosDense(2)
		if _, err := MAC2(a, AllComponents); !errors.Is(err, ErrShapeMismatch) {
			t.Errorf("have error %v, want %v", err, ErrShapeMismatch)
		}
	})
	t.Run("missing", func(t *testing.T) {
		a := uniformAtmosphere(1, 1013.25, 1, 0.1, 1.3, 0.2, 0, 10)
		a.WaterVapor = nil
		if _, err := MAC2(a, AllComponents); err == nil {
			t.Errorf("missing input should cause an error")
		}
	})
}

func TestAirMassMonotonic(t *testing.T) {
	prev := 0.0
	for z := 0.0; z <= 90; z += 0.25 {
		amm := airMass(math.Cos(z * math.Pi / 180))
		if amm < prev {
			t.Errorf("air mass decreases from %g to %g at zenith %g", prev, amm, z)
		}
		prev = amm
	}
	if amm := airMass(1); amm != 1 {
		t.Errorf("overhead air mass: have %g, want 1", amm)
	}
}

func TestTransmittance(t *testing.T) {
	if to := ozoneTransmittance(0); to != 1 {
		t.Errorf("ozone transmittance at zero air mass: %g", to)
	}
	if ta := aerosolTransmittance(1, 0, 1.3); ta != 1 {
		t.Errorf("aerosol transmittance without aerosol: %g", ta)
	}
	if aw := waterVaporAbsorption(1, 0, 1013.25); aw != 0 {
		t.Errorf("water vapor absorption without water vapor: %g", aw)
	}
	want := 0.0685 + (1-math.Pow(0.95, 1.66))*0.75*0.17
	if different(groundReflection, want, testTolerance) {
		t.Errorf("ground reflection: have %g, want %g", groundReflection, want)
	}
}
