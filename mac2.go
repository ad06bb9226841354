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
	"fmt"
	"math"

	"github.com/ctessum/sparse"
)

var (
	// ErrShapeMismatch is returned when MAC2 input fields do not
	// all have the same [time, station] shape.
	ErrShapeMismatch = errors.New("clearsky: array shape mismatch")

	// ErrComponents is returned when the number of requested
	// irradiance components is not 1, 2, or 3.
	ErrComponents = errors.New("clearsky: components must be 1, 2, or 3")
)

// Components specifies which irradiance components MAC2 calculates.
type Components int

const (
	// DirectNormal calculates direct-normal irradiance only.
	DirectNormal Components = 1

	// DirectDiffuse calculates direct-normal and diffuse-horizontal
	// irradiance.
	DirectDiffuse Components = 2

	// AllComponents calculates direct-normal, diffuse-horizontal and
	// global-horizontal irradiance.
	AllComponents Components = 3
)

// Valid returns whether c is a known component selection.
func (c Components) Valid() bool { return c >= DirectNormal && c <= AllComponents }

// Atmosphere holds the inputs to MAC2. Every field must have shape
// [time, station].
type Atmosphere struct {
	// Zenith is the solar zenith angle [degrees].
	Zenith *sparse.DenseArray

	// EarthRadius is the Earth-Sun distance factor, so that
	// extraterrestrial irradiance is SolarConstant * EarthRadius^-2.
	EarthRadius *sparse.DenseArray

	// Pressure is surface pressure [mb].
	Pressure *sparse.DenseArray

	// WaterVapor is total precipitable water [cm].
	WaterVapor *sparse.DenseArray

	// AngstromBeta and AngstromAlpha are the Angstrom turbidity
	// coefficient and exponent.
	AngstromBeta, AngstromAlpha *sparse.DenseArray

	// Albedo is ground albedo [fraction].
	Albedo *sparse.DenseArray
}

// shape checks that all fields are present and have the same
// two-dimensional shape, which it returns.
func (a *Atmosphere) shape() ([]int, error) {
	fields := []struct {
		name string
		d    *sparse.DenseArray
	}{
		{"Zenith", a.Zenith},
		{"EarthRadius", a.EarthRadius},
		{"Pressure", a.Pressure},
		{"WaterVapor", a.WaterVapor},
		{"AngstromBeta", a.AngstromBeta},
		{"AngstromAlpha", a.AngstromAlpha},
		{"Albedo", a.Albedo},
	}
	for _, f := range fields {
		if f.d == nil {
			return nil, fmt.Errorf("clearsky: MAC2 input %s is missing", f.name)
		}
	}
	shape := a.Zenith.Shape
	if len(shape) != 2 {
		return nil, fmt.Errorf("%w: Zenith has %d dimensions but should have 2 (time, station)",
			ErrShapeMismatch, len(shape))
	}
	for _, f := range fields {
		if !sameShape(f.d.Shape, shape) || len(f.d.Elements) != shape[0]*shape[1] {
			return nil, fmt.Errorf("%w: %s has shape %v but Zenith has shape %v",
				ErrShapeMismatch, f.name, f.d.Shape, shape)
		}
	}
	return shape, nil
}

func sameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i, v := range a {
		if b[i] != v {
			return false
		}
	}
	return true
}

// Irradiance holds MAC2 output [W/m²]. Fields for components that were
// not calculated are nil.
type Irradiance struct {
	Components Components

	// DNI is direct-normal irradiance (Ebn).
	DNI *sparse.DenseArray

	// DHI is diffuse-horizontal irradiance (Edh).
	DHI *sparse.DenseArray

	// GHI is global-horizontal irradiance (Egh).
	GHI *sparse.DenseArray
}

// Outputs returns the calculated components in the conventional MAC2
// order: [DNI] for one component, [DNI, DHI] for two, and
// [GHI, DNI, DHI] for three.
func (ir *Irradiance) Outputs() []*sparse.DenseArray {
	switch ir.Components {
	case DirectNormal:
		return []*sparse.DenseArray{ir.DNI}
	case DirectDiffuse:
		return []*sparse.DenseArray{ir.DNI, ir.DHI}
	default:
		return []*sparse.DenseArray{ir.GHI, ir.DNI, ir.DHI}
	}
}

// MAC2 calculates clear-sky irradiance using the parameterization of
// Davies and McKay (1982). Points where the sun is at or below the
// horizon have zero irradiance. The input arrays are not modified.
func MAC2(a *Atmosphere, c Components) (*Irradiance, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w; got %d", ErrComponents, c)
	}
	shape, err := a.shape()
	if err != nil {
		return nil, err
	}
	o := &Irradiance{Components: c, DNI: sparse.ZerosDense(shape...)}
	if c >= DirectDiffuse {
		o.DHI = sparse.ZerosDense(shape...)
	}
	if c == AllComponents {
		o.GHI = sparse.ZerosDense(shape...)
	}
	for i, z := range a.Zenith.Elements {
		p := mac2Point(z, a.EarthRadius.Elements[i], a.Pressure.Elements[i], a.WaterVapor.Elements[i],
			a.AngstromBeta.Elements[i], a.AngstromAlpha.Elements[i], a.Albedo.Elements[i])
		o.DNI.Elements[i] = nanToZero(p.ebn)
		if o.DHI != nil {
			o.DHI.Elements[i] = nanToZero(p.edh)
		}
		if o.GHI != nil {
			o.GHI.Elements[i] = nanToZero(p.egh)
		}
	}
	return o, nil
}

// point holds the irradiance components at one time and station.
type point struct {
	ebn, edh, egh float64
}

// mac2Point calculates irradiance at a single time and location.
// Invalid zenith angles propagate as NaN.
func mac2Point(zenith, earthRadius, pressure, waterVapor, beta, alpha, albedo float64) point {
	if !(zenith >= 0 && zenith < 90) {
		zenith = math.NaN()
	}
	eext := SolarConstant * math.Pow(earthRadius, -2)
	cosz := math.Cos(zenith * math.Pi / 180)

	amm := airMass(cosz)
	to := ozoneTransmittance(amm)
	tr := rayleighTable.interpolate(amm)
	ta := aerosolTransmittance(amm, beta, alpha)
	aw := waterVaporAbsorption(amm, waterVapor, pressure)
	f := forwardScatterTable.interpolate(zenith)

	var p point
	p.ebn = floor(eext * (to*tr - aw) * ta)

	// Diffuse from Rayleigh and aerosol scattering.
	dr := eext * cosz * to * (1 - tr) / 2
	da := eext * cosz * (to*tr - aw) * (1 - ta) * ssa * f

	pa := groundReflection * albedo
	p.edh = floor(pa*(p.ebn*cosz+dr+da)/(1-pa) + dr + da)
	p.egh = floor((p.ebn*cosz + dr + da) / (1 - pa))
	return p
}

const (
	ssa = 0.75 // aerosol single-scattering albedo

	// ozoneColumn is the fixed ozone column depth [cm].
	ozoneColumn = 0.35
)

// groundReflection is the sky reflectance for ground-reflected radiation,
// evaluated at an air mass of 1.66.
var groundReflection = 0.0685 + (1-math.Pow(0.95, 1.66))*ssa*(1-0.83)

// airMass returns relative optical air mass for the cosine of the
// zenith angle.
func airMass(cosz float64) float64 {
	return floor(35 / math.Sqrt(1224*cosz*cosz+1))
}

// ozoneTransmittance returns the ozone transmittance for air mass amm.
func ozoneTransmittance(amm float64) float64 {
	xo := amm * ozoneColumn * 10 // mm
	ao := 0.1082*xo/math.Pow(1+13.86*xo, 0.805) +
		0.00658*xo/(1+math.Pow(10.36*xo, 3)) +
		0.002118*xo/(1+0.0042*xo+3.23e-6*xo*xo)
	return 1 - ao
}

// aerosolTransmittance returns the aerosol transmittance for
// Angstrom coefficient beta and exponent alpha.
func aerosolTransmittance(amm, beta, alpha float64) float64 {
	ta := beta * (math.Pow(0.38, -alpha)*0.2758 + math.Pow(0.5, -alpha)*0.35)
	return math.Exp(-ta * amm)
}

// waterVaporAbsorption returns water vapor absorptance for
// precipitable water w [cm] and pressure p [mb].
func waterVaporAbsorption(amm, w, p float64) float64 {
	xw := amm * w * 10 * math.Pow(p/1013.25, 0.75)
	return 0.29 * xw / (math.Pow(1+14.15*xw, 0.635) + 0.5925*xw)
}

// floor sets negative values to zero. NaN values are unchanged.
func floor(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func nanToZero(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
