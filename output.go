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
	"os"
	"regexp"
	"sort"

	"github.com/Knetic/govaluate"
	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// Outputter calculates output variables from model results using
// user-specified expressions.
type Outputter struct {
	variables   map[string]string
	functions   map[string]govaluate.ExpressionFunction
	expressions map[string]*govaluate.EvaluableExpression
	names       []string
}

// DefaultOutputVariables returns the variables output when none are
// specified: the irradiance components that c calculates. A zero c
// is treated as AllComponents.
func DefaultOutputVariables(c Components) map[string]string {
	switch c {
	case DirectNormal:
		return map[string]string{"DNI": "DNI"}
	case DirectDiffuse:
		return map[string]string{"DNI": "DNI", "DHI": "DHI"}
	default:
		return map[string]string{"GHI": "GHI", "DNI": "DNI", "DHI": "DHI"}
	}
}

// NewOutputter returns an Outputter for the given output variables, where
// the keys are output names and the values are expressions of model
// variables, for example {"DiffuseFrac": "DHI / max(GHI, 1)"}.
// The functions exp, cosd, max, and min are available in addition to
// any in outputFunctions.
func NewOutputter(outputVariables map[string]string, outputFunctions map[string]govaluate.ExpressionFunction) (*Outputter, error) {
	if len(outputVariables) == 0 {
		return nil, fmt.Errorf("clearsky: no output variables specified")
	}
	funcs := map[string]govaluate.ExpressionFunction{
		"exp": func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 1 {
				return nil, fmt.Errorf("clearsky: got %d arguments for function 'exp', but needs 1", len(arg))
			}
			return math.Exp(arg[0].(float64)), nil
		},
		"cosd": func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 1 {
				return nil, fmt.Errorf("clearsky: got %d arguments for function 'cosd', but needs 1", len(arg))
			}
			return math.Cos(arg[0].(float64) * math.Pi / 180), nil
		},
		"max": func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 2 {
				return nil, fmt.Errorf("clearsky: got %d arguments for function 'max', but needs 2", len(arg))
			}
			return math.Max(arg[0].(float64), arg[1].(float64)), nil
		},
		"min": func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 2 {
				return nil, fmt.Errorf("clearsky: got %d arguments for function 'min', but needs 2", len(arg))
			}
			return math.Min(arg[0].(float64), arg[1].(float64)), nil
		},
	}
	for k, f := range outputFunctions {
		funcs[k] = f
	}
	o := &Outputter{
		variables:   outputVariables,
		functions:   funcs,
		expressions: make(map[string]*govaluate.EvaluableExpression),
	}
	for name, expr := range outputVariables {
		if !validName.MatchString(name) {
			return nil, fmt.Errorf("clearsky: output variable name '%s' includes unsupported characters", name)
		}
		e, err := govaluate.NewEvaluableExpressionWithFunctions(expr, funcs)
		if err != nil {
			return nil, fmt.Errorf("clearsky: output variable %s: %v", name, err)
		}
		for _, v := range e.Vars() {
			if _, ok := variableInfo[v]; !ok {
				return nil, fmt.Errorf("clearsky: output variable %s: unknown model variable '%s'", name, v)
			}
		}
		o.expressions[name] = e
		o.names = append(o.names, name)
	}
	sort.Strings(o.names)
	return o, nil
}

var validName = regexp.MustCompile(`^[A-Za-z]\w*$`)

// Names returns the sorted output variable names.
func (o *Outputter) Names() []string { return o.names }

// variableInfo holds the descriptions and units of the model
// variables that can be used in output expressions.
var variableInfo = map[string][2]string{
	"GHI":         {"Global horizontal irradiance", "W m-2"},
	"DNI":         {"Direct normal irradiance", "W m-2"},
	"DHI":         {"Diffuse horizontal irradiance", "W m-2"},
	"Zenith":      {"Solar zenith angle", "degrees"},
	"EarthRadius": {"Earth-Sun distance factor", "1"},
	"AOD550":      {"Aerosol optical depth at 550 nm, corrected to station elevation", "1"},
	"Alpha":       {"Angstrom exponent", "1"},
	"Beta":        {"Angstrom turbidity coefficient", "1"},
	"WaterVapor":  {"Precipitable water, corrected to station elevation", "cm"},
	"Pressure":    {"Surface pressure", "mb"},
	"Albedo":      {"Ground albedo", "1"},
	"Ozone":       {"Ozone column", "atm-cm"},
}

// modelVariables returns the model variables in r that can be used in
// output expressions. Irradiance components that were not calculated
// are not included.
func modelVariables(r *Result) map[string]*sparse.DenseArray {
	o := map[string]*sparse.DenseArray{
		"Zenith":      r.Zenith,
		"EarthRadius": r.EarthRadius,
		"Alpha":       r.Alpha,
		"Beta":        r.Beta,
		"Albedo":      r.Albedo,
	}
	if r.Irradiance != nil {
		o["GHI"], o["DNI"], o["DHI"] = r.GHI, r.DNI, r.DHI
	}
	if r.Inputs != nil {
		o["AOD550"] = r.Inputs.AOD550
		o["WaterVapor"] = r.Inputs.WaterVapor
		o["Pressure"] = r.Inputs.Pressure
		o["Ozone"] = r.Inputs.Ozone
	}
	for k, v := range o {
		if v == nil {
			delete(o, k)
		}
	}
	return o
}

// Results calculates the output variables from r. Each returned array
// has shape [time, station].
func (o *Outputter) Results(r *Result) (map[string]*sparse.DenseArray, error) {
	vars := modelVariables(r)
	out := make(map[string]*sparse.DenseArray, len(o.names))
	for _, name := range o.names {
		e := o.expressions[name]
		inputs := e.Vars()
		for _, v := range inputs {
			if _, ok := vars[v]; !ok {
				return nil, fmt.Errorf("clearsky: output variable %s requires %s, which was not calculated", name, v)
			}
		}
		if len(inputs) == 1 && o.variables[name] == inputs[0] {
			out[name] = vars[inputs[0]].Copy()
			continue
		}
		res := sparse.ZerosDense(len(r.Times), r.Stations.Len())
		params := make(map[string]interface{}, len(inputs))
		for i := range res.Elements {
			for _, v := range inputs {
				params[v] = vars[v].Elements[i]
			}
			val, err := e.Evaluate(params)
			if err != nil {
				return nil, fmt.Errorf("clearsky: evaluating output variable %s: %v", name, err)
			}
			f, ok := val.(float64)
			if !ok {
				return nil, fmt.Errorf("clearsky: output variable %s evaluates to %T; it should be a number", name, val)
			}
			res.Elements[i] = f
		}
		out[name] = res
	}
	return out, nil
}

// WriteNetCDF writes the output variables of r to w in NetCDF format.
func (o *Outputter) WriteNetCDF(w *os.File, r *Result) error {
	results, err := o.Results(r)
	if err != nil {
		return err
	}
	h := cdf.NewHeader([]string{"time", "station"}, []int{len(r.Times), r.Stations.Len()})
	h.AddAttribute("", "comment", "clear-sky irradiance calculated with the MAC2 model")
	h.AddAttribute("", "clearsky_version", Version)

	h.AddVariable("time", []string{"time"}, []float64{0})
	h.AddAttribute("time", "units", "seconds since 1970-01-01 00:00:00 UTC")
	coords := []struct{ name, desc, units string }{
		{"lat", "Station latitude", "degrees_north"},
		{"lon", "Station longitude", "degrees_east"},
		{"elev", "Station elevation", "m"},
	}
	for _, c := range coords {
		h.AddVariable(c.name, []string{"station"}, []float64{0})
		h.AddAttribute(c.name, "description", c.desc)
		h.AddAttribute(c.name, "units", c.units)
	}
	for _, name := range o.names {
		h.AddVariable(name, []string{"time", "station"}, []float32{0})
		desc, units := o.variables[name], ""
		if info, ok := variableInfo[desc]; ok {
			desc, units = info[0], info[1]
		}
		h.AddAttribute(name, "description", desc)
		h.AddAttribute(name, "units", units)
	}
	h.Define()

	f, err := cdf.Create(w, h)
	if err != nil {
		return fmt.Errorf("clearsky: creating netcdf file: %v", err)
	}

	t := make([]float64, len(r.Times))
	for i, tt := range r.Times {
		t[i] = float64(tt.Unix())
	}
	if err := writeNCF64(f, "time", t); err != nil {
		return fmt.Errorf("clearsky: writing variable time to netcdf file: %v", err)
	}
	for i, c := range [][]float64{r.Stations.Lat, r.Stations.Lon, r.Stations.Elev} {
		if err := writeNCF64(f, coords[i].name, c); err != nil {
			return fmt.Errorf("clearsky: writing variable %s to netcdf file: %v", coords[i].name, err)
		}
	}
	for _, name := range o.names {
		if err = writeNCF(f, name, results[name]); err != nil {
			return fmt.Errorf("clearsky: writing variable %s to netcdf file: %v", name, err)
		}
	}
	return cdf.UpdateNumRecs(w)
}

// writeNCF writes data to variable Var in f as 32-bit floats.
func writeNCF(f *cdf.File, Var string, data *sparse.DenseArray) error {
	n := 1
	for _, v := range data.Shape {
		n *= v
	}
	if len(data.Elements) != n {
		return fmt.Errorf("dims are %d but array length is %d", n, len(data.Elements))
	}
	data32 := make([]float32, len(data.Elements))
	for i, e := range data.Elements {
		data32[i] = float32(e)
	}
	end := f.Header.Lengths(Var)
	start := make([]int, len(end))
	_, err := f.Writer(Var, start, end).Write(data32)
	return err
}

func writeNCF64(f *cdf.File, Var string, data []float64) error {
	end := f.Header.Lengths(Var)
	start := make([]int, len(end))
	_, err := f.Writer(Var, start, end).Write(data)
	return err
}
