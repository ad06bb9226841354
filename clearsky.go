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

// Package clearsky estimates clear-sky solar irradiance at ground stations
// using the MAC2 parameterization of Davies and McKay (1982), driven by
// solar geometry and MERRA2 reanalysis fields of aerosol, water vapor,
// ozone, albedo and surface pressure.
//
// All time-varying fields are *sparse.DenseArray values with shape
// [time, station].
package clearsky

// Version gives the version number.
const Version = "1.0.0"

// Physical constants
const (
	// SolarConstant is the solar constant used by MAC2 [W/m²].
	SolarConstant = 1353.0

	// GeometrySolarConstant is the solar constant used when calculating
	// extraterrestrial irradiance from the Earth-Sun distance [W/m²].
	GeometrySolarConstant = 1366.1

	// ScaleHeight is the default exponential scale height of
	// aerosol and water vapor [m].
	ScaleHeight = 2100.0

	// NO2Column is the default nitrogen dioxide column [atm-cm].
	NO2Column = 0.0002

	g = 9.80665 // standard gravity [m/s²]
)
