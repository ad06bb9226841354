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
)

// ErrStation is returned when station coordinates are invalid.
var ErrStation = errors.New("clearsky: invalid station")

// Stations holds the locations of a set of ground stations.
type Stations struct {
	// Lat and Lon are latitude and longitude in degrees.
	Lat, Lon []float64

	// Elev is the station elevation above sea level [m].
	Elev []float64
}

// NewStations checks the given coordinates and returns a station set.
// lat and lon must be the same length, latitudes must be within
// [-90, 90] and longitudes within [-180, 180]. If elev is nil all stations
// are assumed to be at sea level.
func NewStations(lat, lon, elev []float64) (*Stations, error) {
	if len(lat) != len(lon) {
		return nil, fmt.Errorf("%w: %d latitudes but %d longitudes", ErrStation, len(lat), len(lon))
	}
	if elev == nil {
		elev = make([]float64, len(lat))
	} else if len(elev) != len(lat) {
		return nil, fmt.Errorf("%w: %d latitudes but %d elevations", ErrStation, len(lat), len(elev))
	}
	for i := range lat {
		if !(math.Abs(lat[i]) <= 90) {
			return nil, fmt.Errorf("%w: station %d latitude %g is outside of [-90, 90]", ErrStation, i, lat[i])
		}
		if !(math.Abs(lon[i]) <= 180) {
			return nil, fmt.Errorf("%w: station %d longitude %g is outside of [-180, 180]", ErrStation, i, lon[i])
		}
	}
	return &Stations{Lat: lat, Lon: lon, Elev: elev}, nil
}

// Len returns the number of stations.
func (s *Stations) Len() int { return len(s.Lat) }
