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

package clearskyutil

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/spatialmodel/clearsky"
)

// readStationShapefile reads station locations from the point shapefile
// at path. Point coordinates must be longitude and latitude in degrees.
// If elevColumn is not empty, station elevations [m] are read from that
// attribute.
func readStationShapefile(path, elevColumn string) (*clearsky.Stations, error) {
	d, err := shp.NewDecoder(path)
	if err != nil {
		return nil, fmt.Errorf("clearsky: opening station file: %v", err)
	}
	defer d.Close()

	var fields []string
	if elevColumn != "" {
		fields = []string{elevColumn}
	}
	n := d.AttributeCount()
	lat, lon, elev := make([]float64, n), make([]float64, n), make([]float64, n)
	for i := 0; i < n; i++ {
		g, vals, more := d.DecodeRowFields(fields...)
		if err := d.Error(); err != nil {
			return nil, fmt.Errorf("clearsky: reading station file: %v", err)
		}
		if !more {
			return nil, fmt.Errorf("clearsky: reading station file: ran out of rows at row %d of %d", i, n)
		}
		p, ok := g.(geom.Point)
		if !ok {
			return nil, fmt.Errorf("clearsky: station file geometry must be points but row %d is %T", i, g)
		}
		lon[i], lat[i] = p.X, p.Y
		if elevColumn != "" {
			elev[i], err = strconv.ParseFloat(strings.TrimSpace(vals[elevColumn]), 64)
			if err != nil {
				return nil, fmt.Errorf("clearsky: reading elevation for station %d: %v", i, err)
			}
		}
	}
	return clearsky.NewStations(lat, lon, elev)
}
