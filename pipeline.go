/*
Copyright © 2026 the Porygon authors.
This file is part of Porygon.

Porygon is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Porygon is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Porygon.  If not, see <http://www.gnu.org/licenses/>.
*/

package porygon

import (
	"github.com/sirupsen/logrus"
)

// FromPoints validates input (see ValidatePoints), assigns each point
// to a polygon of tiling, reduces the attribute columns within each
// polygon, and returns the result. Points that are missing coordinates
// or that fall outside every polygon are left out. If no points remain,
// the result is an empty table.
func FromPoints(input interface{}, tiling Tiling, reduce Reducer, opts ...Option) (*PolygonTable, error) {
	c := newConfig(opts)
	pts, err := ValidatePoints(input)
	if err != nil {
		return nil, err
	}
	ids, err := tiling.Assign(pts)
	if err != nil {
		return nil, err
	}
	agg, err := Aggregate(pts, ids, reduce)
	if err != nil {
		return nil, err
	}
	c.log.WithFields(logrus.Fields{
		"points":     pts.Len(),
		"dropped":    pts.Dropped,
		"unassigned": pts.Len() - agg.Assigned,
		"polygons":   len(agg.IDs),
	}).Debug("porygon: aggregated points")
	return Construct(agg, tiling, opts...)
}
