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
	"github.com/ctessum/geom"
)

// Unassigned is the polygon identifier given to points that do not
// fall within any polygon of a Tiling.
const Unassigned = ""

// Tiling assigns points to polygons. The implementations are
// *HexTiling, *BoundaryTiling, and *VoronoiTiling.
type Tiling interface {
	// Assign returns the identifier of the polygon containing each
	// point in pts, or Unassigned for points outside every polygon.
	Assign(pts *PointTable) ([]string, error)

	// Geometry returns the polygon with the given identifier.
	Geometry(id string) (geom.Polygonal, error)

	// Attributes returns additional per-polygon columns to be carried
	// into aggregation results, keyed by the returned identifiers.
	// Both return values are nil when there are none.
	Attributes() (ids []string, attrs *Table)

	tiling()
}
