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
	"fmt"

	"github.com/ctessum/geom"
	"github.com/uber/h3-go/v4"
)

// MaxHexResolution is the finest supported hexagonal grid resolution.
const MaxHexResolution = 15

// HexTiling assigns points to cells of the H3 hierarchical hexagonal
// grid at a fixed resolution.
type HexTiling struct {
	Resolution int
}

// NewHexTiling returns a HexTiling at the given resolution, which
// must be between 0 and MaxHexResolution.
func NewHexTiling(resolution int) (*HexTiling, error) {
	h := &HexTiling{Resolution: resolution}
	if err := h.check(); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *HexTiling) check() error {
	if h.Resolution < 0 || h.Resolution > MaxHexResolution {
		return validationErrorf("HexTiling", "resolution %d is outside of [0, %d]", h.Resolution, MaxHexResolution)
	}
	return nil
}

func (*HexTiling) tiling() {}

// Assign returns the identifier of the cell containing each point.
// Every point is assigned.
func (h *HexTiling) Assign(pts *PointTable) ([]string, error) {
	if err := h.check(); err != nil {
		return nil, err
	}
	ids := make([]string, pts.Len())
	for i := range ids {
		c, err := h3.LatLngToCell(h3.NewLatLng(pts.Latitude[i], pts.Longitude[i]), h.Resolution)
		if err != nil {
			return nil, fmt.Errorf("porygon: assigning hex cell to point %d (%g, %g): %w",
				i, pts.Latitude[i], pts.Longitude[i], err)
		}
		ids[i] = c.String()
	}
	return ids, nil
}

// Geometry returns the boundary of the cell with the given identifier.
func (h *HexTiling) Geometry(id string) (geom.Polygonal, error) {
	ring, err := CellBoundary(id)
	if err != nil {
		return nil, err
	}
	return geom.Polygon{ring}, nil
}

// Attributes returns nil; hexagonal cells carry no extra columns.
func (*HexTiling) Attributes() ([]string, *Table) { return nil, nil }

// CellBoundary returns the boundary of the H3 cell with the given
// identifier as a closed ring of (longitude, latitude) vertices.
func CellBoundary(id string) (geom.Path, error) {
	c := h3.Cell(h3.IndexFromString(id))
	if !c.IsValid() {
		return nil, validationErrorf("CellBoundary", "invalid cell identifier %q", id)
	}
	b, err := h3.CellToBoundary(c)
	if err != nil {
		return nil, fmt.Errorf("porygon: cell %s boundary: %w", id, err)
	}
	ring := make(geom.Path, 0, len(b)+1)
	for _, ll := range b {
		ring = append(ring, geom.Point{X: ll.Lng, Y: ll.Lat})
	}
	if len(ring) > 0 {
		ring = append(ring, ring[0])
	}
	return ring, nil
}
