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
	"math"
	"sort"

	"github.com/ctessum/geom"
	"github.com/fogleman/delaunay"
	"github.com/sirupsen/logrus"
)

// VoronoiPolygons returns the Voronoi cell of each seed, in the same
// order as seeds. Cells that are unbounded (those of seeds on the
// convex hull of the seed set) and cells with fewer than three finite
// vertices are returned as empty polygons, as is the cell of any seed
// that repeats an earlier one. Bounded cells are single closed rings
// with counter-clockwise winding.
func VoronoiPolygons(seeds []geom.Point) []geom.Polygon {
	o := make([]geom.Polygon, len(seeds))
	for i := range o {
		o[i] = geom.Polygon{}
	}
	if len(seeds) < 3 {
		return o
	}

	// Triangulate the distinct seeds. unique[k] is the position in
	// seeds of the k-th distinct seed.
	var (
		pts    []delaunay.Point
		unique []int
	)
	seen := make(map[geom.Point]bool, len(seeds))
	for i, s := range seeds {
		if seen[s] {
			continue
		}
		seen[s] = true
		pts = append(pts, delaunay.Point{X: s.X, Y: s.Y})
		unique = append(unique, i)
	}
	if len(pts) < 3 {
		return o
	}
	tri, err := delaunay.Triangulate(pts)
	if err != nil {
		// Collinear seeds.
		return o
	}

	centers := make([]geom.Point, len(tri.Triangles)/3)
	valid := make([]bool, len(centers))
	for t := range centers {
		a, b, c := pts[tri.Triangles[3*t]], pts[tri.Triangles[3*t+1]], pts[tri.Triangles[3*t+2]]
		centers[t], valid[t] = circumcenter(a, b, c)
	}

	// A seed with a half-edge that has no twin lies on the boundary
	// of the triangulation and so has an unbounded cell.
	cells := make([][]int, len(pts))
	unbounded := make([]bool, len(pts))
	for e, p := range tri.Triangles {
		cells[p] = append(cells[p], e/3)
		if tri.Halfedges[e] < 0 || tri.Halfedges[prevHalfedge(e)] < 0 {
			unbounded[p] = true
		}
	}

	for k, i := range unique {
		if unbounded[k] || len(cells[k]) == 0 {
			continue
		}
		s := seeds[i]
		var verts []geom.Point
		for _, t := range cells[k] {
			if valid[t] {
				verts = append(verts, centers[t])
			}
		}
		if len(verts) < 3 {
			continue
		}
		sort.Slice(verts, func(a, b int) bool {
			return math.Atan2(verts[a].Y-s.Y, verts[a].X-s.X) < math.Atan2(verts[b].Y-s.Y, verts[b].X-s.X)
		})
		ring := make(geom.Path, 0, len(verts)+1)
		for _, v := range verts {
			if len(ring) > 0 && nearlyEqual(ring[len(ring)-1], v) {
				continue
			}
			ring = append(ring, v)
		}
		if len(ring) > 1 && nearlyEqual(ring[0], ring[len(ring)-1]) {
			ring = ring[:len(ring)-1]
		}
		if len(ring) < 3 {
			continue
		}
		o[i] = geom.Polygon{append(ring, ring[0])}
	}
	return o
}

func prevHalfedge(e int) int {
	if e%3 == 0 {
		return e + 2
	}
	return e - 1
}

// circumcenter returns the center of the circle through a, b and c.
// ok is false if they are collinear.
func circumcenter(a, b, c delaunay.Point) (center geom.Point, ok bool) {
	d := 2 * (a.X*(b.Y-c.Y) + b.X*(c.Y-a.Y) + c.X*(a.Y-b.Y))
	if d == 0 {
		return geom.Point{}, false
	}
	a2 := a.X*a.X + a.Y*a.Y
	b2 := b.X*b.X + b.Y*b.Y
	c2 := c.X*c.X + c.Y*c.Y
	return geom.Point{
		X: (a2*(b.Y-c.Y) + b2*(c.Y-a.Y) + c2*(a.Y-b.Y)) / d,
		Y: (a2*(c.X-b.X) + b2*(a.X-c.X) + c2*(b.X-a.X)) / d,
	}, true
}

func nearlyEqual(a, b geom.Point) bool {
	const tol = 1e-12
	scale := math.Max(1, math.Max(math.Abs(a.X), math.Abs(a.Y)))
	return math.Abs(a.X-b.X) <= tol*scale && math.Abs(a.Y-b.Y) <= tol*scale
}

// VoronoiTiling assigns points to the Voronoi cells of a set of seed
// points. Points in the unbounded cells of seeds on the convex hull
// are not assigned.
type VoronoiTiling struct {
	*BoundaryTiling
	polygons []geom.Polygon
}

// NewVoronoiTiling computes the Voronoi cells of seeds, whose
// geometries must all be geom.Point. Cell identifiers are taken from
// the single column named in index, or from the seed positions if
// index is empty. The other columns of seeds are carried as cell
// attributes.
func NewVoronoiTiling(seeds *GeoTable, index []string, log logrus.FieldLogger, opts ...BoundaryOption) (*VoronoiTiling, error) {
	const op = "NewVoronoiTiling"
	if err := checkGeoTable(op, seeds); err != nil {
		return nil, err
	}
	if err := checkPoints(op, seeds.Geometry); err != nil {
		return nil, err
	}
	ids, warnings, err := indexIDs(op, seeds.Table, seeds.Len(), index, log)
	if err != nil {
		return nil, err
	}
	pts := make([]geom.Point, seeds.Len())
	for i, g := range seeds.Geometry {
		pts[i] = g.(geom.Point)
	}
	polys := VoronoiPolygons(pts)

	attrs := seeds.Table.Copy()
	if len(index) == 1 {
		attrs = attrs.Drop(index[0])
	}
	attrs = attrs.Drop(IDColumn)
	if err := attrs.AddString(IDColumn, ids); err != nil {
		return nil, err
	}
	g := make([]geom.Geom, len(polys))
	for i, p := range polys {
		g[i] = p
	}
	b, err := NewBoundaries(&GeoTable{Table: attrs, Geometry: g}, []string{IDColumn}, log)
	if err != nil {
		return nil, err
	}
	b.warnings = append(warnings, b.warnings...)
	return &VoronoiTiling{
		BoundaryTiling: NewBoundaryTiling(b, opts...),
		polygons:       polys,
	}, nil
}

func (*VoronoiTiling) tiling() {}

// Polygons returns the cell of each seed, in seed order.
func (v *VoronoiTiling) Polygons() []geom.Polygon { return v.polygons }

// Warnings returns the warnings raised while building v.
func (v *VoronoiTiling) Warnings() []ConfigurationWarning { return v.b.warnings }
