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
	"github.com/ctessum/geom/index/rtree"
	"github.com/sirupsen/logrus"
)

// Boundaries is a validated set of polygons uniquely indexed by an
// "id" column.
type Boundaries struct {
	ids      []string
	geoms    []geom.Polygonal
	attrs    *Table
	warnings []ConfigurationWarning
}

// NewBoundaries validates g as a boundary set. index must name
// exactly one column, "id", whose values are unique. Every geometry
// must be a polygon or multi-polygon. Numeric identifiers are
// converted to text and a warning is logged to log, which may be nil.
// The columns of g other than the index are kept as attributes.
func NewBoundaries(g *GeoTable, index []string, log logrus.FieldLogger) (*Boundaries, error) {
	const op = "NewBoundaries"
	if err := checkGeoTable(op, g); err != nil {
		return nil, err
	}
	if len(index) != 1 {
		return nil, validationErrorf(op, "index must be the single column %q; got %s", IDColumn, quoteAll(index))
	}
	if index[0] != IDColumn {
		return nil, validationErrorf(op, "index must be named %q; got %q", IDColumn, index[0])
	}
	ids, warnings, err := indexIDs(op, g.Table, g.Len(), index, log)
	if err != nil {
		return nil, err
	}
	geoms, err := polygonal(op, g.Geometry)
	if err != nil {
		return nil, err
	}
	return &Boundaries{
		ids:      ids,
		geoms:    geoms,
		attrs:    g.Table.Drop(IDColumn),
		warnings: warnings,
	}, nil
}

// Len returns the number of boundaries.
func (b *Boundaries) Len() int { return len(b.ids) }

// IDs returns the boundary identifiers in index order.
func (b *Boundaries) IDs() []string { return append([]string(nil), b.ids...) }

// Warnings returns the warnings raised while validating b.
func (b *Boundaries) Warnings() []ConfigurationWarning { return b.warnings }

// BoundaryTiling assigns points to the boundary whose interior contains
// them. Points exactly on a boundary edge are not contained by it.
// Where boundaries overlap, the one latest in index order wins.
type BoundaryTiling struct {
	b     *Boundaries
	byID  map[string]int
	index *rtree.Rtree
}

// BoundaryOption configures a BoundaryTiling.
type BoundaryOption func(*BoundaryTiling)

// WithSpatialIndex makes the BoundaryTiling search an R-tree of
// boundary extents rather than testing every boundary against every
// point. Assignments are unchanged.
func WithSpatialIndex() BoundaryOption {
	return func(t *BoundaryTiling) {
		t.index = rtree.NewTree(25, 50)
		for i, g := range t.b.geoms {
			if isEmpty(g) {
				continue
			}
			t.index.Insert(boundaryIndex{Polygonal: g, i: i})
		}
	}
}

type boundaryIndex struct {
	geom.Polygonal
	i int
}

// NewBoundaryTiling returns a tiling over b.
func NewBoundaryTiling(b *Boundaries, opts ...BoundaryOption) *BoundaryTiling {
	t := &BoundaryTiling{
		b:    b,
		byID: make(map[string]int, len(b.ids)),
	}
	for i, id := range b.ids {
		t.byID[id] = i
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

func (*BoundaryTiling) tiling() {}

// Assign returns the identifier of the boundary containing each point.
func (t *BoundaryTiling) Assign(pts *PointTable) ([]string, error) {
	ids := make([]string, pts.Len())
	if t.index != nil {
		for i := range ids {
			p := pts.Point(i)
			best := -1
			for _, c := range t.index.SearchIntersect(p.Bounds()) {
				bi := c.(boundaryIndex)
				if bi.i > best && p.Within(bi.Polygonal) == geom.Inside {
					best = bi.i
				}
			}
			if best >= 0 {
				ids[i] = t.b.ids[best]
			}
		}
		return ids, nil
	}
	for j, g := range t.b.geoms {
		for i := range ids {
			if pts.Point(i).Within(g) == geom.Inside {
				ids[i] = t.b.ids[j]
			}
		}
	}
	return ids, nil
}

// Geometry returns the boundary with the given identifier.
func (t *BoundaryTiling) Geometry(id string) (geom.Polygonal, error) {
	i, ok := t.byID[id]
	if !ok {
		return nil, fmt.Errorf("porygon: no boundary with id %q", id)
	}
	return t.b.geoms[i], nil
}

// Attributes returns the non-index columns of the boundaries.
func (t *BoundaryTiling) Attributes() ([]string, *Table) {
	if len(t.b.attrs.Columns()) == 0 {
		return nil, nil
	}
	return t.b.IDs(), t.b.attrs
}
