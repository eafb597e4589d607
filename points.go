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
	"math"
	"sort"

	"github.com/ctessum/geom"
)

// GeoTable is a Table with an accompanying geometry column.
type GeoTable struct {
	// Table holds the non-geometry columns. It may have no columns,
	// but if it has any they must have one row per geometry.
	Table    *Table
	Geometry []geom.Geom
}

// NewGeoTable returns a GeoTable holding g and a copy of t, which may be nil.
func NewGeoTable(g []geom.Geom, t *Table) (*GeoTable, error) {
	if t != nil && len(t.cols) > 0 && t.Len() != len(g) {
		return nil, validationErrorf("NewGeoTable", "table has %d rows but there are %d geometries", t.Len(), len(g))
	}
	if t != nil && t.Has(Geometry) {
		return nil, validationErrorf("NewGeoTable", "column name %q is reserved", Geometry)
	}
	return &GeoTable{
		Table:    t.Copy(),
		Geometry: append([]geom.Geom(nil), g...),
	}, nil
}

// Len returns the number of rows in g.
func (g *GeoTable) Len() int { return len(g.Geometry) }

// PointTable is a validated set of point locations and their numeric
// attributes.
type PointTable struct {
	Latitude, Longitude []float64

	// Attributes holds the remaining columns, one row per point.
	// All of them are numeric.
	Attributes *Table

	// Dropped is the number of input rows that were removed because
	// they were missing a coordinate.
	Dropped int
}

// Len returns the number of points.
func (p *PointTable) Len() int { return len(p.Latitude) }

// Point returns the location of point i.
func (p *PointTable) Point(i int) geom.Point {
	return geom.Point{X: p.Longitude[i], Y: p.Latitude[i]}
}

// ValidatePoints normalizes input into a PointTable. input must be
// either a *GeoTable whose geometries are all geom.Point, or a *Table
// with numeric "latitude" and "longitude" columns. Rows missing either
// coordinate are dropped and counted in the Dropped field of the result,
// and an infinite coordinate is an error.
// Any other input results in an *UnsupportedInputError.
func ValidatePoints(input interface{}) (*PointTable, error) {
	const op = "ValidatePoints"
	switch v := input.(type) {
	case *GeoTable:
		if v == nil {
			return nil, validationErrorf(op, "nil GeoTable")
		}
		if err := checkPoints(op, v.Geometry); err != nil {
			return nil, err
		}
		t, err := ToLatLon(v)
		if err != nil {
			return nil, err
		}
		return validateLatLon(op, t)
	case *Table:
		if v == nil {
			return nil, validationErrorf(op, "nil Table")
		}
		return validateLatLon(op, v)
	default:
		return nil, &UnsupportedInputError{Op: op, Type: fmt.Sprintf("%T", input)}
	}
}

func validateLatLon(op string, t *Table) (*PointTable, error) {
	var missing []string
	for _, c := range []string{Latitude, Longitude} {
		if !t.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, validationErrorf(op, "missing coordinate column(s) %s", quoteAll(missing))
	}
	lat, ok := t.Float(Latitude)
	if !ok {
		return nil, validationErrorf(op, "column %q must be numeric", Latitude)
	}
	lon, ok := t.Float(Longitude)
	if !ok {
		return nil, validationErrorf(op, "column %q must be numeric", Longitude)
	}
	attrs := t.Drop(Latitude, Longitude)
	if s := attrs.stringColumns(); len(s) > 0 {
		return nil, validationErrorf(op, "attribute column(s) %s must be numeric", quoteAll(s))
	}

	keep := make([]int, 0, len(lat))
	for i := range lat {
		if isMissing(lat[i]) || isMissing(lon[i]) {
			continue
		}
		if math.IsInf(lat[i], 0) || math.IsInf(lon[i], 0) {
			return nil, validationErrorf(op, "row %d: infinite coordinate (%g, %g)", i, lat[i], lon[i])
		}
		keep = append(keep, i)
	}
	p := &PointTable{
		Latitude:   make([]float64, len(keep)),
		Longitude:  make([]float64, len(keep)),
		Attributes: attrs.Take(keep),
		Dropped:    len(lat) - len(keep),
	}
	for i, r := range keep {
		p.Latitude[i] = lat[r]
		p.Longitude[i] = lon[r]
	}
	return p, nil
}

// checkPoints returns an error if any of g is not a geom.Point.
func checkPoints(op string, g []geom.Geom) error {
	bad := make(map[string]bool)
	for _, gg := range g {
		if _, ok := gg.(geom.Point); !ok {
			bad[geomTypeName(gg)] = true
		}
	}
	if len(bad) == 0 {
		return nil
	}
	names := make([]string, 0, len(bad))
	for n := range bad {
		names = append(names, n)
	}
	sort.Strings(names)
	return validationErrorf(op, "all geometries must be points; found %s", quoteAll(names))
}

func geomTypeName(g geom.Geom) string {
	switch g.(type) {
	case nil:
		return "nil"
	case geom.Point:
		return "Point"
	case geom.MultiPoint:
		return "MultiPoint"
	case geom.LineString:
		return "LineString"
	case geom.MultiLineString:
		return "MultiLineString"
	case geom.Polygon:
		return "Polygon"
	case geom.MultiPolygon:
		return "MultiPolygon"
	default:
		return fmt.Sprintf("%T", g)
	}
}

// ToLatLon converts point geometry into "latitude" and "longitude"
// columns. The result holds a copy of the other columns of g and no
// geometry. g is not modified.
func ToLatLon(g *GeoTable) (*Table, error) {
	const op = "ToLatLon"
	if err := checkPoints(op, g.Geometry); err != nil {
		return nil, err
	}
	if g.Table.Has(Latitude) || g.Table.Has(Longitude) {
		return nil, validationErrorf(op, "table already has coordinate columns")
	}
	lat := make([]float64, len(g.Geometry))
	lon := make([]float64, len(g.Geometry))
	for i, gg := range g.Geometry {
		p := gg.(geom.Point)
		lat[i], lon[i] = p.Y, p.X
	}
	t := g.Table.Copy()
	if err := t.AddFloat(Latitude, lat); err != nil {
		return nil, err
	}
	if err := t.AddFloat(Longitude, lon); err != nil {
		return nil, err
	}
	return t, nil
}

// ToGeometry converts the "latitude" and "longitude" columns of t
// into point geometry. The result holds a copy of the other columns
// of t. t is not modified.
func ToGeometry(t *Table) (*GeoTable, error) {
	const op = "ToGeometry"
	lat, ok := t.Float(Latitude)
	if !ok {
		return nil, validationErrorf(op, "missing numeric column %q", Latitude)
	}
	lon, ok := t.Float(Longitude)
	if !ok {
		return nil, validationErrorf(op, "missing numeric column %q", Longitude)
	}
	g := make([]geom.Geom, len(lat))
	for i := range lat {
		if isMissing(lat[i]) || isMissing(lon[i]) {
			return nil, validationErrorf(op, "row %d is missing a coordinate", i)
		}
		g[i] = geom.Point{X: lon[i], Y: lat[i]}
	}
	return &GeoTable{
		Table:    t.Drop(Latitude, Longitude),
		Geometry: g,
	}, nil
}
