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
	"sort"
	"strconv"

	"github.com/ctessum/geom"
	"github.com/sirupsen/logrus"
)

// indexIDs returns a unique string identifier for each of the n rows
// of t, taken from the single column named in index. With no index
// column the row positions are used.
func indexIDs(op string, t *Table, n int, index []string, log logrus.FieldLogger) ([]string, []ConfigurationWarning, error) {
	var warnings []ConfigurationWarning
	var ids []string
	switch len(index) {
	case 0:
		ids = make([]string, n)
		for i := range ids {
			ids[i] = strconv.Itoa(i)
		}
		if n > 0 {
			warnings = append(warnings, Warn(log, NumericIndex,
				"%s: using an integer range index; numeric identifiers may not be keyed correctly by map renderers", op))
		}
	case 1:
		name := index[0]
		if !t.Has(name) {
			return nil, nil, validationErrorf(op, "index column %q does not exist", name)
		}
		if s, ok := t.String(name); ok {
			ids = append([]string(nil), s...)
			for i, id := range ids {
				if id == "" {
					return nil, nil, validationErrorf(op, "index is missing a value at row %d", i)
				}
			}
		} else {
			f, _ := t.Float(name)
			ids = make([]string, len(f))
			for i, v := range f {
				if isMissing(v) {
					return nil, nil, validationErrorf(op, "index is missing a value at row %d", i)
				}
				ids[i] = strconv.FormatFloat(v, 'f', -1, 64)
			}
			if len(ids) > 0 {
				warnings = append(warnings, Warn(log, NumericIndex,
					"%s: index %q is numeric and has been converted to text", op, name))
			}
		}
		if len(ids) != n {
			return nil, nil, validationErrorf(op, "index has %d values but there are %d geometries", len(ids), n)
		}
	default:
		return nil, nil, validationErrorf(op, "index must be a single column; got composite index %s", quoteAll(index))
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return nil, nil, validationErrorf(op, "index is not unique: duplicate id %q", id)
		}
		seen[id] = true
	}
	return ids, warnings, nil
}

// checkGeoTable returns an error if the columns of g do not have one
// row per geometry.
func checkGeoTable(op string, g *GeoTable) error {
	if g == nil {
		return validationErrorf(op, "nil GeoTable")
	}
	if len(g.Table.Columns()) > 0 && g.Table.Len() != g.Len() {
		return validationErrorf(op, "table has %d rows but there are %d geometries", g.Table.Len(), g.Len())
	}
	return nil
}

// polygonal returns g as polygons, or an error if any element of g is
// not a geom.Polygon or geom.MultiPolygon.
func polygonal(op string, g []geom.Geom) ([]geom.Polygonal, error) {
	o := make([]geom.Polygonal, len(g))
	bad := make(map[string]bool)
	for i, gg := range g {
		switch p := gg.(type) {
		case geom.Polygon:
			o[i] = p
		case geom.MultiPolygon:
			o[i] = p
		default:
			bad[geomTypeName(gg)] = true
		}
	}
	if len(bad) > 0 {
		names := make([]string, 0, len(bad))
		for n := range bad {
			names = append(names, n)
		}
		sort.Strings(names)
		return nil, validationErrorf(op, "geometry must be Polygon or MultiPolygon; found %s", quoteAll(names))
	}
	return o, nil
}

// isEmpty returns whether p has no rings with enough vertices to
// enclose an area.
func isEmpty(p geom.Polygonal) bool {
	for _, pp := range p.Polygons() {
		for _, r := range pp {
			if len(r) >= 3 {
				return false
			}
		}
	}
	return true
}
