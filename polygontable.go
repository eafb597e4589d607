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
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
)

// DefaultZoomScale is the default multiplier relating the spread of
// polygon centroids to the suggested map zoom level.
const DefaultZoomScale = 35.0

type config struct {
	zoomScale float64
	log       logrus.FieldLogger
}

func newConfig(opts []Option) *config {
	c := &config{
		zoomScale: DefaultZoomScale,
		log:       logrus.StandardLogger(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Option configures the construction of a PolygonTable.
type Option func(*config)

// ZoomScale sets the multiplier used to derive the suggested zoom level.
func ZoomScale(k float64) Option {
	return func(c *config) { c.zoomScale = k }
}

// WithLogger sets the logger that receives warnings and progress
// messages. The default is the logrus standard logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *config) {
		if log != nil {
			c.log = log
		}
	}
}

// PolygonTable is a set of polygons, uniquely indexed by identifier,
// each with zero or more attribute columns. A table with rows has a
// centroid and suggested zoom level, derived from its geometry when it
// is constructed. Apart from adding columns, a PolygonTable cannot be
// changed after construction.
type PolygonTable struct {
	ids   []string
	geoms []geom.Polygonal
	cols  *Table
	byID  map[string]int

	derived  bool
	centroid geom.Point
	zoom     int

	warnings []ConfigurationWarning
}

// EmptyPolygonTable returns a table with no rows and no derived attributes.
func EmptyPolygonTable() *PolygonTable {
	return &PolygonTable{
		cols: NewTable(),
		byID: make(map[string]int),
	}
}

// NewPolygonTable creates a PolygonTable from g. index names the
// column holding the polygon identifiers; if it is empty, row positions
// are used as identifiers and a warning is raised. The identifiers must
// be unique and the geometries must be polygons or multi-polygons.
func NewPolygonTable(g *GeoTable, index []string, opts ...Option) (*PolygonTable, error) {
	const op = "NewPolygonTable"
	c := newConfig(opts)
	if err := checkGeoTable(op, g); err != nil {
		return nil, err
	}
	if g.Len() == 0 && len(index) <= 1 {
		return EmptyPolygonTable(), nil
	}
	ids, warnings, err := indexIDs(op, g.Table, g.Len(), index, c.log)
	if err != nil {
		return nil, err
	}
	cols := g.Table.Copy()
	if len(index) == 1 {
		cols = cols.Drop(index[0])
	}
	t, err := newPolygonTable(op, ids, g.Geometry, cols, c)
	if err != nil {
		return nil, err
	}
	t.warnings = append(warnings, t.warnings...)
	return t, nil
}

func newPolygonTable(op string, ids []string, g []geom.Geom, cols *Table, c *config) (*PolygonTable, error) {
	geoms, err := polygonal(op, g)
	if err != nil {
		return nil, err
	}
	t := &PolygonTable{
		ids:   ids,
		geoms: geoms,
		cols:  cols,
		byID:  make(map[string]int, len(ids)),
	}
	for i, id := range ids {
		if _, ok := t.byID[id]; ok {
			return nil, validationErrorf(op, "index is not unique: duplicate id %q", id)
		}
		t.byID[id] = i
	}
	for _, name := range cols.Columns() {
		if name == IDColumn || name == Geometry {
			return nil, validationErrorf(op, "column name %q is reserved", name)
		}
	}
	if len(ids) > 0 {
		t.derive(c.zoomScale)
	}
	return t, nil
}

// Construct merges aggregated values with the polygons of the tiling
// that produced them, along with any attribute columns the tiling
// provides. Identifiers the tiling has no polygon for are dropped. An
// aggregation with no rows results in an empty table.
func Construct(agg *Aggregation, tiling Tiling, opts ...Option) (*PolygonTable, error) {
	const op = "Construct"
	c := newConfig(opts)
	var (
		ids  []string
		g    []geom.Geom
		rows []int
	)
	for i, id := range agg.IDs {
		p, err := tiling.Geometry(id)
		if err != nil {
			c.log.WithError(err).WithField("id", id).Debug("porygon: dropping aggregated values with no polygon")
			continue
		}
		ids = append(ids, id)
		g = append(g, p)
		rows = append(rows, i)
	}
	if len(ids) == 0 {
		return EmptyPolygonTable(), nil
	}
	cols := NewTable()
	for i, name := range agg.Columns {
		v := make([]float64, len(rows))
		for j, r := range rows {
			v[j] = agg.Values[i][r]
		}
		if err := cols.AddFloat(name, v); err != nil {
			return nil, err
		}
	}
	if err := mergeAttributes(cols, ids, tiling, c.log); err != nil {
		return nil, err
	}
	return newPolygonTable(op, ids, g, cols, c)
}

// mergeAttributes adds the attribute columns of tiling to cols, which
// has one row for each of ids.
func mergeAttributes(cols *Table, ids []string, tiling Tiling, log logrus.FieldLogger) error {
	attrIDs, attrs := tiling.Attributes()
	if attrs == nil {
		return nil
	}
	rows := make(map[string]int, len(attrIDs))
	for i, id := range attrIDs {
		rows[id] = i
	}
	for _, name := range attrs.Columns() {
		if cols.Has(name) {
			log.WithField("column", name).Debug("porygon: boundary attribute shadowed by aggregated column")
			continue
		}
		if src, ok := attrs.Float(name); ok {
			v := make([]float64, len(ids))
			for i, id := range ids {
				v[i] = math.NaN()
				if r, ok := rows[id]; ok {
					v[i] = src[r]
				}
			}
			if err := cols.AddFloat(name, v); err != nil {
				return err
			}
			continue
		}
		src, _ := attrs.String(name)
		v := make([]string, len(ids))
		for i, id := range ids {
			if r, ok := rows[id]; ok {
				v[i] = src[r]
			}
		}
		if err := cols.AddString(name, v); err != nil {
			return err
		}
	}
	return nil
}

// derive computes the centroid and zoom level from the polygon
// centroids. The centroid is the mean of the polygon centroids and the
// zoom level is k times the larger of the 5th to 95th percentile
// ranges of the centroid coordinates, rounded.
func (t *PolygonTable) derive(k float64) {
	var xs, ys []float64
	for _, g := range t.geoms {
		if isEmpty(g) {
			continue
		}
		c := g.Centroid()
		if math.IsNaN(c.X) || math.IsNaN(c.Y) {
			continue
		}
		xs = append(xs, c.X)
		ys = append(ys, c.Y)
	}
	if len(xs) == 0 {
		return
	}
	t.centroid = geom.Point{X: stat.Mean(xs, nil), Y: stat.Mean(ys, nil)}
	spread := math.Max(interQuantileRange(xs), interQuantileRange(ys))
	t.zoom = int(math.RoundToEven(k * spread))
	t.derived = true
}

func interQuantileRange(v []float64) float64 {
	s := append([]float64(nil), v...)
	sort.Float64s(s)
	return quantile(0.95, s) - quantile(0.05, s)
}

// quantile returns the p quantile of the sorted values x, interpolating
// linearly between the order statistics at position (n-1)p.
func quantile(p float64, x []float64) float64 {
	h := float64(len(x)-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= len(x) {
		return x[len(x)-1]
	}
	return x[i] + (h-lo)*(x[i+1]-x[i])
}

// Len returns the number of rows.
func (t *PolygonTable) Len() int { return len(t.ids) }

// Empty returns whether t has no rows.
func (t *PolygonTable) Empty() bool { return len(t.ids) == 0 }

// IDs returns the polygon identifiers in row order.
func (t *PolygonTable) IDs() []string { return append([]string(nil), t.ids...) }

// Geometry returns the polygon with the given identifier.
func (t *PolygonTable) Geometry(id string) (geom.Polygonal, bool) {
	i, ok := t.byID[id]
	if !ok {
		return nil, false
	}
	return t.geoms[i], true
}

// Columns returns the attribute column names.
func (t *PolygonTable) Columns() []string { return t.cols.Columns() }

// Float returns a copy of the named numeric column, in row order.
func (t *PolygonTable) Float(name string) ([]float64, bool) {
	v, ok := t.cols.Float(name)
	return append([]float64(nil), v...), ok
}

// String returns a copy of the named string column, in row order.
func (t *PolygonTable) String(name string) ([]string, bool) {
	v, ok := t.cols.String(name)
	return append([]string(nil), v...), ok
}

// Centroid returns the mean latitude and longitude of the polygon
// centroids. ok is false for an empty table.
func (t *PolygonTable) Centroid() (lat, lon float64, ok bool) {
	return t.centroid.Y, t.centroid.X, t.derived
}

// Zoom returns the suggested map zoom level. ok is false for an empty
// table.
func (t *PolygonTable) Zoom() (zoom int, ok bool) { return t.zoom, t.derived }

// Warnings returns the warnings raised while constructing t.
func (t *PolygonTable) Warnings() []ConfigurationWarning { return t.warnings }

func (t *PolygonTable) checkAdd(name string) error {
	const op = "PolygonTable.Add"
	if name == IDColumn || name == Geometry {
		return validationErrorf(op, "column name %q is reserved", name)
	}
	if t.cols.Has(name) {
		return validationErrorf(op, "column %q already exists", name)
	}
	return nil
}

// AddFloat adds a numeric column. Rows whose identifiers are missing
// from values are set to NaN. Derived attributes are not affected.
func (t *PolygonTable) AddFloat(name string, values map[string]float64) error {
	if err := t.checkAdd(name); err != nil {
		return err
	}
	v := make([]float64, len(t.ids))
	for i, id := range t.ids {
		if x, ok := values[id]; ok {
			v[i] = x
		} else {
			v[i] = math.NaN()
		}
	}
	return t.cols.AddFloat(name, v)
}

// AddString adds a string column. Rows whose identifiers are missing
// from values are set to "". Derived attributes are not affected.
func (t *PolygonTable) AddString(name string, values map[string]string) error {
	if err := t.checkAdd(name); err != nil {
		return err
	}
	v := make([]string, len(t.ids))
	for i, id := range t.ids {
		v[i] = values[id]
	}
	return t.cols.AddString(name, v)
}
