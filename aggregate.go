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

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Reducer combines the values of one attribute column within one
// polygon into a single value. It is never called with an empty slice,
// and missing (NaN) values are removed before it is called.
type Reducer func(values []float64) float64

// Built-in reducers.
var (
	Sum   Reducer = floats.Sum
	Mean  Reducer = func(v []float64) float64 { return stat.Mean(v, nil) }
	Count Reducer = func(v []float64) float64 { return float64(len(v)) }
	Min   Reducer = floats.Min
	Max   Reducer = floats.Max

	Median Reducer = func(v []float64) float64 {
		s := append([]float64(nil), v...)
		sort.Float64s(s)
		n := len(s)
		if n%2 == 1 {
			return s[n/2]
		}
		return (s[n/2-1] + s[n/2]) / 2
	}
)

// Reducers maps reducer names to the built-in reducers.
var Reducers = map[string]Reducer{
	"sum":    Sum,
	"mean":   Mean,
	"count":  Count,
	"min":    Min,
	"max":    Max,
	"median": Median,
}

// Aggregation holds per-polygon reduced attribute values.
type Aggregation struct {
	// IDs holds the polygon identifiers in sorted order.
	IDs []string

	// Columns holds the names of the reduced attribute columns.
	Columns []string

	// Values holds the reduced values, indexed by column and then
	// by polygon: Values[c][i] is the value of Columns[c] for IDs[i].
	Values [][]float64

	// Assigned is the number of points that were included.
	Assigned int
}

// Aggregate groups the points in pts by the polygon identifiers in
// ids, which must hold one element per point, and reduces every
// attribute column within each group. Unassigned points are excluded.
// An attribute column named "id" is treated as a group key and is
// dropped.
func Aggregate(pts *PointTable, ids []string, reduce Reducer) (*Aggregation, error) {
	const op = "Aggregate"
	if reduce == nil {
		return nil, validationErrorf(op, "nil reducer")
	}
	if len(ids) != pts.Len() {
		return nil, validationErrorf(op, "got %d polygon ids for %d points", len(ids), pts.Len())
	}
	groups := make(map[string][]int)
	assigned := 0
	for i, id := range ids {
		if id == Unassigned {
			continue
		}
		groups[id] = append(groups[id], i)
		assigned++
	}
	a := &Aggregation{
		IDs:      make([]string, 0, len(groups)),
		Assigned: assigned,
	}
	for id := range groups {
		a.IDs = append(a.IDs, id)
	}
	sort.Strings(a.IDs)

	attrs := pts.Attributes.Drop(IDColumn)
	a.Columns = attrs.Columns()
	a.Values = make([][]float64, len(a.Columns))
	buf := make([]float64, 0, 16)
	for c, name := range a.Columns {
		col, _ := attrs.Float(name)
		out := make([]float64, len(a.IDs))
		for i, id := range a.IDs {
			buf = buf[:0]
			for _, r := range groups[id] {
				if !isMissing(col[r]) {
					buf = append(buf, col[r])
				}
			}
			if len(buf) == 0 {
				out[i] = math.NaN()
				continue
			}
			out[i] = reduce(buf)
		}
		a.Values[c] = out
	}
	return a, nil
}
