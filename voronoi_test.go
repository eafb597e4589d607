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
	"reflect"
	"testing"

	"github.com/ctessum/geom"
)

func TestVoronoiPolygons(t *testing.T) {
	seeds := []geom.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 5, Y: 10}, {X: 5, Y: 3}}
	polys := VoronoiPolygons(seeds)
	if len(polys) != len(seeds) {
		t.Fatalf("got %d polygons, want %d", len(polys), len(seeds))
	}
	for i := 0; i < 3; i++ {
		if len(polys[i]) != 0 {
			t.Errorf("hull seed %d: got %v, want empty polygon", i, polys[i])
		}
	}
	cell := polys[3]
	if len(cell) != 1 {
		t.Fatalf("interior cell: got %d rings", len(cell))
	}
	ring := cell[0]
	if len(ring) != 4 || ring[0] != ring[len(ring)-1] {
		t.Errorf("interior cell should be a closed triangle; got %v", ring)
	}
	if w := seeds[3].Within(cell); w != geom.Inside {
		t.Errorf("interior cell does not contain its seed: %v", w)
	}
	if a := cell.Area(); a <= 0 {
		t.Errorf("interior cell area: %g", a)
	}
}

func TestVoronoiPolygonsOrder(t *testing.T) {
	// A jittered 3x3 lattice has a single interior seed. Its cell must
	// be returned at the seed's position wherever that is in the input.
	base := []geom.Point{
		{X: 0, Y: 0}, {X: 1.01, Y: -0.02}, {X: 2, Y: 0.03},
		{X: -0.04, Y: 1}, {X: 0.03, Y: 2.01}, {X: 1.02, Y: 2.05},
		{X: 2.05, Y: 1.03}, {X: 2.02, Y: 2.02},
	}
	center := geom.Point{X: 1.005, Y: 0.995}
	for pos := 0; pos <= len(base); pos++ {
		seeds := append(append(append([]geom.Point{}, base[:pos]...), center), base[pos:]...)
		polys := VoronoiPolygons(seeds)
		for i, p := range polys {
			if i == pos {
				if len(p) == 0 || center.Within(p) != geom.Inside {
					t.Errorf("position %d: interior cell %v does not contain its seed", pos, p)
				}
			} else if len(p) != 0 {
				t.Errorf("position %d: hull seed %d has a bounded cell", pos, i)
			}
		}
	}
}

func TestVoronoiPolygonsLattice(t *testing.T) {
	var seeds []geom.Point
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			seeds = append(seeds, geom.Point{X: float64(x), Y: float64(y)})
		}
	}
	polys := VoronoiPolygons(seeds)
	for i, p := range polys {
		s := seeds[i]
		interior := s.X > 0 && s.X < 4 && s.Y > 0 && s.Y < 4
		if !interior {
			if len(p) != 0 {
				t.Errorf("hull seed %v: got %v, want empty polygon", s, p)
			}
			continue
		}
		if len(p) != 1 || len(p[0]) != 5 {
			t.Errorf("seed %v: got %v, want a closed square", s, p)
			continue
		}
		if a := p.Area(); math.Abs(a-1) > 1e-9 {
			t.Errorf("seed %v: area %g, want 1", s, a)
		}
		if w := s.Within(p); w != geom.Inside {
			t.Errorf("seed %v is not inside its cell: %v", s, w)
		}
	}
}

func TestVoronoiPolygonsDuplicate(t *testing.T) {
	seeds := []geom.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 5, Y: 3}, {X: 5, Y: 10}, {X: 5, Y: 3}}
	polys := VoronoiPolygons(seeds)
	if len(polys[2]) != 1 {
		t.Errorf("first of duplicate seeds: got %v, want a bounded cell", polys[2])
	}
	if len(polys[4]) != 0 {
		t.Errorf("repeated seed: got %v, want empty polygon", polys[4])
	}
}

func TestVoronoiPolygonsDegenerate(t *testing.T) {
	for _, test := range []struct {
		name  string
		seeds []geom.Point
	}{
		{"none", nil},
		{"two", []geom.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}},
		{"collinear", []geom.Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 3}}},
		{"triangle", []geom.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}},
		{"near collinear", []geom.Point{{X: 0, Y: 0}, {X: 1, Y: 1e-9}, {X: 2, Y: 0}, {X: 3, Y: 1e-9}}},
		{"repeated", []geom.Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 1, Y: 1}, {X: 0, Y: 0}}},
	} {
		t.Run(test.name, func(t *testing.T) {
			polys := VoronoiPolygons(test.seeds)
			if len(polys) != len(test.seeds) {
				t.Fatalf("got %d polygons, want %d", len(polys), len(test.seeds))
			}
			for i, p := range polys {
				if len(p) != 0 {
					t.Errorf("seed %d: got %v, want empty polygon", i, p)
				}
			}
		})
	}
}

func TestVoronoiTiling(t *testing.T) {
	seeds := &GeoTable{
		Geometry: []geom.Geom{
			geom.Point{X: 0, Y: 0}, geom.Point{X: 10, Y: 0},
			geom.Point{X: 5, Y: 10}, geom.Point{X: 5, Y: 3},
		},
	}
	v, err := NewVoronoiTiling(seeds, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(v.Warnings()) != 1 || v.Warnings()[0].Kind != NumericIndex {
		t.Errorf("warnings: got %v", v.Warnings())
	}
	ids, err := v.Assign(points(5, 3.1, 4.9, 2.9, 100, 100, 0.01, 0.01))
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"3", "3", Unassigned, Unassigned}; !reflect.DeepEqual(ids, want) {
		t.Errorf("got %q, want %q", ids, want)
	}
	if _, err := v.Geometry("3"); err != nil {
		t.Error(err)
	}
}

func TestVoronoiTilingSeedAttributes(t *testing.T) {
	tab := NewTable()
	tab.AddString("station", []string{"A", "B", "C", "D"})
	tab.AddFloat("elevation", []float64{1, 2, 3, 4})
	seeds := &GeoTable{
		Table: tab,
		Geometry: []geom.Geom{
			geom.Point{X: 0, Y: 0}, geom.Point{X: 10, Y: 0},
			geom.Point{X: 5, Y: 10}, geom.Point{X: 5, Y: 3},
		},
	}
	v, err := NewVoronoiTiling(seeds, []string{"station"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(v.Warnings()) != 0 {
		t.Errorf("unexpected warnings: %v", v.Warnings())
	}
	ids, attrs := v.Attributes()
	if want := []string{"A", "B", "C", "D"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("ids: got %q, want %q", ids, want)
	}
	if want := []string{"elevation"}; !reflect.DeepEqual(attrs.Columns(), want) {
		t.Errorf("attribute columns: got %q, want %q", attrs.Columns(), want)
	}

	seeds.Geometry[0] = geom.MultiPoint{{X: 0, Y: 0}}
	if _, err := NewVoronoiTiling(seeds, []string{"station"}, nil); err == nil {
		t.Error("want an error for non-point seeds")
	}
}
