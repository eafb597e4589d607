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
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
)

func TestReadCSV(t *testing.T) {
	f, err := os.Open("testdata/crashes.csv")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	tab, err := ReadCSV(f, map[string]string{"injuries_total": "injuries"})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"crash_record_id", Latitude, Longitude, "injuries", "crash_type"}
	if !reflect.DeepEqual(tab.Columns(), want) {
		t.Errorf("columns: got %q, want %q", tab.Columns(), want)
	}
	if tab.IsFloat("crash_record_id") || tab.IsFloat("crash_type") {
		t.Error("text columns were read as numbers")
	}
	lat, ok := tab.Float(Latitude)
	if !ok || len(lat) != 4 || !math.IsNaN(lat[2]) || lat[0] != 41.8781 {
		t.Errorf("latitude: got %v", lat)
	}

	pts, err := ValidatePoints(tab.Drop("crash_record_id", "crash_type"))
	if err != nil {
		t.Fatal(err)
	}
	if pts.Len() != 3 || pts.Dropped != 1 {
		t.Errorf("got %d points and %d dropped", pts.Len(), pts.Dropped)
	}
}

func TestReadGeoJSON(t *testing.T) {
	f, err := os.Open("testdata/tracts.geojson")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	g, err := ReadGeoJSON(f, "geoid")
	if err != nil {
		t.Fatal(err)
	}
	if g.Len() != 2 {
		t.Fatalf("got %d rows", g.Len())
	}
	if _, ok := g.Geometry[0].(geom.Polygon); !ok {
		t.Errorf("geometry 0: got %T", g.Geometry[0])
	}
	if mp, ok := g.Geometry[1].(geom.MultiPolygon); !ok || len(mp) != 2 {
		t.Errorf("geometry 1: got %#v", g.Geometry[1])
	}
	if want := []string{"area_sqmi", IDColumn, "name"}; !reflect.DeepEqual(g.Table.Columns(), want) {
		t.Errorf("columns: got %q, want %q", g.Table.Columns(), want)
	}
	area, _ := g.Table.Float("area_sqmi")
	if area[0] != 0.38 || !math.IsNaN(area[1]) {
		t.Errorf("area: got %v", area)
	}

	b, err := NewBoundaries(g, []string{IDColumn}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(b.Warnings()) != 1 {
		t.Errorf("numeric tract ids should raise a warning; got %v", b.Warnings())
	}
	in := mustTable(t, map[string][]float64{
		Latitude:  {41.87, 41.88, 41.87, 41.95},
		Longitude: {-87.68, -87.62, -87.52, -87.62},
		"count":   {1, 1, 1, 1},
	}, Latitude, Longitude, "count")
	p, err := FromPoints(in, NewBoundaryTiling(b, WithSpatialIndex()), Sum)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"17031010100", "17031010201"}; !reflect.DeepEqual(p.IDs(), want) {
		t.Errorf("ids: got %q, want %q", p.IDs(), want)
	}
	counts, _ := p.Float("count")
	if want := []float64{1, 2}; !reflect.DeepEqual(counts, want) {
		t.Errorf("counts: got %v, want %v", counts, want)
	}
	names, _ := p.String("name")
	if want := []string{"Tract 101", "Tract 102.01"}; !reflect.DeepEqual(names, want) {
		t.Errorf("names: got %q, want %q", names, want)
	}
}

func TestReadShapefile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracts.shp")
	type tract struct {
		geom.Polygon
		TractID string
		Pop     float64
	}
	e, err := shp.NewEncoder(path, tract{})
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range []tract{
		{Polygon: square(0, 0, 1), TractID: "t1", Pop: 1200},
		{Polygon: square(1, 0, 1), TractID: "t2", Pop: 35.5},
	} {
		r := r
		if err := e.Encode(&r); err != nil {
			t.Fatal(err)
		}
	}
	e.Close()

	g, err := ReadShapefile(path, "TractID")
	if err != nil {
		t.Fatal(err)
	}
	if g.Len() != 2 {
		t.Fatalf("got %d rows", g.Len())
	}
	ids, _ := g.Table.String(IDColumn)
	if want := []string{"t1", "t2"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("ids: got %q, want %q", ids, want)
	}
	pop, ok := g.Table.Float("Pop")
	if !ok || pop[0] != 1200 || pop[1] != 35.5 {
		t.Errorf("Pop: got %v", pop)
	}
	if _, err := NewBoundaries(g, []string{IDColumn}, nil); err != nil {
		t.Error(err)
	}
}
