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
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ctessum/geom"
)

func TestWriteShapefile(t *testing.T) {
	tab := NewTable()
	tab.AddString("name", []string{"loop", "lakeview"})
	tab.AddFloat("injuries_total", []float64{2, 7.5})
	tab.AddString("community", []string{"Loop", "Lake View"})
	g := &GeoTable{Table: tab, Geometry: []geom.Geom{
		square(0, 0, 1),
		geom.MultiPolygon{square(2, 0, 1), square(4, 0, 1)},
	}}
	p, err := NewPolygonTable(g, []string{"name"})
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "tracts.shp")
	if err := WriteShapefile(path, p); err != nil {
		t.Fatal(err)
	}
	for _, ext := range []string{".shp", ".dbf", ".shx", ".prj"} {
		if _, err := os.Stat(path[:len(path)-4] + ext); err != nil {
			t.Error(err)
		}
	}

	r, err := ReadShapefile(path, IDColumn)
	if err != nil {
		t.Fatal(err)
	}
	ids, _ := r.Table.String(IDColumn)
	if want := []string{"loop", "lakeview"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("ids: got %q, want %q", ids, want)
	}
	v, ok := r.Table.Float("injuries_t")
	if want := []float64{2, 7.5}; !ok || !reflect.DeepEqual(v, want) {
		t.Errorf("injuries: got %v, want %v", v, want)
	}
	c, _ := r.Table.String("community")
	if want := []string{"Loop", "Lake View"}; !reflect.DeepEqual(c, want) {
		t.Errorf("community: got %q, want %q", c, want)
	}
	if n := len(r.Geometry[1].(geom.Polygon)); n != 2 {
		t.Errorf("multipolygon should have 2 rings, got %d", n)
	}
}

func TestWriteShapefileFieldNames(t *testing.T) {
	tab := NewTable()
	tab.AddString("name", []string{"a"})
	tab.AddFloat("injuries_total", []float64{1})
	tab.AddFloat("injuries_fatal", []float64{0})
	g := &GeoTable{Table: tab, Geometry: []geom.Geom{square(0, 0, 1)}}
	p, err := NewPolygonTable(g, []string{"name"})
	if err != nil {
		t.Fatal(err)
	}
	err = WriteShapefile(filepath.Join(t.TempDir(), "x.shp"), p)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("got %v, want ValidationError", err)
	}
}
