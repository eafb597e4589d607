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
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/ctessum/geom"
)

func mustTable(t *testing.T, floats map[string][]float64, order ...string) *Table {
	t.Helper()
	tab := NewTable()
	for _, name := range order {
		if err := tab.AddFloat(name, floats[name]); err != nil {
			t.Fatal(err)
		}
	}
	return tab
}

func TestLatLonRoundTrip(t *testing.T) {
	lat := []float64{41.881832, -33.8688, 0.1 + 0.2, 89.99999999999}
	lon := []float64{-87.623177, 151.2093, 1e-300, -179.5}
	in := mustTable(t, map[string][]float64{
		Latitude:  lat,
		Longitude: lon,
		"count":   {1, 2, 3, 4},
	}, Latitude, Longitude, "count")

	g, err := ToGeometry(in)
	if err != nil {
		t.Fatal(err)
	}
	if g.Table.Has(Latitude) || g.Table.Has(Longitude) {
		t.Errorf("coordinate columns were not removed: %v", g.Table.Columns())
	}
	for i, gg := range g.Geometry {
		p := gg.(geom.Point)
		if p.X != lon[i] || p.Y != lat[i] {
			t.Errorf("point %d: got %v", i, p)
		}
	}
	out, err := ToLatLon(g)
	if err != nil {
		t.Fatal(err)
	}
	gotLat, _ := out.Float(Latitude)
	gotLon, _ := out.Float(Longitude)
	if !reflect.DeepEqual(gotLat, lat) || !reflect.DeepEqual(gotLon, lon) {
		t.Errorf("round trip: got %v, %v; want %v, %v", gotLat, gotLon, lat, lon)
	}
	if _, ok := out.Float("count"); !ok {
		t.Error("attribute column lost")
	}

	// Inputs are left untouched.
	if !reflect.DeepEqual(in.Columns(), []string{Latitude, Longitude, "count"}) {
		t.Errorf("input was modified: %v", in.Columns())
	}
	g.Geometry[0] = geom.Point{X: 1, Y: 1}
	if v, _ := out.Float(Latitude); v[0] != lat[0] {
		t.Error("output aliases its input")
	}
}

func TestValidatePoints(t *testing.T) {
	nan := math.NaN()
	t.Run("latlon", func(t *testing.T) {
		in := mustTable(t, map[string][]float64{
			Latitude:  {1, nan, 3, 4},
			Longitude: {5, 6, nan, 8},
			"v":       {10, 20, 30, 40},
		}, Latitude, Longitude, "v")
		p, err := ValidatePoints(in)
		if err != nil {
			t.Fatal(err)
		}
		if p.Dropped != 2 {
			t.Errorf("dropped: got %d, want 2", p.Dropped)
		}
		if !reflect.DeepEqual(p.Latitude, []float64{1, 4}) || !reflect.DeepEqual(p.Longitude, []float64{5, 8}) {
			t.Errorf("coordinates: got %v, %v", p.Latitude, p.Longitude)
		}
		v, _ := p.Attributes.Float("v")
		if !reflect.DeepEqual(v, []float64{10, 40}) {
			t.Errorf("attributes: got %v", v)
		}
		if in.Len() != 4 {
			t.Error("input was modified")
		}
	})
	t.Run("infinite", func(t *testing.T) {
		in := mustTable(t, map[string][]float64{
			Latitude:  {1, nan, math.Inf(1)},
			Longitude: {5, 6, 7},
		}, Latitude, Longitude)
		_, err := ValidatePoints(in)
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("got %v, want ValidationError", err)
		}
		if !strings.Contains(err.Error(), "row 2") {
			t.Errorf("error %q does not name the row", err)
		}
	})
	t.Run("missing columns", func(t *testing.T) {
		in := mustTable(t, map[string][]float64{"lat": {1}}, "lat")
		_, err := ValidatePoints(in)
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("got %v, want ValidationError", err)
		}
		want := `missing coordinate column(s) "latitude", "longitude"`
		if ve.Reason != want {
			t.Errorf("reason: got %q, want %q", ve.Reason, want)
		}
	})
	t.Run("string attribute", func(t *testing.T) {
		in := mustTable(t, map[string][]float64{Latitude: {1}, Longitude: {2}}, Latitude, Longitude)
		if err := in.AddString("name", []string{"x"}); err != nil {
			t.Fatal(err)
		}
		var ve *ValidationError
		if _, err := ValidatePoints(in); !errors.As(err, &ve) {
			t.Errorf("got %v, want ValidationError", err)
		}
	})
	t.Run("points", func(t *testing.T) {
		g := &GeoTable{Geometry: []geom.Geom{geom.Point{X: 1, Y: 2}, geom.Point{X: 3, Y: 4}}}
		p, err := ValidatePoints(g)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(p.Latitude, []float64{2, 4}) || !reflect.DeepEqual(p.Longitude, []float64{1, 3}) {
			t.Errorf("coordinates: got %v, %v", p.Latitude, p.Longitude)
		}
	})
	t.Run("multipoint", func(t *testing.T) {
		g := &GeoTable{Geometry: []geom.Geom{
			geom.Point{X: 1, Y: 2},
			geom.MultiPoint{{X: 1, Y: 2}, {X: 3, Y: 4}},
		}}
		_, err := ValidatePoints(g)
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("got %v, want ValidationError", err)
		}
	})
	t.Run("nil geometry", func(t *testing.T) {
		g := &GeoTable{Geometry: []geom.Geom{nil}}
		var ve *ValidationError
		if _, err := ValidatePoints(g); !errors.As(err, &ve) {
			t.Errorf("got %v, want ValidationError", err)
		}
	})
	t.Run("unsupported", func(t *testing.T) {
		_, err := ValidatePoints([]float64{1, 2})
		var ue *UnsupportedInputError
		if !errors.As(err, &ue) {
			t.Fatalf("got %v, want UnsupportedInputError", err)
		}
		if ue.Type != "[]float64" {
			t.Errorf("type: got %q", ue.Type)
		}
	})
}
