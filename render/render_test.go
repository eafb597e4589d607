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

package render

import (
	"bytes"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/ctessum/geom"
	"github.com/spatialmodel/porygon"
)

func square(x, y, size float64) geom.Polygon {
	return geom.Polygon{{{X: x, Y: y}, {X: x + size, Y: y}, {X: x + size, Y: y + size}, {X: x, Y: y + size}, {X: x, Y: y}}}
}

// crashTable returns a table of four tracts along Lake Shore Drive.
func crashTable(t *testing.T) *porygon.PolygonTable {
	tab := porygon.NewTable()
	if err := tab.AddString("name", []string{"a", "b", "c", "d"}); err != nil {
		t.Fatal(err)
	}
	if err := tab.AddFloat("crashes", []float64{3, 10, math.NaN(), 7}); err != nil {
		t.Fatal(err)
	}
	if err := tab.AddString("cause", []string{"speeding", "weather", "speeding", ""}); err != nil {
		t.Fatal(err)
	}
	g := &porygon.GeoTable{Table: tab, Geometry: []geom.Geom{
		square(-87.62, 41.88, 0.01), square(-87.61, 41.88, 0.01),
		square(-87.62, 41.89, 0.01), square(-87.61, 41.89, 0.01),
	}}
	p, err := porygon.NewPolygonTable(g, []string{"name"})
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestScale(t *testing.T) {
	for _, name := range ScaleNames() {
		t.Run(name, func(t *testing.T) {
			cm, err := Scale(name, 2, 12)
			if err != nil {
				t.Fatal(err)
			}
			if cm.Min() != 2 || cm.Max() != 12 {
				t.Errorf("range: got [%g, %g], want [2, 12]", cm.Min(), cm.Max())
			}
			for _, v := range []float64{2, 7, 12} {
				if _, err := cm.At(v); err != nil {
					t.Errorf("At(%g): %v", v, err)
				}
			}
		})
	}
	t.Run("light to dark", func(t *testing.T) {
		cm, err := Scale("YlOrRd", 0, 1)
		if err != nil {
			t.Fatal(err)
		}
		lo, _ := cm.At(0)
		hi, _ := cm.At(1)
		if lightness(lo) <= lightness(hi) {
			t.Errorf("low values should be lighter: %v, %v", lo, hi)
		}
	})
	t.Run("unknown", func(t *testing.T) {
		if _, err := Scale("Rainbow", 0, 1); err == nil {
			t.Error("want error for unknown scale")
		}
	})
	t.Run("single value", func(t *testing.T) {
		cm, err := Scale("", 5, 5)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := cm.At(5); err != nil {
			t.Error(err)
		}
	})
}

func lightness(c interface{ RGBA() (r, g, b, a uint32) }) uint32 {
	r, g, b, _ := c.RGBA()
	return r + g + b
}

func TestChoropleth(t *testing.T) {
	p := crashTable(t)
	m, err := ChoroplethMap(p, "crashes", "")
	if err != nil {
		t.Fatal(err)
	}
	l := m.Layers[0]
	if got := l.Styles["c"].FillColor; got != NaNFill {
		t.Errorf("missing value fill: got %s, want %s", got, NaNFill)
	}
	if l.Styles["a"].FillColor == l.Styles["b"].FillColor {
		t.Error("min and max should have different colors")
	}
	if !strings.HasPrefix(string(l.LegendImage), "data:image/png;base64,") {
		t.Errorf("legend should be a PNG data URL, got %.30s", l.LegendImage)
	}
	if got, want := l.Tooltips["b"], "b: 10"; got != want {
		t.Errorf("tooltip: got %q, want %q", got, want)
	}
	if _, err := ChoroplethMap(p, "cause", ""); err == nil {
		t.Error("want error for string column")
	}
	if _, err := ChoroplethMap(p, "crashes", "Rainbow"); err == nil {
		t.Error("want error for unknown scale")
	}
}

func TestDeriveColorKey(t *testing.T) {
	cats := map[string]string{
		"1": "weather", "2": "speeding", "3": "speeding",
		"4": "alcohol", "5": "weather", "6": "speeding", "7": "",
	}
	key, warnings := DeriveColorKey(cats, DefaultPalette)
	want := ColorKey{
		"speeding": DefaultPalette[0],
		"weather":  DefaultPalette[1],
		"alcohol":  DefaultPalette[2],
	}
	if !reflect.DeepEqual(key, want) {
		t.Errorf("got %v, want %v", key, want)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings %v", warnings)
	}

	key, warnings = DeriveColorKey(cats, []string{"red", "blue"})
	want = ColorKey{"speeding": "red", "weather": "blue"}
	if !reflect.DeepEqual(key, want) {
		t.Errorf("truncated: got %v, want %v", key, want)
	}
	if len(warnings) != 1 || warnings[0].Kind != porygon.TooManyCategories {
		t.Errorf("want one TooManyCategories warning, got %v", warnings)
	}
}

func TestCategorical(t *testing.T) {
	p := crashTable(t)
	t.Run("derived key", func(t *testing.T) {
		m, err := CategoricalMap(p, "crashes", "cause", CategoricalOptions{})
		if err != nil {
			t.Fatal(err)
		}
		l := m.Layers[0]
		if got, want := l.Styles["a"].FillColor, DefaultPalette[0]; got != want {
			t.Errorf("a: got %s, want %s", got, want)
		}
		if got, want := l.Styles["b"].FillColor, DefaultPalette[1]; got != want {
			t.Errorf("b: got %s, want %s", got, want)
		}
		if got := l.Styles["d"].FillColor; got != NaNFill {
			t.Errorf("d: got %s, want %s", got, NaNFill)
		}
		if s := l.Styles["a"]; s.Weight != 2 || s.Opacity != 0.7 {
			t.Errorf("style: got %+v", s)
		}
		if got, want := l.Tooltips["a"], "speeding: 3"; got != want {
			t.Errorf("tooltip: got %q, want %q", got, want)
		}
		if got, want := l.Tooltips["c"], "speeding"; got != want {
			t.Errorf("tooltip without value: got %q, want %q", got, want)
		}
		legend := string(l.LegendHTML)
		if !strings.Contains(legend, "Legend") || !strings.Contains(legend, "&#x2B22;") {
			t.Errorf("legend: %s", legend)
		}
		if i, j := strings.Index(legend, "speeding"), strings.Index(legend, "weather"); i < 0 || j < i {
			t.Errorf("legend should list speeding before weather: %s", legend)
		}
	})
	t.Run("explicit key", func(t *testing.T) {
		m, err := CategoricalMap(p, "crashes", "cause", CategoricalOptions{
			Key:     ColorKey{"weather": "#0000ff"},
			NaNFill: "grey",
			Title:   "Primary cause",
		})
		if err != nil {
			t.Fatal(err)
		}
		l := m.Layers[0]
		if got := l.Styles["b"].FillColor; got != "#0000ff" {
			t.Errorf("b: got %s", got)
		}
		if got := l.Styles["a"].FillColor; got != "grey" {
			t.Errorf("a: got %s, want grey", got)
		}
		if l.Name != "Primary cause" || !strings.Contains(string(l.LegendHTML), "Primary cause") {
			t.Errorf("title not applied: %s", l.LegendHTML)
		}
	})
	t.Run("markup", func(t *testing.T) {
		fc := p.FeatureCollection()
		l, err := Categorical(fc, map[string]string{"a": "<b>speeding</b>"}, nil, CategoricalOptions{})
		if err != nil {
			t.Fatal(err)
		}
		if got, want := l.Tooltips["a"], "&lt;b&gt;speeding&lt;/b&gt;"; got != want {
			t.Errorf("tooltip: got %q, want %q", got, want)
		}
		if strings.Contains(string(l.LegendHTML), "<b>") {
			t.Errorf("legend contains markup: %s", l.LegendHTML)
		}
	})
	t.Run("invalid color", func(t *testing.T) {
		for _, opts := range []CategoricalOptions{
			{Key: ColorKey{"weather": "red;background:url(x)"}},
			{NaNFill: "</style>"},
		} {
			if _, err := CategoricalMap(p, "crashes", "cause", opts); err == nil {
				t.Errorf("%+v: want error", opts)
			}
		}
		if _, err := CategoricalMap(p, "crashes", "cause", CategoricalOptions{
			Key: ColorKey{"weather": "rgb(0, 0, 255)", "speeding": "#e8000b"},
		}); err != nil {
			t.Error(err)
		}
	})
	t.Run("wrong columns", func(t *testing.T) {
		if _, err := CategoricalMap(p, "cause", "cause", CategoricalOptions{}); err == nil {
			t.Error("want error for string value column")
		}
		if _, err := CategoricalMap(p, "crashes", "crashes", CategoricalOptions{}); err == nil {
			t.Error("want error for numeric category column")
		}
	})
}

func TestWriteHTML(t *testing.T) {
	p := crashTable(t)
	m, err := ChoroplethMap(p, "crashes", "Blues")
	if err != nil {
		t.Fatal(err)
	}
	lat, lon, _ := p.Centroid()
	if m.Center != [2]float64{lat, lon} {
		t.Errorf("center: got %v, want [%g %g]", m.Center, lat, lon)
	}
	var b bytes.Buffer
	if err := m.WriteHTML(&b); err != nil {
		t.Fatal(err)
	}
	page := b.String()
	for _, want := range []string{"leaflet.js", `"FeatureCollection"`, `"fillColor"`, "data:image/png;base64,"} {
		if !strings.Contains(page, want) {
			t.Errorf("page is missing %s", want)
		}
	}

	var b2 bytes.Buffer
	if err := m.WriteHTML(&b2); err != nil {
		t.Fatal(err)
	}
	if b.String() != b2.String() {
		t.Error("output should be deterministic")
	}
}

func TestNewMapEmpty(t *testing.T) {
	m := NewMap(porygon.EmptyPolygonTable())
	if m.Center != [2]float64{} || m.Zoom != 1 {
		t.Errorf("got center %v zoom %d", m.Center, m.Zoom)
	}
	var b bytes.Buffer
	if err := m.WriteHTML(&b); err != nil {
		t.Fatal(err)
	}
}
