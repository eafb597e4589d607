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
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"math"

	"github.com/spatialmodel/porygon"
	"github.com/spatialmodel/porygon/internal/hash"
)

// Map is a Leaflet web map of one or more layers.
type Map struct {
	// Center is the initial map center as (latitude, longitude).
	Center [2]float64
	Zoom   int
	Layers []*Layer
}

// NewMap returns a map centered on t with t's suggested zoom level.
// A map of an empty table is centered on (0, 0) at zoom 1.
func NewMap(t *porygon.PolygonTable) *Map {
	m := &Map{Zoom: 1}
	if lat, lon, ok := t.Centroid(); ok {
		m.Center = [2]float64{lat, lon}
	}
	if z, ok := t.Zoom(); ok {
		m.Zoom = z
	}
	return m
}

// ChoroplethMap returns a map of t shaded by the numeric column col.
func ChoroplethMap(t *porygon.PolygonTable, col, scale string) (*Map, error) {
	v, ok := t.Float(col)
	if !ok {
		return nil, fmt.Errorf("render: choropleth: table has no numeric column %q", col)
	}
	ids := t.IDs()
	values := make(map[string]float64, len(ids))
	for i, id := range ids {
		values[id] = v[i]
	}
	l, err := Choropleth(t.FeatureCollection(), values, scale, col)
	if err != nil {
		return nil, err
	}
	m := NewMap(t)
	m.Layers = append(m.Layers, l)
	return m, nil
}

// CategoricalMap returns a map of t colored by the string column
// catCol, with tooltips showing the numeric column valCol.
func CategoricalMap(t *porygon.PolygonTable, valCol, catCol string, opts CategoricalOptions) (*Map, error) {
	v, ok := t.Float(valCol)
	if !ok {
		return nil, fmt.Errorf("render: categorical: table has no numeric column %q", valCol)
	}
	c, ok := t.String(catCol)
	if !ok {
		return nil, fmt.Errorf("render: categorical: table has no string column %q", catCol)
	}
	ids := t.IDs()
	values := make(map[string]float64, len(ids))
	categories := make(map[string]string, len(ids))
	for i, id := range ids {
		values[id] = v[i]
		categories[id] = c[i]
	}
	l, err := Categorical(t.FeatureCollection(), categories, values, opts)
	if err != nil {
		return nil, err
	}
	m := NewMap(t)
	m.Layers = append(m.Layers, l)
	return m, nil
}

type layerData struct {
	ID          string
	Name        string
	Features    template.JS
	Styles      template.JS
	Tooltips    template.JS
	LegendImage template.URL
	LegendHTML  template.HTML
}

// WriteHTML writes m to w as a standalone HTML page.
func (m *Map) WriteHTML(w io.Writer) error {
	if math.IsNaN(m.Center[0]) || math.IsNaN(m.Center[1]) {
		return fmt.Errorf("render: invalid map center %v", m.Center)
	}
	id := "map_" + hash.Hash(m.Center)
	layers := make([]layerData, len(m.Layers))
	for i, l := range m.Layers {
		fc, err := json.Marshal(l.Features)
		if err != nil {
			return fmt.Errorf("render: layer %q: %w", l.Name, err)
		}
		styles, err := json.Marshal(l.Styles)
		if err != nil {
			return fmt.Errorf("render: layer %q: %w", l.Name, err)
		}
		tips, err := json.Marshal(l.Tooltips)
		if err != nil {
			return fmt.Errorf("render: layer %q: %w", l.Name, err)
		}
		layers[i] = layerData{
			ID:          hash.ID("layer", []interface{}{l.Name, i, string(fc)}),
			Name:        l.Name,
			Features:    template.JS(fc),
			Styles:      template.JS(styles),
			Tooltips:    template.JS(tips),
			LegendImage: l.LegendImage,
			LegendHTML:  l.LegendHTML,
		}
	}
	return pageTemplate.Execute(w, struct {
		ID     string
		Center [2]float64
		Zoom   int
		Layers []layerData
	}{ID: id, Center: m.Center, Zoom: m.Zoom, Layers: layers})
}

var pageTemplate = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>
html, body { height: 100%; margin: 0; }
#{{.ID}} { height: 100%; width: 100%; }
.porygon-legend { position: absolute; z-index: 9999; right: 20px; bottom: 20px;
  background: rgba(255,255,255,0.8); border: 2px solid grey; border-radius: 6px;
  padding: 10px; font-size: 14px; cursor: move; }
.porygon-legend-title { font-weight: bold; margin-bottom: 5px; }
.porygon-legend-items { list-style: none; margin: 0; padding: 0; }
.porygon-legend-items span { font-size: 18px; }
</style>
</head>
<body>
<div id="{{.ID}}"></div>
{{range .Layers}}{{if or .LegendImage .LegendHTML}}
<div class="porygon-legend" id="{{.ID}}_legend">
{{if .LegendImage}}<img src="{{.LegendImage}}" alt="{{.Name}}">{{end}}
{{.LegendHTML}}
</div>{{end}}{{end}}
<script>
var map = L.map({{.ID}}).setView([{{index .Center 0}}, {{index .Center 1}}], {{.Zoom}});
L.tileLayer("https://{s}.basemaps.cartocdn.com/light_all/{z}/{x}/{y}.png", {
  attribution: "&copy; OpenStreetMap contributors &copy; CARTO",
  maxZoom: 19
}).addTo(map);
function draggable(el) {
  var x0, y0;
  el.onmousedown = function(e) {
    x0 = e.clientX - el.offsetLeft; y0 = e.clientY - el.offsetTop;
    map.dragging.disable();
    document.onmousemove = function(e) {
      el.style.left = (e.clientX - x0) + "px"; el.style.top = (e.clientY - y0) + "px";
      el.style.right = "auto"; el.style.bottom = "auto";
    };
    document.onmouseup = function() {
      document.onmousemove = null; document.onmouseup = null;
      map.dragging.enable();
    };
  };
}
{{range .Layers}}
(function() {
  var styles = {{.Styles}};
  var tips = {{.Tooltips}};
  var layer = L.geoJSON({{.Features}}, {
    style: function(f) { return styles[f.id]; },
    onEachFeature: function(f, l) { if (tips[f.id]) { l.bindTooltip(tips[f.id]); } }
  }).addTo(map);
  layer.options.name = {{.Name}};
  var legend = document.getElementById({{printf "%s_legend" .ID}});
  if (legend) { draggable(legend); }
})();
{{end}}
</script>
</body>
</html>
`))
