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
	"encoding/json"
	"fmt"
	"math"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/geojson"
)

// Feature is a polygon with its identifier and attribute values.
type Feature struct {
	ID         string
	Geometry   geom.Polygonal
	Properties map[string]interface{}
}

// FeatureCollection is the exported form of a PolygonTable. It
// marshals to GeoJSON.
type FeatureCollection struct {
	Features []*Feature
}

// FeatureCollection returns one feature per row of t, in row order.
// Properties hold every attribute column; missing numeric values are nil.
func (t *PolygonTable) FeatureCollection() *FeatureCollection {
	fc := &FeatureCollection{Features: make([]*Feature, len(t.ids))}
	cols := t.cols.Columns()
	for i, id := range t.ids {
		f := &Feature{
			ID:         id,
			Geometry:   t.geoms[i],
			Properties: make(map[string]interface{}, len(cols)),
		}
		for _, name := range cols {
			if v, ok := t.cols.Float(name); ok {
				if math.IsNaN(v[i]) || math.IsInf(v[i], 0) {
					f.Properties[name] = nil
				} else {
					f.Properties[name] = v[i]
				}
				continue
			}
			s, _ := t.cols.String(name)
			f.Properties[name] = s[i]
		}
		fc.Features[i] = f
	}
	return fc
}

type geoJSONFeature struct {
	Type       string                 `json:"type"`
	ID         string                 `json:"id"`
	Geometry   *geojson.Geometry      `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

type geoJSONFeatureCollection struct {
	Type     string            `json:"type"`
	Features []*geoJSONFeature `json:"features"`
}

// MarshalJSON encodes fc as a GeoJSON FeatureCollection.
func (fc *FeatureCollection) MarshalJSON() ([]byte, error) {
	o := geoJSONFeatureCollection{
		Type:     "FeatureCollection",
		Features: make([]*geoJSONFeature, len(fc.Features)),
	}
	for i, f := range fc.Features {
		g, err := encodePolygonal(f.Geometry)
		if err != nil {
			return nil, fmt.Errorf("porygon: encoding feature %q: %w", f.ID, err)
		}
		props := f.Properties
		if props == nil {
			props = map[string]interface{}{}
		}
		o.Features[i] = &geoJSONFeature{
			Type:       "Feature",
			ID:         f.ID,
			Geometry:   g,
			Properties: props,
		}
	}
	return json.Marshal(o)
}

// encodePolygonal converts p to GeoJSON. Multi-polygons are assembled
// from their encoded parts.
func encodePolygonal(p geom.Polygonal) (*geojson.Geometry, error) {
	switch g := p.(type) {
	case geom.Polygon:
		return geojson.ToGeoJSON(g)
	case geom.MultiPolygon:
		coords := make([]interface{}, len(g))
		for i, pp := range g {
			gj, err := geojson.ToGeoJSON(pp)
			if err != nil {
				return nil, err
			}
			coords[i] = gj.Coordinates
		}
		return &geojson.Geometry{Type: "MultiPolygon", Coordinates: coords}, nil
	default:
		return nil, fmt.Errorf("unsupported geometry type %T", p)
	}
}
