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
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/geojson"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/spf13/cast"
)

// ReadCSV reads a table with a header row from r. Columns whose
// non-empty values are all numbers are numeric, with empty values read
// as NaN. Other columns are read as text. Columns named as keys in
// rename are given the corresponding value as their name.
func ReadCSV(r io.Reader, rename map[string]string) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	recs, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("porygon: reading CSV: %w", err)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("porygon: reading CSV: missing header row")
	}
	header, rows := recs[0], recs[1:]
	cols := make([][]string, len(header))
	for j := range header {
		cols[j] = make([]string, len(rows))
		for i, row := range rows {
			cols[j][i] = strings.TrimSpace(row[j])
		}
	}
	t := NewTable()
	for j, name := range header {
		name = strings.TrimSpace(name)
		if n, ok := rename[name]; ok {
			name = n
		}
		if err := addParsed(t, name, cols[j]); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// addParsed adds v to t as a numeric column if every non-empty value
// is a number, and as a string column otherwise.
func addParsed(t *Table, name string, v []string) error {
	f := make([]float64, len(v))
	for i, s := range v {
		if s == "" {
			f[i] = math.NaN()
			continue
		}
		x, err := cast.ToFloat64E(s)
		if err != nil {
			return t.AddString(name, v)
		}
		f[i] = x
	}
	return t.AddFloat(name, f)
}

type geoJSONGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

type rawFeature struct {
	ID         interface{}            `json:"id"`
	Geometry   json.RawMessage        `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

// ReadGeoJSON reads a GeoJSON FeatureCollection. Feature properties
// become columns: numeric if every non-null value is a number, and text
// otherwise. The property named idProperty is renamed to "id"; if
// idProperty is empty, the feature "id" members are used instead, if
// present.
func ReadGeoJSON(r io.Reader, idProperty string) (*GeoTable, error) {
	var fc struct {
		Type     string       `json:"type"`
		Features []rawFeature `json:"features"`
	}
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return nil, fmt.Errorf("porygon: reading GeoJSON: %w", err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("porygon: reading GeoJSON: want FeatureCollection, got %q", fc.Type)
	}
	g := make([]geom.Geom, len(fc.Features))
	keys := make(map[string]bool)
	for i, f := range fc.Features {
		var err error
		g[i], err = decodeGeometry(f.Geometry)
		if err != nil {
			return nil, fmt.Errorf("porygon: reading GeoJSON feature %d: %w", i, err)
		}
		for k := range f.Properties {
			keys[k] = true
		}
	}
	names := make([]string, 0, len(keys))
	for k := range keys {
		names = append(names, k)
	}
	sort.Strings(names)

	t := NewTable()
	if idProperty == "" {
		hasID := false
		ids := make([]interface{}, len(fc.Features))
		for i, f := range fc.Features {
			ids[i] = f.ID
			hasID = hasID || f.ID != nil
		}
		if hasID {
			if keys[IDColumn] {
				return nil, fmt.Errorf("porygon: reading GeoJSON: features have both an id member and an %q property", IDColumn)
			}
			if err := addValues(t, IDColumn, ids); err != nil {
				return nil, err
			}
		}
	} else if !keys[idProperty] {
		return nil, fmt.Errorf("porygon: reading GeoJSON: no property %q", idProperty)
	}
	for _, name := range names {
		v := make([]interface{}, len(fc.Features))
		for i, f := range fc.Features {
			v[i] = f.Properties[name]
		}
		col := name
		if name == idProperty {
			col = IDColumn
		} else if name == IDColumn && idProperty != "" {
			continue
		}
		if err := addValues(t, col, v); err != nil {
			return nil, err
		}
	}
	return &GeoTable{Table: t, Geometry: g}, nil
}

// addValues adds decoded JSON values to t.
func addValues(t *Table, name string, v []interface{}) error {
	f := make([]float64, len(v))
	numeric := true
	for i, x := range v {
		switch xx := x.(type) {
		case nil:
			f[i] = math.NaN()
		case float64:
			f[i] = xx
		default:
			numeric = false
		}
	}
	if numeric {
		return t.AddFloat(name, f)
	}
	s := make([]string, len(v))
	for i, x := range v {
		if x != nil {
			s[i] = cast.ToString(x)
		}
	}
	return t.AddString(name, s)
}

// decodeGeometry decodes a GeoJSON geometry object.
// MultiPolygons are decoded one part at a time.
func decodeGeometry(raw json.RawMessage) (geom.Geom, error) {
	var gj geoJSONGeometry
	if err := json.Unmarshal(raw, &gj); err != nil {
		return nil, err
	}
	if gj.Type != "MultiPolygon" {
		return geojson.Decode(raw)
	}
	var parts []json.RawMessage
	if err := json.Unmarshal(gj.Coordinates, &parts); err != nil {
		return nil, err
	}
	mp := make(geom.MultiPolygon, len(parts))
	for i, part := range parts {
		b, err := json.Marshal(geoJSONGeometry{Type: "Polygon", Coordinates: part})
		if err != nil {
			return nil, err
		}
		p, err := geojson.Decode(b)
		if err != nil {
			return nil, err
		}
		poly, ok := p.(geom.Polygon)
		if !ok {
			return nil, fmt.Errorf("decoding multipolygon part %d: got %T", i, p)
		}
		mp[i] = poly
	}
	return mp, nil
}

// ReadShapefile reads the shapefile at path. The values of idField
// become the "id" column and the values of the other named fields
// become columns, numeric where every value is a number. If no fields
// are named, all fields are read.
func ReadShapefile(path, idField string, fields ...string) (*GeoTable, error) {
	d, err := shp.NewDecoder(path)
	if err != nil {
		return nil, fmt.Errorf("porygon: opening shapefile: %w", err)
	}
	defer d.Close()
	if len(fields) == 0 {
		for _, f := range d.Reader.Fields() {
			if name := f.String(); name != idField {
				fields = append(fields, name)
			}
		}
	}
	names := append([]string{idField}, fields...)
	vals := make(map[string][]string, len(names))
	var g []geom.Geom
	for {
		gg, row, more := d.DecodeRowFields(names...)
		if !more {
			break
		}
		g = append(g, gg)
		for _, n := range names {
			vals[n] = append(vals[n], strings.TrimSpace(row[n]))
		}
	}
	if err := d.Error(); err != nil {
		return nil, fmt.Errorf("porygon: reading shapefile: %w", err)
	}
	t := NewTable()
	if err := t.AddString(IDColumn, vals[idField]); err != nil {
		return nil, err
	}
	for _, n := range fields {
		if err := addParsed(t, n, vals[n]); err != nil {
			return nil, err
		}
	}
	return &GeoTable{Table: t, Geometry: g}, nil
}
