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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	goshp "github.com/jonas-p/go-shp"
)

// wgs84 is the projection of shapefiles written by WriteShapefile.
const wgs84 = `GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137.0,298.257223563]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]]`

// maxFieldName is the longest allowed shapefile field name.
const maxFieldName = 10

// WriteShapefile saves t as a polygon shapefile at path, along with
// its .dbf, .shx and .prj files. The identifiers are saved in the "id"
// field. Column names longer than 10 characters are truncated.
func WriteShapefile(path string, t *PolygonTable) error {
	cols := t.Columns()
	fields := []goshp.Field{goshp.StringField(IDColumn, 254)}
	seen := map[string]string{IDColumn: IDColumn}
	for _, c := range cols {
		name := c
		if len(name) > maxFieldName {
			name = name[:maxFieldName]
		}
		if prev, ok := seen[name]; ok {
			return validationErrorf("WriteShapefile", "columns %q and %q have the same shapefile field name %q", prev, c, name)
		}
		seen[name] = c
		if t.cols.IsFloat(c) {
			fields = append(fields, goshp.FloatField(name, 14, 8))
		} else {
			fields = append(fields, goshp.StringField(name, 254))
		}
	}

	fileBase := strings.TrimSuffix(path, filepath.Ext(path))
	e, err := shp.NewEncoderFromFields(fileBase+".shp", goshp.POLYGON, fields...)
	if err != nil {
		return fmt.Errorf("porygon: creating shapefile: %w", err)
	}
	for i, id := range t.ids {
		vals := make([]interface{}, len(cols)+1)
		vals[0] = id
		for j, c := range cols {
			if v, ok := t.cols.Float(c); ok {
				vals[j+1] = v[i]
			} else {
				v, _ := t.cols.String(c)
				vals[j+1] = v[i]
			}
		}
		if err := e.EncodeFields(shapefilePolygon(t.geoms[i]), vals...); err != nil {
			e.Close()
			return fmt.Errorf("porygon: writing shapefile record %s: %w", id, err)
		}
	}
	e.Close()

	if err := os.WriteFile(fileBase+".prj", []byte(wgs84), 0644); err != nil {
		return fmt.Errorf("porygon: creating prj file: %w", err)
	}
	return nil
}

// shapefilePolygon returns the rings of p as a single polygon, which
// is how shapefiles store multi-part polygons.
func shapefilePolygon(p geom.Polygonal) geom.Polygon {
	switch t := p.(type) {
	case geom.Polygon:
		return t
	case geom.MultiPolygon:
		var o geom.Polygon
		for _, part := range t {
			o = append(o, part...)
		}
		return o
	}
	return nil
}
