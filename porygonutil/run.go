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

package porygonutil

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/skratchdot/open-golang/open"
	"github.com/spatialmodel/porygon"
	"github.com/spatialmodel/porygon/cloud"
	"github.com/spatialmodel/porygon/render"
)

// countColumn is the column of ones added to points that have no
// column to aggregate.
const countColumn = "count"

// Run aggregates the points configured in c onto tiling and writes
// the resulting polygons and map.
func Run(ctx context.Context, c *Config, tiling porygon.Tiling) error {
	if c.Log == nil {
		c.Log = logrus.StandardLogger()
	}
	reduce, err := reducer(c.Reduce)
	if err != nil {
		return err
	}
	output, err := checkOutputFile(c.Output)
	if err != nil {
		return err
	}
	mapFile, err := checkOutputFile(c.Map)
	if err != nil {
		return err
	}
	key, err := readColorKey(c.ColorKey)
	if err != nil {
		return err
	}

	in, err := readTable(ctx, c.Points, c.Rename, "")
	if err != nil {
		return err
	}
	pts, err := selectColumn(in, c.Column)
	if err != nil {
		return err
	}
	zoomScale := c.ZoomScale
	if zoomScale == 0 {
		zoomScale = porygon.DefaultZoomScale
	}
	t, err := porygon.FromPoints(pts, tiling, reduce, porygon.ZoomScale(zoomScale), porygon.WithLogger(c.Log))
	if err != nil {
		return err
	}
	c.Log.WithFields(logrus.Fields{
		"polygons": t.Len(),
		"column":   c.Column,
		"reduce":   c.Reduce,
	}).Info("porygon: aggregated points")

	u := new(cloud.Uploader)
	if output != "" {
		if err := writeOutput(u.Local(output), t); err != nil {
			return err
		}
	}
	if mapFile != "" {
		m, err := drawMap(t, c, key)
		if err != nil {
			return err
		}
		if err := writeMap(u.Local(mapFile), m); err != nil {
			return err
		}
	}
	if err := u.Upload(ctx); err != nil {
		return err
	}
	if mapFile != "" && c.Open {
		if cloud.IsBlob(mapFile) {
			c.Log.Warnf("porygon: not opening map saved to blob storage at %s", mapFile)
			return nil
		}
		if err := open.Run(mapFile); err != nil {
			return fmt.Errorf("porygon: opening map: %v", err)
		}
	}
	return nil
}

// selectColumn keeps only the coordinates and the named column of
// the points in in. If in has no column of that name and name is
// "count", a column of ones is added instead.
func selectColumn(in interface{}, name string) (interface{}, error) {
	keep := func(t *porygon.Table, n int) (*porygon.Table, error) {
		var drop []string
		for _, c := range t.Columns() {
			if c != porygon.Latitude && c != porygon.Longitude && c != name {
				drop = append(drop, c)
			}
		}
		o := t.Drop(drop...)
		if t.Has(name) {
			return o, nil
		}
		if name != countColumn {
			return nil, fmt.Errorf("porygon: points have no column %q; columns are %q", name, t.Columns())
		}
		ones := make([]float64, n)
		for i := range ones {
			ones[i] = 1
		}
		if err := o.AddFloat(countColumn, ones); err != nil {
			return nil, err
		}
		return o, nil
	}
	switch t := in.(type) {
	case *porygon.Table:
		return keep(t, t.Len())
	case *porygon.GeoTable:
		o, err := keep(t.Table, t.Len())
		if err != nil {
			return nil, err
		}
		return porygon.NewGeoTable(t.Geometry, o)
	default:
		return nil, fmt.Errorf("porygon: unsupported points input %T", in)
	}
}

// drawMap draws t as a categorical map if c.Category is set and as a
// choropleth otherwise.
func drawMap(t *porygon.PolygonTable, c *Config, key render.ColorKey) (*render.Map, error) {
	if t.Empty() {
		c.Log.Warn("porygon: no points were assigned to polygons; the map will be empty")
		return render.NewMap(t), nil
	}
	if c.Category == "" {
		return render.ChoroplethMap(t, c.Column, c.Scale)
	}
	return render.CategoricalMap(t, c.Column, c.Category, render.CategoricalOptions{
		Key:     key,
		NaNFill: c.NaNFill,
		Title:   c.Title,
	})
}

// writeOutput saves t to path as a shapefile if path has the .shp
// extension and as a GeoJSON FeatureCollection otherwise.
func writeOutput(path string, t *porygon.PolygonTable) error {
	if strings.ToLower(filepath.Ext(path)) == ".shp" {
		return porygon.WriteShapefile(path, t)
	}
	b, err := json.Marshal(t.FeatureCollection())
	if err != nil {
		return fmt.Errorf("porygon: encoding GeoJSON: %v", err)
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		return fmt.Errorf("porygon: writing GeoJSON: %v", err)
	}
	return nil
}

func writeMap(path string, m *render.Map) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("porygon: creating map file: %v", err)
	}
	if err := m.WriteHTML(f); err != nil {
		f.Close()
		return fmt.Errorf("porygon: writing map: %v", err)
	}
	return f.Close()
}
