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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/porygon"
	"github.com/spatialmodel/porygon/cloud"
	"github.com/spatialmodel/porygon/render"
	"github.com/spf13/cast"
)

// Config holds the settings of one aggregation run.
type Config struct {
	// Points is the path to the point observations.
	Points string

	// Rename maps input CSV column names to porygon column names.
	Rename map[string]string

	// Output and Map are the paths of the GeoJSON and HTML outputs.
	// Either can be empty to skip it.
	Output, Map string

	Column, Reduce string

	// Category, if set, selects a categorical map colored by this
	// polygon attribute, with colors from the TOML file ColorKey.
	Category, ColorKey, Title string

	Scale, NaNFill string
	ZoomScale      float64
	Open           bool

	Log logrus.FieldLogger
}

// GetStringMapString returns a map[string]string from a viper configuration,
// accounting for the fact that it might be a json object if it was set
// from a command line argument.
func GetStringMapString(varName string, cfg *viper.Viper) map[string]string {
	i := cfg.Get(varName)
	switch v := i.(type) {
	case map[string]string:
		return v
	case map[string]interface{}:
		return cast.ToStringMapString(v)
	case string:
		o := make(map[string]string)
		if strings.TrimSpace(v) == "" {
			return o
		}
		d := json.NewDecoder(bytes.NewBufferString(v))
		if err := d.Decode(&o); err != nil {
			panic(fmt.Errorf("porygon: invalid value for %s: %v", varName, err))
		}
		return o
	case nil:
		return nil
	default:
		panic(fmt.Errorf("invalid type for getStringMapString variable %s: %#v", varName, i))
	}
}

// checkOutputFile makes sure that the output file directory exists,
// and expands any environment variables. Empty paths are allowed and
// mean that the output is not written.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", nil
	}
	f = os.ExpandEnv(f)
	if cloud.IsBlob(f) {
		return f, nil
	}
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("porygon: the output directory doesn't exist: %v", err)
	}
	return f, nil
}

// reducer returns the named built-in reducer.
func reducer(name string) (porygon.Reducer, error) {
	r, ok := porygon.Reducers[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("porygon: invalid reduce function %q; options are sum, mean, count, min, max and median", name)
	}
	return r, nil
}

// readColorKey reads a TOML file of category = "color" pairs.
func readColorKey(path string) (render.ColorKey, error) {
	if path == "" {
		return nil, nil
	}
	key := make(render.ColorKey)
	if _, err := toml.DecodeFile(os.ExpandEnv(path), &key); err != nil {
		return nil, fmt.Errorf("porygon: reading color key: %v", err)
	}
	return key, nil
}

// localFile returns a local copy of path, downloading it and any
// shapefile sidecar files if it is in blob storage. The returned
// function removes the downloaded files.
func localFile(ctx context.Context, path string) (string, func(), error) {
	path = os.ExpandEnv(path)
	if !cloud.IsBlob(path) {
		return path, func() {}, nil
	}
	dir, err := os.MkdirTemp("", "porygon")
	if err != nil {
		return "", nil, fmt.Errorf("porygon: creating download directory: %v", err)
	}
	cleanup := func() { os.RemoveAll(dir) }
	local, err := cloud.Download(ctx, path, dir)
	if err != nil {
		cleanup()
		return "", nil, err
	}
	return local, cleanup, nil
}

func isGeoJSON(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson", ".json":
		return true
	}
	return false
}

// readTable reads the CSV or GeoJSON file at path. CSV files are
// returned as a *porygon.Table and GeoJSON files as a
// *porygon.GeoTable whose idProperty has become the "id" column.
func readTable(ctx context.Context, path string, rename map[string]string, idProperty string) (interface{}, error) {
	if path == "" {
		return nil, fmt.Errorf("porygon: no input file specified")
	}
	local, cleanup, err := localFile(ctx, path)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	f, err := os.Open(local)
	if err != nil {
		return nil, fmt.Errorf("porygon: opening input: %v", err)
	}
	defer f.Close()
	if isGeoJSON(local) {
		return porygon.ReadGeoJSON(f, idProperty)
	}
	return porygon.ReadCSV(f, rename)
}

// readPolygons reads the GeoJSON file or shapefile at path.
func readPolygons(ctx context.Context, path, idField string) (*porygon.GeoTable, error) {
	if path == "" {
		return nil, fmt.Errorf("porygon: no boundaries file specified")
	}
	local, cleanup, err := localFile(ctx, path)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	if strings.ToLower(filepath.Ext(local)) == ".shp" {
		return porygon.ReadShapefile(local, idField)
	}
	f, err := os.Open(local)
	if err != nil {
		return nil, fmt.Errorf("porygon: opening boundaries: %v", err)
	}
	defer f.Close()
	return porygon.ReadGeoJSON(f, idField)
}

// BoundaryTiling reads the boundary polygons at path, which are
// identified by the idField property, and returns a tiling of them.
func BoundaryTiling(ctx context.Context, path, idField string, spatialIndex bool, log logrus.FieldLogger) (*porygon.BoundaryTiling, error) {
	g, err := readPolygons(ctx, path, idField)
	if err != nil {
		return nil, err
	}
	b, err := porygon.NewBoundaries(g, []string{porygon.IDColumn}, log)
	if err != nil {
		return nil, err
	}
	var opts []porygon.BoundaryOption
	if spatialIndex {
		opts = append(opts, porygon.WithSpatialIndex())
	}
	log.WithField("boundaries", b.Len()).Info("porygon: read boundaries")
	return porygon.NewBoundaryTiling(b, opts...), nil
}

// VoronoiTiling reads the seed points at path and returns a tiling of
// their Voronoi cells. Seeds without an idField property are numbered
// in file order.
func VoronoiTiling(ctx context.Context, path, idField string, spatialIndex bool, log logrus.FieldLogger) (*porygon.VoronoiTiling, error) {
	if path == "" {
		return nil, fmt.Errorf("porygon: no seeds file specified")
	}
	var rename map[string]string
	if idField != "" {
		rename = map[string]string{idField: porygon.IDColumn}
	}
	in, err := readTable(ctx, path, rename, idField)
	if err != nil {
		return nil, err
	}
	var seeds *porygon.GeoTable
	switch t := in.(type) {
	case *porygon.GeoTable:
		seeds = t
	case *porygon.Table:
		if seeds, err = porygon.ToGeometry(t); err != nil {
			return nil, err
		}
	}
	var index []string
	if seeds.Table.Has(porygon.IDColumn) {
		index = []string{porygon.IDColumn}
	}
	var opts []porygon.BoundaryOption
	if spatialIndex {
		opts = append(opts, porygon.WithSpatialIndex())
	}
	v, err := porygon.NewVoronoiTiling(seeds, index, log, opts...)
	if err != nil {
		return nil, err
	}
	var empty int
	for _, p := range v.Polygons() {
		if len(p) == 0 {
			empty++
		}
	}
	log.WithFields(logrus.Fields{
		"seeds":     seeds.Len(),
		"unbounded": empty,
	}).Info("porygon: computed Voronoi cells")
	return v, nil
}
