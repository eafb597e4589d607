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

// Package porygonutil is the command-line interface to porygon.
package porygonutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/porygon"
	"github.com/spatialmodel/porygon/render"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to porygon.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "points",
			usage: `
              points is the path to the point observations: a CSV file with
              "latitude" and "longitude" columns or a GeoJSON FeatureCollection
              of points. It can be a blob location (gs://, s3:// or file://).`,
			shorthand:  "p",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "rename",
			usage: `
              rename maps input CSV column names to the names used by porygon,
              for example {"LATITUDE":"latitude","LONGITUDE":"longitude"}.`,
			defaultVal: map[string]string{},
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "output",
			usage: `
              output is the path where the aggregated polygons are saved: as a
              shapefile if it ends in .shp and as a GeoJSON FeatureCollection
              otherwise. It can be a blob location. If it is empty, the polygons
              are not saved.`,
			shorthand:  "o",
			defaultVal: "porygon.geojson",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "map",
			usage: `
              map is the path where the HTML web map is saved. It can be a blob
              location. If it is empty, no map is drawn.`,
			defaultVal: "porygon.html",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "column",
			usage: `
              column is the numeric point column to aggregate and map. If the
              points have no column of this name and it is "count", a column
              of ones is added so that the sum reduction counts points.`,
			shorthand:  "c",
			defaultVal: "count",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "reduce",
			usage: `
              reduce is the function that combines the values of column within
              each polygon. Options are sum, mean, count, min, max and median.`,
			shorthand:  "r",
			defaultVal: "sum",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "category",
			usage: `
              category is a text attribute of the polygons (for example a
              boundary property) used to draw a categorical map instead of a
              choropleth.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "colorkey",
			usage: `
              colorkey is the path to a TOML file assigning colors to categories,
              for example 'Loop = "#e8000b"'. If it is empty, colors are assigned
              to categories in order of decreasing frequency.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "title",
			usage: `
              title is the title of the categorical map legend.`,
			defaultVal: "Legend",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "scale",
			usage: `
              scale is the color scale of choropleth maps.`,
			defaultVal: render.DefaultScale,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "nanfill",
			usage: `
              nanfill is the fill color of polygons without a value or whose
              category has no color.`,
			defaultVal: render.NaNFill,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "zoomscale",
			usage: `
              zoomscale scales the extent of the polygons to the suggested
              initial map zoom level.`,
			defaultVal: porygon.DefaultZoomScale,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "open",
			usage: `
              open specifies whether to open the map in a web browser once it
              has been saved.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "loglevel",
			usage: `
              loglevel is the logging level: debug, info, warning or error.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "resolution",
			usage: `
              resolution is the H3 grid resolution, from 0 (coarsest) to 15.`,
			defaultVal: 8,
			flagsets:   []*pflag.FlagSet{hexCmd.Flags()},
		},
		{
			name: "boundaries",
			usage: `
              boundaries is the path to the polygons that points are assigned
              to: a GeoJSON FeatureCollection or a shapefile.`,
			shorthand:  "b",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{boundariesCmd.Flags()},
		},
		{
			name: "idfield",
			usage: `
              idfield is the property of the boundaries or seeds that uniquely
              identifies each of them. For GeoJSON, if it is empty the feature
              ids are used.`,
			defaultVal: "id",
			flagsets:   []*pflag.FlagSet{boundariesCmd.Flags(), voronoiCmd.Flags()},
		},
		{
			name: "spatialindex",
			usage: `
              spatialindex specifies whether to use a spatial index to find the
              polygon containing each point. It is faster for many polygons and
              gives the same result.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{boundariesCmd.Flags(), voronoiCmd.Flags()},
		},
		{
			name: "seeds",
			usage: `
              seeds is the path to the seed points of the Voronoi cells that
              points are assigned to: a GeoJSON FeatureCollection of points or a
              CSV file with "latitude" and "longitude" columns.`,
			shorthand:  "s",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{voronoiCmd.Flags()},
		},
		{
			name: "bucket",
			usage: `
              bucket is the directory or blob storage bucket holding the maps
              to serve, for example file://maps or gs://my-maps.`,
			defaultVal: "file://.",
			flagsets:   []*pflag.FlagSet{serveCmd.Flags()},
		},
		{
			name: "address",
			usage: `
              address is the network address the server listens on.`,
			defaultVal: ":10000",
			flagsets:   []*pflag.FlagSet{serveCmd.Flags()},
		},
		{
			name: "tlscert",
			usage: `
              tlscert is the path to a TLS certificate. If it and tlskey are set
              the server uses HTTPS.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{serveCmd.Flags()},
		},
		{
			name: "tlskey",
			usage: `
              tlskey is the path to the private key of tlscert.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{serveCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("PORYGON")
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			case map[string]string:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(option.defaultVal)
				s := string(b.Bytes())
				if option.shorthand == "" {
					set.String(option.name, s, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, s, option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(hexCmd)
	Root.AddCommand(boundariesCmd)
	Root.AddCommand(voronoiCmd)
	Root.AddCommand(serveCmd)
}

// setConfig finds and reads in the configuration file, if there is one,
// and sets up logging.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("porygon: problem reading configuration file: %v", err)
		}
	}
	level, err := logrus.ParseLevel(Cfg.GetString("loglevel"))
	if err != nil {
		return fmt.Errorf("porygon: invalid loglevel: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339Nano,
	})
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "porygon",
	Short: "Aggregate points onto polygons and map them.",
	Long: `porygon aggregates point observations (for example traffic crashes) onto
polygons and draws the result as an interactive web map. Points can be assigned
to hexagonal grid cells, to boundaries such as census tracts, or to the Voronoi
cells of a set of seed points; use the subcommands specified below to choose.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'PORYGON_var' where 'var' is the
name of the variable to be set. Paths are additionally allowed to contain
environment variables within them.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of porygon.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("porygon v%s\n", porygon.Version)
	},
	DisableAutoGenTag: true,
}

var hexCmd = &cobra.Command{
	Use:   "hex",
	Short: "Aggregate points onto hexagonal grid cells.",
	Long: `hex assigns each point to the cell of the H3 hexagonal grid that contains it
at the configured resolution, then aggregates and maps the cells.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tiling, err := porygon.NewHexTiling(Cfg.GetInt("resolution"))
		if err != nil {
			return err
		}
		return Run(cmd.Context(), configFromCfg(), tiling)
	},
	DisableAutoGenTag: true,
}

var boundariesCmd = &cobra.Command{
	Use:   "boundaries",
	Short: "Aggregate points onto boundary polygons.",
	Long: `boundaries assigns each point to the boundary polygon (for example a census
tract) that strictly contains it, then aggregates and maps the polygons. Points on
a polygon edge or outside every polygon are left out.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		tiling, err := BoundaryTiling(ctx, Cfg.GetString("boundaries"), Cfg.GetString("idfield"),
			Cfg.GetBool("spatialindex"), logrus.StandardLogger())
		if err != nil {
			return err
		}
		return Run(ctx, configFromCfg(), tiling)
	},
	DisableAutoGenTag: true,
}

var voronoiCmd = &cobra.Command{
	Use:   "voronoi",
	Short: "Aggregate points onto the Voronoi cells of seed points.",
	Long: `voronoi computes the Voronoi cells of the configured seed points and assigns
each point to the cell that contains it. Cells of seeds on the convex hull of
the seeds are unbounded and receive no points.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		tiling, err := VoronoiTiling(ctx, Cfg.GetString("seeds"), Cfg.GetString("idfield"),
			Cfg.GetBool("spatialindex"), logrus.StandardLogger())
		if err != nil {
			return err
		}
		return Run(ctx, configFromCfg(), tiling)
	},
	DisableAutoGenTag: true,
}

// configFromCfg gathers the options shared by all of the
// aggregation commands.
func configFromCfg() *Config {
	return &Config{
		Points:    Cfg.GetString("points"),
		Rename:    GetStringMapString("rename", Cfg),
		Output:    Cfg.GetString("output"),
		Map:       Cfg.GetString("map"),
		Column:    Cfg.GetString("column"),
		Reduce:    Cfg.GetString("reduce"),
		Category:  Cfg.GetString("category"),
		ColorKey:  Cfg.GetString("colorkey"),
		Title:     Cfg.GetString("title"),
		Scale:     Cfg.GetString("scale"),
		NaNFill:   Cfg.GetString("nanfill"),
		ZoomScale: Cfg.GetFloat64("zoomscale"),
		Open:      Cfg.GetBool("open"),
		Log:       logrus.StandardLogger(),
	}
}
