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

// Package render draws porygon polygon tables as interactive Leaflet
// web maps.
package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"math"
	"regexp"
	"sort"

	"github.com/spatialmodel/porygon"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Style is the Leaflet path style of one feature.
type Style struct {
	FillColor   string  `json:"fillColor"`
	FillOpacity float64 `json:"fillOpacity"`
	Color       string  `json:"color"`
	Weight      float64 `json:"weight"`
	Opacity     float64 `json:"opacity"`
}

// Layer is a set of styled features with an optional legend.
type Layer struct {
	Name     string
	Features *porygon.FeatureCollection
	Styles   map[string]Style  // by feature id
	Tooltips map[string]string // by feature id, as escaped HTML

	// Legend is rendered alongside the map. It is either an image of
	// a color bar or an HTML fragment listing categories.
	LegendImage template.URL
	LegendHTML  template.HTML

	Warnings []porygon.ConfigurationWarning
}

// NaNFill is the fill color of features that have no value or whose
// category has no color.
const NaNFill = "black"

var colorPattern = regexp.MustCompile(`^(#[0-9a-fA-F]{3,8}|[a-zA-Z]+|(rgb|hsl)a?\([0-9.,%\s]+\))$`)

// checkColor returns an error if c is not a hex, named, rgb or hsl
// CSS color.
func checkColor(c string) error {
	if !colorPattern.MatchString(c) {
		return fmt.Errorf("render: invalid color %q", c)
	}
	return nil
}

// Choropleth returns a layer that shades each feature of fc by its
// value in values, using the named color scale (see Scale). Features
// without a finite value are filled with NaNFill.
func Choropleth(fc *porygon.FeatureCollection, values map[string]float64, scale, label string) (*Layer, error) {
	min, max := math.Inf(1), math.Inf(-1)
	for _, f := range fc.Features {
		v, ok := values[f.ID]
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		min = math.Min(min, v)
		max = math.Max(max, v)
	}
	if math.IsInf(min, 1) {
		min, max = 0, 1
	}
	cm, err := Scale(scale, min, max)
	if err != nil {
		return nil, err
	}
	l := &Layer{
		Name:     label,
		Features: fc,
		Styles:   make(map[string]Style, len(fc.Features)),
		Tooltips: make(map[string]string, len(fc.Features)),
	}
	for _, f := range fc.Features {
		fill := NaNFill
		v, ok := values[f.ID]
		if ok && !math.IsNaN(v) && !math.IsInf(v, 0) {
			c, err := cm.At(v)
			if err != nil {
				return nil, fmt.Errorf("render: choropleth color for %s=%g: %w", f.ID, v, err)
			}
			fill = cssColor(c)
			l.Tooltips[f.ID] = template.HTMLEscapeString(fmt.Sprintf("%s: %.4g", f.ID, v))
		} else {
			l.Tooltips[f.ID] = template.HTMLEscapeString(fmt.Sprintf("%s: no data", f.ID))
		}
		l.Styles[f.ID] = Style{FillColor: fill, FillOpacity: 0.7, Color: "black", Weight: 1, Opacity: 0.2}
	}
	l.LegendImage, err = colorBar(cm, label)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// colorBar draws a horizontal color bar for cm and returns it as a PNG
// data URL.
func colorBar(cm palette.ColorMap, label string) (template.URL, error) {
	const (
		width  = 3.7 * vg.Inch
		height = 0.6 * vg.Inch
	)
	p := plot.New()
	p.Add(&plotter.ColorBar{ColorMap: cm})
	p.HideY()
	p.X.Padding = 0
	p.X.Label.Text = label

	img := vgimg.New(width, height)
	p.Draw(draw.New(img))
	var b bytes.Buffer
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(&b); err != nil {
		return "", fmt.Errorf("render: drawing legend: %w", err)
	}
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(b.Bytes())), nil
}

// DefaultPalette holds the colors assigned to categories, most
// frequent first, when no color key is given.
var DefaultPalette = []string{
	// deep
	"#4c72b0", "#dd8452", "#55a868", "#c44e52", "#8172b3",
	"#937860", "#da8bc3", "#8c8c8c", "#ccb974", "#64b5cd",
	// bright
	"#023eff", "#ff7c00", "#1ac938", "#e8000b", "#8b2be2",
	"#9f4800", "#f14cc1", "#a3a3a3", "#ffc400", "#00d7ff",
}

// ColorKey maps categories to CSS colors.
type ColorKey map[string]string

// CategoricalOptions configures a categorical layer.
type CategoricalOptions struct {
	// Key assigns colors to categories. If it is nil a key is derived
	// from DefaultPalette.
	Key ColorKey

	// NaNFill is the fill color for features whose category has no
	// color. The default is NaNFill.
	NaNFill string

	// Title heads the legend. The default is "Legend".
	Title string
}

// DeriveColorKey assigns colors from palette to the categories in
// categories, in order of decreasing frequency with ties broken by
// name. If there are more categories than colors, the least frequent
// categories are left out and a warning is returned.
func DeriveColorKey(categories map[string]string, palette []string) (ColorKey, []porygon.ConfigurationWarning) {
	order := byFrequency(categories)
	var warnings []porygon.ConfigurationWarning
	if len(order) > len(palette) {
		warnings = append(warnings, porygon.Warn(nil, porygon.TooManyCategories,
			"%d categories but only %d colors; %d categories will be drawn without a color",
			len(order), len(palette), len(order)-len(palette)))
		order = order[:len(palette)]
	}
	key := make(ColorKey, len(order))
	for i, c := range order {
		key[c] = palette[i]
	}
	return key, warnings
}

func byFrequency(categories map[string]string) []string {
	count := make(map[string]int)
	for _, c := range categories {
		if c != "" {
			count[c]++
		}
	}
	order := make([]string, 0, len(count))
	for c := range count {
		order = append(order, c)
	}
	sort.Slice(order, func(i, j int) bool {
		if count[order[i]] != count[order[j]] {
			return count[order[i]] > count[order[j]]
		}
		return order[i] < order[j]
	})
	return order
}

// Categorical returns a layer that colors each feature of fc by its
// category, with a legend listing the categories in the color key.
// Tooltips show each feature's category and value.
func Categorical(fc *porygon.FeatureCollection, categories map[string]string, values map[string]float64, opts CategoricalOptions) (*Layer, error) {
	if opts.NaNFill == "" {
		opts.NaNFill = NaNFill
	}
	if opts.Title == "" {
		opts.Title = "Legend"
	}
	l := &Layer{
		Name:     opts.Title,
		Features: fc,
		Styles:   make(map[string]Style, len(fc.Features)),
		Tooltips: make(map[string]string, len(fc.Features)),
	}
	if err := checkColor(opts.NaNFill); err != nil {
		return nil, err
	}
	key := opts.Key
	if key == nil {
		key, l.Warnings = DeriveColorKey(categories, DefaultPalette)
	}
	for c, color := range key {
		if err := checkColor(color); err != nil {
			return nil, fmt.Errorf("%w for category %q", err, c)
		}
	}
	for _, f := range fc.Features {
		cat := categories[f.ID]
		fill, ok := key[cat]
		if !ok {
			fill = opts.NaNFill
		}
		l.Styles[f.ID] = Style{FillColor: fill, FillOpacity: 0.7, Color: fill, Weight: 2, Opacity: 0.7}
		tip := cat
		if v, ok := values[f.ID]; ok && !math.IsNaN(v) {
			tip = fmt.Sprintf("%s: %.4g", cat, v)
		}
		l.Tooltips[f.ID] = template.HTMLEscapeString(tip)
	}

	// The legend follows the order of frequency on the map, then any
	// key entries that do not appear.
	var order []string
	seen := make(map[string]bool)
	for _, c := range byFrequency(categories) {
		if _, ok := key[c]; ok {
			order = append(order, c)
			seen[c] = true
		}
	}
	var rest []string
	for c := range key {
		if !seen[c] {
			rest = append(rest, c)
		}
	}
	sort.Strings(rest)
	order = append(order, rest...)

	var b bytes.Buffer
	if err := legendTemplate.Execute(&b, struct {
		Title string
		Items []legendItem
	}{Title: opts.Title, Items: legendItems(order, key)}); err != nil {
		return nil, fmt.Errorf("render: categorical legend: %w", err)
	}
	l.LegendHTML = template.HTML(b.String())
	return l, nil
}

type legendItem struct {
	Color    template.CSS
	Category string
}

func legendItems(order []string, key ColorKey) []legendItem {
	o := make([]legendItem, len(order))
	for i, c := range order {
		o[i] = legendItem{Color: template.CSS("color:" + key[c]), Category: c}
	}
	return o
}

var legendTemplate = template.Must(template.New("legend").Parse(
	`<div class="porygon-legend-title">{{.Title}}</div>
<ul class="porygon-legend-items">
{{- range .Items}}
<li><span style="{{.Color}}">&#x2B22;</span> {{.Category}}</li>
{{- end}}
</ul>`))
