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
	"fmt"
	"image/color"
	"sort"

	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
)

// DefaultScale is the color scale used for choropleth maps when none
// is specified.
const DefaultScale = "YlOrRd"

// scales holds sequential color scales by name. The control colors of
// each are listed from darkest to lightest; reverse is set for scales
// that run from light at low values to dark at high values.
var scales = map[string]struct {
	controls []color.Color
	reverse  bool
}{
	"YlOrRd": {
		controls: []color.Color{hex(0x800026), hex(0xfd8d3c), hex(0xffffcc)},
		reverse:  true,
	},
	"Blues": {
		controls: []color.Color{hex(0x08306b), hex(0x6baed6), hex(0xf7fbff)},
		reverse:  true,
	},
	"Greens": {
		controls: []color.Color{hex(0x00441b), hex(0x74c476), hex(0xf7fcf5)},
		reverse:  true,
	},
	"Viridis": {
		controls: []color.Color{hex(0x440154), hex(0x21918c), hex(0xfde725)},
	},
}

func hex(v uint32) color.NRGBA {
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}

// ScaleNames returns the names of the available color scales.
func ScaleNames() []string {
	names := []string{"BlackBody", "SmoothBlueRed"}
	for n := range scales {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Scale returns the named color scale spanning [min, max].
func Scale(name string, min, max float64) (palette.ColorMap, error) {
	if name == "" {
		name = DefaultScale
	}
	var cm palette.ColorMap
	switch name {
	case "BlackBody":
		cm = moreland.BlackBody()
	case "SmoothBlueRed":
		cm = moreland.SmoothBlueRed()
	default:
		s, ok := scales[name]
		if !ok {
			return nil, fmt.Errorf("render: unknown color scale %q; options are %v", name, ScaleNames())
		}
		l, err := moreland.NewLuminance(s.controls)
		if err != nil {
			return nil, fmt.Errorf("render: creating color scale %s: %w", name, err)
		}
		cm = l
		if s.reverse {
			cm = reversed{l}
		}
	}
	if !(max > min) {
		max = min + 1
	}
	cm.SetMax(max)
	cm.SetMin(min)
	return cm, nil
}

// reversed is a color map whose colors run in the opposite direction.
type reversed struct {
	palette.ColorMap
}

func (r reversed) At(v float64) (color.Color, error) {
	return r.ColorMap.At(r.Min() + r.Max() - v)
}

func (r reversed) Palette(n int) palette.Palette {
	c := r.ColorMap.Palette(n).Colors()
	o := make(colors, len(c))
	for i := range c {
		o[i] = c[len(c)-1-i]
	}
	return o
}

type colors []color.Color

func (c colors) Colors() []color.Color { return c }

// cssColor returns c in #rrggbb form.
func cssColor(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
}
