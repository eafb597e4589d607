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

// Package porygon aggregates point observations onto polygons and
// holds the result as a uniquely indexed table of polygons ready to be
// drawn as a map.
//
// Points are assigned to polygons by one of three tilings: hexagonal
// cells of the H3 grid (HexTiling), caller-supplied boundaries such as
// census tracts (BoundaryTiling), or Voronoi cells of a set of seed
// points (VoronoiTiling). The values of the points in each polygon are
// then combined with a Reducer and joined to the polygon geometry in a
// PolygonTable:
//
//	tiling, _ := porygon.NewHexTiling(8)
//	t, err := porygon.FromPoints(crashes, tiling, porygon.Sum)
//
// Package render draws a PolygonTable as a Leaflet web map.
package porygon

// Version is the version of this software.
const Version = "0.1.0"
