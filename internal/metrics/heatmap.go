// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.


package metrics

import (
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/mlnoga/demosaic/internal/rgba"
)

// Gradient stops for error visualization, dark blue over yellow to red
var heatmapStops=[]struct{
	pos float64
	col colorful.Color
}{
	{0.0, colorful.Color{R: 0.00, G: 0.00, B: 0.30}},
	{0.5, colorful.Color{R: 0.95, G: 0.85, B: 0.10}},
	{1.0, colorful.Color{R: 0.90, G: 0.10, B: 0.05}},
}

// Renders the per-pixel L2 error map as a false color heatmap, normalized
// to the largest error in the map. A zero-error map renders all in the
// gradient's base color
func (s *Stats) Heatmap() *rgba.Image {
	max:=0.0
	for _,v:=range s.L2Map {
		if v>max { max=v }
	}
	scale:=0.0
	if max>0 { scale=1/max }

	img:=rgba.NewImage(s.Width, s.Height)
	for y:=0; y<s.Height; y++ {
		for x:=0; x<s.Width; x++ {
			c:=heatmapColor(s.L2Map[y*s.Width+x]*scale)
			r, g, b:=c.Clamped().RGB255()
			img.SetRGB(x, y, r, g, b)
		}
	}
	return img
}

// Interpolates the gradient at position t in [0,1] in HCL space
func heatmapColor(t float64) colorful.Color {
	for i:=0; i<len(heatmapStops)-1; i++ {
		lo, hi:=heatmapStops[i], heatmapStops[i+1]
		if t<=hi.pos {
			return lo.col.BlendHcl(hi.col, (t-lo.pos)/(hi.pos-lo.pos))
		}
	}
	return heatmapStops[len(heatmapStops)-1].col
}
