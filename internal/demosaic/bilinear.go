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


package demosaic

import (
	"github.com/mlnoga/demosaic/internal/cfa"
	"github.com/mlnoga/demosaic/internal/mosaic"
	"github.com/mlnoga/demosaic/internal/rgba"
)

// Bilinear reconstruction: each missing channel is the plain average of the
// same-channel samples within radius 1. A pure 0th-order low-pass filter
// with no edge awareness; an empty neighbor set contributes 0
func reconstructBilinear(m *mosaic.Mosaic) *rgba.Image {
	clf:=m.Classifier()
	n:=m.Width*m.Height
	r, g, b:=make([]float32, n), make([]float32, n), make([]float32, n)

	for y:=0; y<m.Height; y++ {
		for x:=0; x<m.Width; x++ {
			i:=y*m.Width+x
			native:=clf.Classify(x, y)
			plane(native, r, g, b)[i]=m.Samples[i]
			for _,ch:=range []cfa.Channel{cfa.R, cfa.G, cfa.B} {
				if ch==native { continue }
				if avg, ok:=m.Average(x, y, 1, ch, false); ok {
					plane(ch, r, g, b)[i]=avg
				}
			}
		}
	}
	return assemble(m, r, g, b)
}
