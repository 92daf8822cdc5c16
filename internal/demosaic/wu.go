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
	"math"

	"github.com/mlnoga/demosaic/internal/cfa"
	"github.com/mlnoga/demosaic/internal/mosaic"
	"github.com/mlnoga/demosaic/internal/rgba"
)

// Wu polynomial reconstruction: distance-weighted averaging of same-channel
// neighbors with weights 1/(1+d^degree). Degree 1 is an exact plain
// average. The search radius is 2 for Bayer and 6 for X-Trans; radius 1 is
// deliberately avoided for Bayer since it makes all neighbors equidistant
// and defeats distance weighting
func reconstructWu(m *mosaic.Mosaic, params Params) *rgba.Image {
	clf:=m.Classifier()
	n:=m.Width*m.Height
	radius:=2
	if m.Pattern==cfa.XTrans { radius=6 }
	degree:=params.WuDegree

	// green plane first, it backs the chroma fallback
	g:=make([]float32, n)
	for y:=0; y<m.Height; y++ {
		for x:=0; x<m.Width; x++ {
			i:=y*m.Width+x
			if clf.Classify(x, y)==cfa.G {
				g[i]=m.Samples[i]
			} else if v, ok:=wuWeighted(m, x, y, radius, cfa.G, degree); ok {
				g[i]=v
			} else {
				g[i]=m.Samples[i]
			}
		}
	}

	r, b:=make([]float32, n), make([]float32, n)
	for y:=0; y<m.Height; y++ {
		for x:=0; x<m.Width; x++ {
			i:=y*m.Width+x
			native:=clf.Classify(x, y)
			for _,ch:=range []cfa.Channel{cfa.R, cfa.B} {
				if ch==native {
					plane(ch, r, g, b)[i]=m.Samples[i]
				} else if v, ok:=wuWeighted(m, x, y, radius, ch, degree); ok {
					plane(ch, r, g, b)[i]=v
				} else {
					plane(ch, r, g, b)[i]=g[i]
				}
			}
		}
	}
	return assemble(m, r, g, b)
}

// Weighted neighbor average sum(w_i*v_i)/sum(w_i) with w_i=1/(1+d_i^degree)
// for degree>=2, and unit weights for degree 1, which reduces the result
// to the plain average of the selected neighbor set
func wuWeighted(m *mosaic.Mosaic, x, y, radius int, ch cfa.Channel, degree int) (float32, bool) {
	nbs:=m.Neighbors(x, y, radius, ch)
	if len(nbs)==0 { return 0, false }
	num, den:=float32(0), float32(0)
	for _,nb:=range nbs {
		w:=float32(1)
		if degree>1 {
			w=float32(1/(1+math.Pow(float64(nb.Dist), float64(degree))))
		}
		num+=w*nb.Value
		den+=w
	}
	return num/den, true
}
