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

// Niu edge-sensing reconstruction, two passes with a hard barrier between
// them. Pass 1 builds the green plane with logistic edge weights favoring
// the lower-variation direction. Pass 2 fills the color planes: Bayer via
// color differences against the green plane, X-Trans via direct 5x5
// averaging since its diagonals are unreliable
func reconstructNiu(m *mosaic.Mosaic, params Params) *rgba.Image {
	clf:=m.Classifier()
	n:=m.Width*m.Height

	threshold:=params.NiuThreshold
	if threshold<0.01 { threshold=0.01 }
	steepness:=params.NiuSteepness
	if steepness<=0 { steepness=20/threshold }

	// pass 1: green plane
	g:=make([]float32, n)
	for y:=0; y<m.Height; y++ {
		for x:=0; x<m.Width; x++ {
			i:=y*m.Width+x
			if clf.Classify(x, y)==cfa.G {
				g[i]=m.Samples[i]
			} else {
				g[i]=niuGreenEstimate(m, x, y, threshold, steepness)
			}
		}
	}

	// pass 2: color planes
	r, b:=make([]float32, n), make([]float32, n)
	for y:=0; y<m.Height; y++ {
		for x:=0; x<m.Width; x++ {
			i:=y*m.Width+x
			native:=clf.Classify(x, y)
			if native!=cfa.G { plane(native, r, g, b)[i]=m.Samples[i] }
			for _,ch:=range []cfa.Channel{cfa.R, cfa.B} {
				if ch==native { continue }
				if m.Pattern==cfa.XTrans {
					if avg, ok:=m.Average(x, y, 2, ch, false); ok {
						plane(ch, r, g, b)[i]=avg
					} else {
						plane(ch, r, g, b)[i]=g[i]
					}
				} else {
					plane(ch, r, g, b)[i]=niuColorDifference(m, g, x, y, ch)
				}
			}
		}
	}
	return assemble(m, r, g, b)
}

// Green estimate at a non-green pixel: directional variations mapped
// through a logistic edge weight, normalized to favor the smoother
// direction, blending the horizontal and vertical green neighbor averages
func niuGreenEstimate(m *mosaic.Mosaic, x, y int, threshold, steepness float32) float32 {
	deltaH:=abs32(m.Sample(x+1, y)-m.Sample(x-1, y))
	deltaV:=abs32(m.Sample(x, y+1)-m.Sample(x, y-1))
	wH:=logistic(deltaH, threshold, steepness)
	wV:=logistic(deltaV, threshold, steepness)

	nH, nV:=float32(0.5), float32(0.5)
	if wH+wV>0 {
		nH=1-wH/(wH+wV)
		nV=1-wV/(wH+wV)
	}

	hAvg, hOK:=directionAverage(m, x, y, 1, 0)
	vAvg, vOK:=directionAverage(m, x, y, 0, 1)
	switch {
	case hOK && vOK:
		return (nH*hAvg+nV*vAvg)/(nH+nV)
	case hOK:
		return hAvg
	case vOK:
		return vAvg
	}
	return m.Sample(x, y)
}

// Missing chroma via color difference: averages (neighbor - green at
// neighbor) over the radius-1 same-channel neighbors and adds the local
// green estimate back. Empty neighbor set falls back to the green estimate
func niuColorDifference(m *mosaic.Mosaic, g []float32, x, y int, ch cfa.Channel) float32 {
	sum, cnt:=float32(0), 0
	for dy:=-1; dy<=1; dy++ {
		for dx:=-1; dx<=1; dx++ {
			if dx==0 && dy==0 { continue }
			if m.ChannelAt(x+dx, y+dy)!=ch { continue }
			fx, fy:=m.Fold(x+dx, y+dy)
			sum+=m.Sample(x+dx, y+dy)-g[fy*m.Width+fx]
			cnt++
		}
	}
	i:=y*m.Width+x
	if cnt==0 { return g[i] }
	return g[i]+sum/float32(cnt)
}

// Averages the green samples at (x-dx,y-dy) and (x+dx,y+dy)
func directionAverage(m *mosaic.Mosaic, x, y, dx, dy int) (float32, bool) {
	sum, cnt:=float32(0), 0
	if m.ChannelAt(x-dx, y-dy)==cfa.G { sum+=m.Sample(x-dx, y-dy); cnt++ }
	if m.ChannelAt(x+dx, y+dy)==cfa.G { sum+=m.Sample(x+dx, y+dy); cnt++ }
	if cnt==0 { return 0, false }
	return sum/float32(cnt), true
}

// Logistic edge weight 1/(1+e^(-k(delta-threshold)))
func logistic(delta, threshold, steepness float32) float32 {
	return float32(1/(1+math.Exp(float64(-steepness*(delta-threshold)))))
}

func abs32(v float32) float32 {
	if v<0 { return -v }
	return v
}
