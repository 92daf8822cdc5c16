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

// Kiku residual interpolation: a bilinear baseline for all three channels
// is refined by interpolating the residual of the baseline against the
// observed samples and adding it back. The baseline average includes the
// center sample, so residuals vanish identically on a flat field. Each
// iteration ends by re-imposing sampling fidelity on the native channel
func reconstructKiku(m *mosaic.Mosaic, params Params) *rgba.Image {
	clf:=m.Classifier()
	n:=m.Width*m.Height
	resRadius:=1
	if m.Pattern==cfa.XTrans { resRadius=2 }

	// baseline: radius-1 same-channel window average at every pixel for
	// every channel, never short-circuited to the observed value
	est:=[3][]float32{make([]float32, n), make([]float32, n), make([]float32, n)}
	for y:=0; y<m.Height; y++ {
		for x:=0; x<m.Width; x++ {
			i:=y*m.Width+x
			for ch:=cfa.R; ch<=cfa.B; ch++ {
				if avg, ok:=m.Average(x, y, 1, ch, true); ok {
					est[ch][i]=avg
				}
			}
		}
	}

	residual:=make([]float32, n)
	for iter:=0; iter<params.KikuIterations; iter++ {
		// residual of the current estimate at each pixel's own channel
		for y:=0; y<m.Height; y++ {
			for x:=0; x<m.Width; x++ {
				i:=y*m.Width+x
				residual[i]=m.Samples[i]-est[clf.Classify(x, y)][i]
			}
		}
		// interpolate the residual field onto the missing channels
		for y:=0; y<m.Height; y++ {
			for x:=0; x<m.Width; x++ {
				i:=y*m.Width+x
				native:=clf.Classify(x, y)
				for ch:=cfa.R; ch<=cfa.B; ch++ {
					if ch==native { continue }
					est[ch][i]+=residualAverage(m, residual, x, y, resRadius, ch)
				}
			}
		}
		// re-impose sampling fidelity before the next iteration
		for y:=0; y<m.Height; y++ {
			for x:=0; x<m.Width; x++ {
				i:=y*m.Width+x
				est[clf.Classify(x, y)][i]=m.Samples[i]
			}
		}
	}
	return assemble(m, est[cfa.R], est[cfa.G], est[cfa.B])
}

// Averages the residual field over the same-channel sample sites within
// the given radius, with mirror folding at the borders. No sites means no
// correction
func residualAverage(m *mosaic.Mosaic, residual []float32, x, y, radius int, ch cfa.Channel) float32 {
	sum, cnt:=float32(0), 0
	for dy:=-radius; dy<=radius; dy++ {
		for dx:=-radius; dx<=radius; dx++ {
			if dx==0 && dy==0 { continue }
			fx, fy:=m.Fold(x+dx, y+dy)
			if m.Classifier().Classify(fx, fy)!=ch { continue }
			sum+=residual[fy*m.Width+fx]
			cnt++
		}
	}
	if cnt==0 { return 0 }
	return sum/float32(cnt)
}
