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

// Lien edge-based reconstruction in the Hamilton-Adams manner. The green
// plane is interpolated along the smoother axis. The R-G and B-G color
// difference planes are seeded at their native sample sites and propagated
// over up to three strict row-major passes; cells computed earlier in a
// pass are visible to later cells of the same pass, so the scan order is
// part of the output contract and must not be parallelized
func reconstructLien(m *mosaic.Mosaic) *rgba.Image {
	clf:=m.Classifier()
	n:=m.Width*m.Height

	g:=make([]float32, n)
	for y:=0; y<m.Height; y++ {
		for x:=0; x<m.Width; x++ {
			i:=y*m.Width+x
			if clf.Classify(x, y)==cfa.G {
				g[i]=m.Samples[i]
			} else {
				g[i]=lienGreenEstimate(m, x, y)
			}
		}
	}

	dR:=propagateDifferences(m, g, cfa.R)
	dB:=propagateDifferences(m, g, cfa.B)

	r, b:=make([]float32, n), make([]float32, n)
	for i:=0; i<n; i++ {
		r[i]=g[i]+dR[i]
		b[i]=g[i]+dB[i]
	}
	return assemble(m, r, g, b)
}

// Green estimate at a non-green pixel: average along the direction with the
// smaller green gradient. A direction counts only when both of its
// immediate neighbors carry green; ties go to horizontal. With no complete
// direction, falls back to an isotropic average of whatever immediate green
// neighbors exist, then to the observed sample
func lienGreenEstimate(m *mosaic.Mosaic, x, y int) float32 {
	hOK:=m.ChannelAt(x-1, y)==cfa.G && m.ChannelAt(x+1, y)==cfa.G
	vOK:=m.ChannelAt(x, y-1)==cfa.G && m.ChannelAt(x, y+1)==cfa.G
	switch {
	case hOK && vOK:
		gradH:=abs32(m.Sample(x+1, y)-m.Sample(x-1, y))
		gradV:=abs32(m.Sample(x, y+1)-m.Sample(x, y-1))
		if gradH<=gradV {
			return 0.5*(m.Sample(x-1, y)+m.Sample(x+1, y))
		}
		return 0.5*(m.Sample(x, y-1)+m.Sample(x, y+1))
	case hOK:
		return 0.5*(m.Sample(x-1, y)+m.Sample(x+1, y))
	case vOK:
		return 0.5*(m.Sample(x, y-1)+m.Sample(x, y+1))
	}
	if avg, ok:=m.Average(x, y, 1, cfa.G, false); ok { return avg }
	return m.Sample(x, y)
}

// Neighbor offset pairs for difference plane propagation: horizontal,
// vertical, then the two diagonals considered from pass 2 onwards
var lienPairs=[4][2][2]int{
	{{-1, 0}, {1, 0}},
	{{0, -1}, {0, 1}},
	{{-1, -1}, {1, 1}},
	{{1, -1}, {-1, 1}},
}

// Row-major scan order over the 8-neighborhood, for forced resolution in
// the final pass
var lienSingles=[8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// Propagates the (ch - green) difference plane from its native sample
// sites to full coverage over up to 3 ordered passes
func propagateDifferences(m *mosaic.Mosaic, g []float32, ch cfa.Channel) []float32 {
	clf:=m.Classifier()
	n:=m.Width*m.Height
	d, done:=make([]float32, n), make([]bool, n)

	remaining:=n
	for y:=0; y<m.Height; y++ {
		for x:=0; x<m.Width; x++ {
			if clf.Classify(x, y)==ch {
				i:=y*m.Width+x
				d[i]=m.Samples[i]-g[i]
				done[i]=true
				remaining--
			}
		}
	}

	for pass:=1; pass<=3 && remaining>0; pass++ {
		maxPair:=2            // cardinal directions only
		if pass>=2 { maxPair=4 }  // later passes also consider diagonals
		for y:=0; y<m.Height; y++ {
			for x:=0; x<m.Width; x++ {
				i:=y*m.Width+x
				if done[i] { continue }
				if v, ok:=pairEstimate(m, d, done, x, y, maxPair); ok {
					d[i]=v
					done[i]=true
					remaining--
				} else if pass==3 {
					// force resolution: single available neighbor, or 0
					d[i]=singleEstimate(m, d, done, x, y)
					done[i]=true
					remaining--
				}
			}
		}
	}
	return d
}

// Estimates a cell from the already-computed neighbor pair with the
// smallest gradient. Only pairs with both neighbors in range and computed
// qualify; earlier pairs win ties
func pairEstimate(m *mosaic.Mosaic, d []float32, done []bool, x, y, maxPair int) (float32, bool) {
	best, bestGrad, found:=float32(0), float32(0), false
	for p:=0; p<maxPair; p++ {
		x1, y1:=x+lienPairs[p][0][0], y+lienPairs[p][0][1]
		x2, y2:=x+lienPairs[p][1][0], y+lienPairs[p][1][1]
		if !inRange(m, x1, y1) || !inRange(m, x2, y2) { continue }
		i1, i2:=y1*m.Width+x1, y2*m.Width+x2
		if !done[i1] || !done[i2] { continue }
		grad:=abs32(d[i1]-d[i2])
		if !found || grad<bestGrad {
			best, bestGrad, found=0.5*(d[i1]+d[i2]), grad, true
		}
	}
	return best, found
}

// First computed 8-neighborhood cell in row-major order, or 0
func singleEstimate(m *mosaic.Mosaic, d []float32, done []bool, x, y int) float32 {
	for _,off:=range lienSingles {
		nx, ny:=x+off[0], y+off[1]
		if !inRange(m, nx, ny) { continue }
		if i:=ny*m.Width+nx; done[i] { return d[i] }
	}
	return 0
}

func inRange(m *mosaic.Mosaic, x, y int) bool {
	return x>=0 && x<m.Width && y>=0 && y<m.Height
}
