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


// Package demosaic reconstructs a full three-channel image from a
// single-channel color filter array mosaic. Six reconstruction methods are
// provided, from plain nearest neighbor up to multi-pass edge-directed
// plane reconstruction and iterative residual refinement. All methods share
// the same contract: the channel the sensor actually measured at a pixel is
// kept verbatim, only the two unmeasured channels are estimated
package demosaic

import (
	"fmt"

	"github.com/mlnoga/demosaic/internal/cfa"
	"github.com/mlnoga/demosaic/internal/mosaic"
	"github.com/mlnoga/demosaic/internal/rgba"
)

// Reconstruction method selectors
const (
	Nearest  = "nearest"
	Bilinear = "bilinear"
	Niu      = "niu_edge_sensing"
	Lien     = "lien_edge_based"
	Wu       = "wu_polynomial"
	Kiku     = "kiku_residual"
)

// Methods lists all reconstruction method selectors
var Methods=[]string{Nearest, Bilinear, Niu, Lien, Wu, Kiku}

// Optional per-method tuning parameters. The zero value selects all
// defaults
type Params struct {
	NiuThreshold   float32 `json:"niuLogisticThreshold"`    // logistic edge threshold, default 0.1
	NiuSteepness   float32 `json:"niuLogisticSteepness"`    // logistic steepness, 0 = derive as 20/max(0.01,threshold)
	WuDegree       int     `json:"wuPolynomialDegree"`      // distance weighting degree >=1, default 2
	KikuIterations int     `json:"kikuResidualIterations"`  // residual refinement iterations >=1, default 1
}

// Returns the parameter set with all defaults selected
func DefaultParams() Params {
	return Params{NiuThreshold: 0.1, NiuSteepness: 0, WuDegree: 2, KikuIterations: 1}
}

// Returns a copy with unset fields replaced by their defaults. A zero
// threshold means unset; negative thresholds pass through to the method's
// max(0.01,threshold) guard
func (p Params) withDefaults() Params {
	if p.NiuThreshold==0  { p.NiuThreshold=0.1 }
	if p.WuDegree<1       { p.WuDegree=2       }
	if p.KikuIterations<1 { p.KikuIterations=1 }
	return p
}

// Reconstructs a full RGB image from the given mosaic with the selected
// method. Returns an error for unknown method selectors only; malformed
// but representable inputs degrade gracefully inside the methods
func Reconstruct(m *mosaic.Mosaic, method string, params Params) (*rgba.Image, error) {
	params=params.withDefaults()
	switch method {
	case Nearest:  return reconstructNearest(m),          nil
	case Bilinear: return reconstructBilinear(m),         nil
	case Niu:      return reconstructNiu(m, params),      nil
	case Lien:     return reconstructLien(m),             nil
	case Wu:       return reconstructWu(m, params),       nil
	case Kiku:     return reconstructKiku(m, params),     nil
	}
	return nil, fmt.Errorf("unknown demosaic method %s", method)
}

// Quantizes three reconstructed channel planes into an 8-bit RGBA image,
// then re-imposes sampling fidelity: each pixel's native channel is
// overwritten with the quantized observed mosaic value
func assemble(m *mosaic.Mosaic, r, g, b []float32) *rgba.Image {
	clf:=m.Classifier()
	img:=rgba.NewImage(m.Width, m.Height)
	for y:=0; y<m.Height; y++ {
		for x:=0; x<m.Width; x++ {
			i:=y*m.Width+x
			rr, gg, bb:=rgba.Quantize(r[i]), rgba.Quantize(g[i]), rgba.Quantize(b[i])
			observed:=rgba.Quantize(m.Samples[i])
			switch clf.Classify(x, y) {
			case cfa.R: rr=observed
			case cfa.G: gg=observed
			case cfa.B: bb=observed
			}
			img.SetRGB(x, y, rr, gg, bb)
		}
	}
	return img
}

// Returns the plane for the given channel out of r,g,b
func plane(ch cfa.Channel, r, g, b []float32) []float32 {
	switch ch {
	case cfa.R: return r
	case cfa.B: return b
	}
	return g
}
