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


// Package metrics quantifies reconstruction error against ground truth
// with MSE, PSNR, MAE, a per-pixel L2 distance map, and a single
// global-window SSIM approximation
package metrics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/mlnoga/demosaic/internal/rgba"
)

// Sentinel PSNR reported for a zero-error channel, avoiding log(0)
const PSNRPerfect=100.0

// SSIM stabilization constants for 8-bit dynamic range
var (
	ssimC1=math.Pow(0.01*255, 2)
	ssimC2=math.Pow(0.03*255, 2)
)

// Error measures for one color channel, on 0..255 values
type ChannelStats struct {
	MSE  float64 `json:"mse"`
	PSNR float64 `json:"psnr"`
	MAE  float64 `json:"mae"`
}

// Error statistics for a reconstruction against its ground truth
type Stats struct {
	R     ChannelStats `json:"r"`
	G     ChannelStats `json:"g"`
	B     ChannelStats `json:"b"`
	Total ChannelStats `json:"total"`  // unweighted mean across R,G,B
	SSIM  float64      `json:"ssim"`   // global-window luminance SSIM

	Width  int       `json:"width"`
	Height int       `json:"height"`
	L2Map  []float64 `json:"-"`        // per-pixel Euclidean RGB distance
}

func (s *Stats) String() string {
	return fmt.Sprintf("PSNR %.2f dB (R %.2f G %.2f B %.2f), MSE %.2f, MAE %.2f, SSIM %.4f",
		s.Total.PSNR, s.R.PSNR, s.G.PSNR, s.B.PSNR, s.Total.MSE, s.Total.MAE, s.SSIM)
}

// Computes error statistics for a reconstruction against its ground truth.
// Both images must have identical dimensions; this is a caller contract,
// not a runtime check. Alpha is ignored
func Compute(truth, recon *rgba.Image) *Stats {
	n:=truth.Width*truth.Height
	s:=&Stats{Width:truth.Width, Height:truth.Height, L2Map:make([]float64, n)}

	var sqSum, absSum [3]float64
	lumT, lumR:=make([]float64, n), make([]float64, n)
	for i:=0; i<n; i++ {
		l2:=0.0
		for c:=0; c<3; c++ {
			d:=float64(recon.Pix[4*i+c])-float64(truth.Pix[4*i+c])
			sqSum[c]+=d*d
			absSum[c]+=math.Abs(d)
			l2+=d*d
		}
		s.L2Map[i]=math.Sqrt(l2)
		lumT[i]=luminance(truth.Pix[4*i], truth.Pix[4*i+1], truth.Pix[4*i+2])
		lumR[i]=luminance(recon.Pix[4*i], recon.Pix[4*i+1], recon.Pix[4*i+2])
	}

	chans:=[]*ChannelStats{&s.R, &s.G, &s.B}
	for c, cs:=range chans {
		cs.MSE=sqSum[c]/float64(n)
		cs.MAE=absSum[c]/float64(n)
		cs.PSNR=psnr(cs.MSE)
		s.Total.MSE+=cs.MSE/3
		s.Total.MAE+=cs.MAE/3
		s.Total.PSNR+=cs.PSNR/3
	}
	s.SSIM=ssim(lumT, lumR)
	return s
}

// Peak signal-to-noise ratio in dB for 8-bit data, with the perfect-match
// sentinel on zero error
func psnr(mse float64) float64 {
	if mse==0 { return PSNRPerfect }
	return 10*math.Log10(255*255/mse)
}

// Rec. 601 luma on 0..255 values
func luminance(r, g, b uint8) float64 {
	return 0.299*float64(r)+0.587*float64(g)+0.114*float64(b)
}

// Single global-window SSIM over the luminance planes: the standard SSIM
// formula evaluated once with whole-image moments. A documented
// approximation, deliberately weaker than patch-based SSIM; population
// divisors throughout
func ssim(x, y []float64) float64 {
	muX, muY:=stat.Mean(x, nil), stat.Mean(y, nil)
	varX:=stat.Moment(2, x, nil)
	varY:=stat.Moment(2, y, nil)
	cov:=stat.BivariateMoment(1, 1, x, y, nil)
	return ((2*muX*muY+ssimC1)*(2*cov+ssimC2))/
		((muX*muX+muY*muY+ssimC1)*(varX+varY+ssimC2))
}
