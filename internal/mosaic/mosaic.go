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


package mosaic

import (
	"github.com/mlnoga/demosaic/internal/cfa"
	"github.com/mlnoga/demosaic/internal/rgba"
)

// A single-channel sensor mosaic: one normalized intensity in [0,1] per
// pixel, sampled through the color filter array. Immutable once constructed
type Mosaic struct {
	Width   int
	Height  int
	Samples []float32      // row-major, Samples[y*Width+x]
	Pattern cfa.Pattern
	Layout  cfa.Layout     // Bayer only, ignored for X-Trans

	clf cfa.Classifier
}

// Creates a mosaic wrapping the given sample buffer. The buffer is not
// copied; callers must not mutate it afterwards
func New(width, height int, samples []float32, pattern cfa.Pattern, layout cfa.Layout) *Mosaic {
	return &Mosaic{
		Width:   width,
		Height:  height,
		Samples: samples,
		Pattern: pattern,
		Layout:  layout,
		clf:     cfa.NewClassifier(pattern, layout),
	}
}

// Simulates a color filter array exposure of the given ground truth image:
// each pixel keeps only the channel the classifier assigns to it,
// normalized to [0,1]
func NewFromImage(img *rgba.Image, pattern cfa.Pattern, layout cfa.Layout) *Mosaic {
	m:=New(img.Width, img.Height, make([]float32, img.Width*img.Height), pattern, layout)
	for y:=0; y<img.Height; y++ {
		for x:=0; x<img.Width; x++ {
			ch:=m.clf.Classify(x, y)
			m.Samples[y*img.Width+x]=float32(img.Channel(x, y, int(ch)))*(1.0/255.0)
		}
	}
	return m
}

// Returns the classifier for this mosaic's pattern
func (m *Mosaic) Classifier() cfa.Classifier { return m.clf }

// Maps an arbitrary coordinate into range by reflecting across the nearest
// edge, then clamping as a final safety net for coordinates further out
// than one full mirror period
func (m *Mosaic) Fold(x, y int) (fx, fy int) {
	if x<0         { x=-x          }
	if x>=m.Width  { x=2*m.Width-2-x }
	if x<0         { x=0           }
	if x>=m.Width  { x=m.Width-1   }
	if y<0         { y=-y          }
	if y>=m.Height { y=2*m.Height-2-y }
	if y<0         { y=0           }
	if y>=m.Height { y=m.Height-1  }
	return x, y
}

// Returns the sample at the given coordinate with mirror padding.
// Never faults, for any integer coordinates
func (m *Mosaic) Sample(x, y int) float32 {
	x, y=m.Fold(x, y)
	return m.Samples[y*m.Width+x]
}

// Returns the channel measured at the given coordinate after mirror
// folding. Border reflections are classified at the folded position they
// actually sample, so channel and value always agree
func (m *Mosaic) ChannelAt(x, y int) cfa.Channel {
	x, y=m.Fold(x, y)
	return m.clf.Classify(x, y)
}
