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
	"math"

	"github.com/mlnoga/demosaic/internal/cfa"
)

// A same-channel neighbor: its mirror-padded sample value and its
// Euclidean distance from the search center
type Neighbor struct {
	Value float32
	Dist  float32
}

// Collects all same-channel neighbors within the given Chebyshev radius
// (a square window), excluding the center pixel itself. Distances are
// Euclidean. An empty result is valid; callers define their fallback
func (m *Mosaic) Neighbors(x, y, radius int, ch cfa.Channel) []Neighbor {
	res:=make([]Neighbor, 0, (2*radius+1)*(2*radius+1)/3)
	for dy:=-radius; dy<=radius; dy++ {
		for dx:=-radius; dx<=radius; dx++ {
			if dx==0 && dy==0 { continue }
			if m.ChannelAt(x+dx, y+dy)!=ch { continue }
			res=append(res, Neighbor{
				Value: m.Sample(x+dx, y+dy),
				Dist:  float32(math.Sqrt(float64(dx*dx+dy*dy))),
			})
		}
	}
	return res
}

// Averages the same-channel neighbors within the given radius. The center
// pixel is included when includeCenter is set and it carries the channel.
// Returns false when no sample contributed
func (m *Mosaic) Average(x, y, radius int, ch cfa.Channel, includeCenter bool) (float32, bool) {
	sum, n:=float32(0), 0
	for dy:=-radius; dy<=radius; dy++ {
		for dx:=-radius; dx<=radius; dx++ {
			if dx==0 && dy==0 && !includeCenter { continue }
			if m.ChannelAt(x+dx, y+dy)!=ch { continue }
			sum+=m.Sample(x+dx, y+dy)
			n++
		}
	}
	if n==0 { return 0, false }
	return sum/float32(n), true
}

// Searches expanding square rings at Chebyshev distance d=1..maxRadius for
// the first same-channel sample. Within a ring, cells are scanned in
// row-major order and the first match wins; this scan-order tie-break is
// part of the reconstruction contract. Returns false when the radius limit
// is exhausted without a match
func (m *Mosaic) NearestInRings(x, y int, ch cfa.Channel, maxRadius int) (float32, bool) {
	for d:=1; d<=maxRadius; d++ {
		for dy:=-d; dy<=d; dy++ {
			for dx:=-d; dx<=d; dx++ {
				if dx>-d && dx<d && dy>-d && dy<d { continue }  // perimeter only
				if m.ChannelAt(x+dx, y+dy)!=ch { continue }
				return m.Sample(x+dx, y+dy), true
			}
		}
	}
	return 0, false
}
