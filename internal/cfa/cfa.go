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


package cfa

// A color channel of the sensor filter array
type Channel uint8

const (
	R Channel = iota
	G
	B
)

func (ch Channel) String() string {
	switch ch {
	case R: return "R"
	case G: return "G"
	case B: return "B"
	}
	return "?"
}

// A color filter array pattern type
type Pattern string

const (
	Bayer  Pattern = "bayer"
	XTrans Pattern = "xtrans"
)

// Bayer 2x2 layouts, named by their top-left quad in row-major order
type Layout string

const (
	RGGB Layout = "RGGB"
	GRBG Layout = "GRBG"
	GBRG Layout = "GBRG"
	BGGR Layout = "BGGR"
)

// Standard Fujifilm X-Trans 6x6 tile. Every row and every column
// contains all three colors
var xtransTable=[6][6]Channel{
	{G, B, G, G, R, G},
	{R, G, R, B, G, B},
	{G, B, G, G, R, G},
	{G, R, G, G, B, G},
	{B, G, B, R, G, R},
	{G, R, G, G, B, G},
}

// A Classifier maps absolute pixel coordinates to the channel the sensor
// measures there. It is periodic with the given period and defined on all
// of Z^2 via negative-safe modulo. Classifiers are small immutable values;
// copy them freely
type Classifier struct {
	period int
	table  []Channel  // period*period entries, row-major
}

// Creates a classifier for the given pattern. Bayer uses the 2x2 layout,
// X-Trans ignores the layout and uses the fixed 6x6 tile. Unknown patterns
// yield the degenerate constant-green classifier, not an error
func NewClassifier(pattern Pattern, layout Layout) Classifier {
	switch pattern {
	case Bayer:
		var xOffset, yOffset int
		switch layout {
		case RGGB, "rggb": xOffset, yOffset=0,0
		case GRBG, "grbg": xOffset, yOffset=1,0
		case GBRG, "gbrg": xOffset, yOffset=0,1
		case BGGR, "bggr": xOffset, yOffset=1,1
		default:           return Classifier{period:1, table:[]Channel{G}}
		}
		// Reference quad: R G
		//                 G B
		table:=make([]Channel, 4)
		for y:=0; y<2; y++ {
			for x:=0; x<2; x++ {
				sx, sy:=(x+xOffset)&1, (y+yOffset)&1
				var ch Channel
				if sx==0 && sy==0 {
					ch=R
				} else if sx==1 && sy==1 {
					ch=B
				} else {
					ch=G
				}
				table[y*2+x]=ch
			}
		}
		return Classifier{period:2, table:table}

	case XTrans:
		table:=make([]Channel, 36)
		for y:=0; y<6; y++ {
			for x:=0; x<6; x++ {
				table[y*6+x]=xtransTable[y][x]
			}
		}
		return Classifier{period:6, table:table}
	}
	return Classifier{period:1, table:[]Channel{G}}
}

// Returns the classifier period: 2 for Bayer, 6 for X-Trans, 1 degenerate
func (c Classifier) Period() int { return c.period }

// Returns the channel measured at the given coordinates, for any integers
// including negative ones
func (c Classifier) Classify(x, y int) Channel {
	px, py:=mod(x, c.period), mod(y, c.period)
	return c.table[py*c.period+px]
}

// Negative-safe modulo
func mod(a, n int) int {
	m:=a%n
	if m<0 { m+=n }
	return m
}
