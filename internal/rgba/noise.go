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


package rgba

import (
	"github.com/valyala/fastrand"
)

// Returns a copy of the image with uniform noise in [-amplitude,+amplitude]
// added to each color channel, clamped to 8 bits. Alpha stays at 255.
// Deterministic for a given seed. amplitude<=0 returns a plain copy
func (img *Image) AddNoise(amplitude int, seed uint32) *Image {
	res:=NewImage(img.Width, img.Height)
	copy(res.Pix, img.Pix)
	if amplitude<=0 { return res }

	rng:=fastrand.RNG{}
	rng.Seed(seed)
	span:=uint32(2*amplitude+1)
	for i:=0; i<len(res.Pix); i+=4 {
		for c:=0; c<3; c++ {
			delta:=int(rng.Uint32n(span))-amplitude
			v:=int(res.Pix[i+c])+delta
			if v<0   { v=0   }
			if v>255 { v=255 }
			res.Pix[i+c]=uint8(v)
		}
	}
	return res
}
