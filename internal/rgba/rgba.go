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
	"image"
	"image/color"
)

// An 8-bit RGBA image, row-major, alpha fixed at 255. The reconstruction
// algorithms allocate one of these per invocation and never mutate it
// afterwards
type Image struct {
	Width  int
	Height int
	Pix    []uint8  // 4*Width*Height bytes
}

// Creates a black, fully opaque image of the given dimensions
func NewImage(width, height int) *Image {
	pix:=make([]uint8, 4*width*height)
	for i:=3; i<len(pix); i+=4 {
		pix[i]=255
	}
	return &Image{Width:width, Height:height, Pix:pix}
}

// Returns the red, green and blue values at the given in-range coordinates
func (img *Image) RGB(x, y int) (r, g, b uint8) {
	i:=4*(y*img.Width+x)
	return img.Pix[i], img.Pix[i+1], img.Pix[i+2]
}

// Sets the red, green and blue values at the given in-range coordinates,
// leaving alpha at 255
func (img *Image) SetRGB(x, y int, r, g, b uint8) {
	i:=4*(y*img.Width+x)
	img.Pix[i], img.Pix[i+1], img.Pix[i+2]=r, g, b
}

// Returns the value of a single channel at the given in-range coordinates.
// Channel index is 0=R, 1=G, 2=B
func (img *Image) Channel(x, y, ch int) uint8 {
	return img.Pix[4*(y*img.Width+x)+ch]
}

// Converts into a Golang image.RGBA sharing no storage
func (img *Image) ToGoImage() *image.RGBA {
	res:=image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))
	for y:=0; y<img.Height; y++ {
		copy(res.Pix[y*res.Stride:y*res.Stride+4*img.Width], img.Pix[4*y*img.Width:4*(y+1)*img.Width])
	}
	return res
}

// Creates an image from any Golang image, converting colors to 8-bit RGBA
// and forcing alpha to 255
func NewImageFromGoImage(src image.Image) *Image {
	bounds:=src.Bounds()
	width, height:=bounds.Dx(), bounds.Dy()
	res:=NewImage(width, height)
	for y:=0; y<height; y++ {
		for x:=0; x<width; x++ {
			c:=color.RGBAModel.Convert(src.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.RGBA)
			res.SetRGB(x, y, c.R, c.G, c.B)
		}
	}
	return res
}

// Quantizes a normalized intensity in [0,1] to 8 bits with rounding
func Quantize(v float32) uint8 {
	if v<=0 { return 0 }
	if v>=1 { return 255 }
	return uint8(v*255+0.5)
}
