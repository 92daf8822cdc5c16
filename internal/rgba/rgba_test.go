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
	"bytes"
	"path/filepath"
	"testing"
)

func TestNewImageIsOpaqueBlack(t *testing.T) {
	img:=NewImage(3, 2)
	if len(img.Pix)!=24 { t.Fatalf("len(pix)=%d; want 24", len(img.Pix)) }
	for i:=0; i<len(img.Pix); i+=4 {
		if img.Pix[i]!=0 || img.Pix[i+1]!=0 || img.Pix[i+2]!=0 || img.Pix[i+3]!=255 {
			t.Fatalf("pixel %d=(%d,%d,%d,%d); want (0,0,0,255)", i/4, img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3])
		}
	}
}

func TestQuantize(t *testing.T) {
	cases:=[]struct{
		in   float32
		want uint8
	}{
		{-0.5, 0}, {0, 0}, {1, 255}, {2, 255},
		{0.2, 51}, {0.4, 102}, {0.6, 153}, {0.5, 128},
		{1.0/255, 1},
	}
	for _, c:=range cases {
		if got:=Quantize(c.in); got!=c.want {
			t.Errorf("quantize(%f)=%d; want %d", c.in, got, c.want)
		}
	}
}

func TestAddNoiseDeterministicAndBounded(t *testing.T) {
	img:=NewImage(8, 8)
	for y:=0; y<8; y++ {
		for x:=0; x<8; x++ { img.SetRGB(x, y, 100, 150, 200) }
	}
	a:=img.AddNoise(20, 7)
	b:=img.AddNoise(20, 7)
	if !bytes.Equal(a.Pix, b.Pix) { t.Errorf("same seed produced different noise") }
	c:=img.AddNoise(20, 8)
	if bytes.Equal(a.Pix, c.Pix) { t.Errorf("different seeds produced identical noise") }

	for i:=0; i<len(a.Pix); i+=4 {
		for ch, base:=range []int{100, 150, 200} {
			v:=int(a.Pix[i+ch])
			if v<base-20 || v>base+20 { t.Fatalf("noise exceeded amplitude: %d vs base %d", v, base) }
		}
		if a.Pix[i+3]!=255 { t.Fatalf("alpha changed to %d", a.Pix[i+3]) }
	}

	// amplitude 0 is a plain copy
	d:=img.AddNoise(0, 7)
	if !bytes.Equal(d.Pix, img.Pix) { t.Errorf("amplitude 0 modified the image") }
}

func TestWriteAndReadRoundTrip(t *testing.T) {
	img:=NewImage(5, 4)
	for y:=0; y<4; y++ {
		for x:=0; x<5; x++ { img.SetRGB(x, y, uint8(50*x), uint8(60*y), uint8(10*x*y)) }
	}
	for _, name:=range []string{"t.png", "t.tif"} {
		fileName:=filepath.Join(t.TempDir(), name)
		if err:=img.WriteFile(fileName); err!=nil { t.Fatalf("%s: %s", name, err.Error()) }
		back, err:=NewImageFromFile(fileName)
		if err!=nil { t.Fatalf("%s: %s", name, err.Error()) }
		if back.Width!=5 || back.Height!=4 { t.Fatalf("%s: got %dx%d; want 5x4", name, back.Width, back.Height) }
		if !bytes.Equal(back.Pix, img.Pix) { t.Errorf("%s: lossless round trip failed", name) }
	}

	// unknown suffix must error
	if err:=img.WriteFile(filepath.Join(t.TempDir(), "t.bmp")); err==nil {
		t.Errorf("expected error for unknown suffix")
	}
}
