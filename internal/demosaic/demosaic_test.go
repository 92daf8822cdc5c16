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
	"bytes"
	"testing"

	"github.com/valyala/fastrand"

	"github.com/mlnoga/demosaic/internal/cfa"
	"github.com/mlnoga/demosaic/internal/mosaic"
	"github.com/mlnoga/demosaic/internal/rgba"
)

// Builds a mosaic with pseudo-random samples for the given pattern
func randomMosaic(width, height int, pattern cfa.Pattern, layout cfa.Layout, seed uint32) *mosaic.Mosaic {
	rng:=fastrand.RNG{}
	rng.Seed(seed)
	samples:=make([]float32, width*height)
	for i:=range samples {
		samples[i]=float32(rng.Uint32n(256))/255
	}
	return mosaic.New(width, height, samples, pattern, layout)
}

// Builds a mosaic simulated from a constant-color ground truth
func flatMosaic(width, height int, pattern cfa.Pattern, layout cfa.Layout, r, g, b uint8) (*mosaic.Mosaic, *rgba.Image) {
	truth:=rgba.NewImage(width, height)
	for y:=0; y<height; y++ {
		for x:=0; x<width; x++ {
			truth.SetRGB(x, y, r, g, b)
		}
	}
	return mosaic.NewFromImage(truth, pattern, layout), truth
}

func TestSamplingFidelityAllMethods(t *testing.T) {
	patterns:=[]struct{
		pattern cfa.Pattern
		layout  cfa.Layout
	}{
		{cfa.Bayer, cfa.RGGB},
		{cfa.Bayer, cfa.BGGR},
		{cfa.XTrans, ""},
	}
	for _, p:=range patterns {
		m:=randomMosaic(13, 11, p.pattern, p.layout, 42)
		clf:=m.Classifier()
		for _, method:=range Methods {
			img, err:=Reconstruct(m, method, DefaultParams())
			if err!=nil { t.Fatalf("%s %s: %s", p.pattern, method, err.Error()) }
			for y:=0; y<m.Height; y++ {
				for x:=0; x<m.Width; x++ {
					want:=rgba.Quantize(m.Samples[y*m.Width+x])
					got:=img.Channel(x, y, int(clf.Classify(x, y)))
					if got!=want {
						t.Errorf("%s %s: native channel at (%d,%d)=%d; want %d", p.pattern, method, x, y, got, want)
					}
				}
			}
		}
	}
}

func TestFlatFieldRoundTrip(t *testing.T) {
	patterns:=[]struct{
		pattern cfa.Pattern
		layout  cfa.Layout
	}{
		{cfa.Bayer, cfa.RGGB},
		{cfa.Bayer, cfa.GRBG},
		{cfa.Bayer, cfa.GBRG},
		{cfa.Bayer, cfa.BGGR},
		{cfa.XTrans, ""},
	}
	for _, p:=range patterns {
		m, truth:=flatMosaic(12, 12, p.pattern, p.layout, 60, 120, 180)
		for _, method:=range Methods {
			img, err:=Reconstruct(m, method, DefaultParams())
			if err!=nil { t.Fatalf("%s %s: %s", p.pattern, method, err.Error()) }
			if !bytes.Equal(img.Pix, truth.Pix) {
				for y:=0; y<m.Height; y++ {
					for x:=0; x<m.Width; x++ {
						r, g, b:=img.RGB(x, y)
						if r!=60 || g!=120 || b!=180 {
							t.Fatalf("%s %s %s: pixel (%d,%d)=(%d,%d,%d); want (60,120,180)", p.pattern, p.layout, method, x, y, r, g, b)
						}
					}
				}
			}
		}
	}
}

// The documented 4x4 RGGB scenario: nearest neighbor at pixel (0,0) takes
// green from the first match in the distance-1 ring and blue from the
// first match in its ring, yielding the literal output (51,102,153,255)
func TestNearestConcreteScenario(t *testing.T) {
	samples:=[]float32{
		.2, .4, .2, .4,
		.4, .6, .4, .6,
		.2, .4, .2, .4,
		.4, .6, .4, .6,
	}
	m:=mosaic.New(4, 4, samples, cfa.Bayer, cfa.RGGB)
	img, err:=Reconstruct(m, Nearest, DefaultParams())
	if err!=nil { t.Fatal(err) }

	r, g, b:=img.RGB(0, 0)
	if r!=51 || g!=102 || b!=153 {
		t.Errorf("pixel (0,0)=(%d,%d,%d); want (51,102,153)", r, g, b)
	}
	if a:=img.Pix[3]; a!=255 {
		t.Errorf("alpha=%d; want 255", a)
	}
}

func TestNearestMissingChannelStaysZero(t *testing.T) {
	// degenerate pattern classifies everything as green, so red and blue
	// are never found within the ring search limit
	m:=mosaic.New(4, 4, make([]float32, 16), "unknown", "")
	img, err:=Reconstruct(m, Nearest, DefaultParams())
	if err!=nil { t.Fatal(err) }
	r, _, b:=img.RGB(2, 2)
	if r!=0 || b!=0 { t.Errorf("missing channels=(%d,%d); want (0,0)", r, b) }
}

func TestBilinearAveragesCardinalGreens(t *testing.T) {
	samples:=[]float32{
		.2, .4, .2, .4,
		.4, .6, .4, .6,
		.2, .4, .2, .4,
		.4, .6, .4, .6,
	}
	m:=mosaic.New(4, 4, samples, cfa.Bayer, cfa.RGGB)
	img, err:=Reconstruct(m, Bilinear, DefaultParams())
	if err!=nil { t.Fatal(err) }

	// at the red pixel (2,2), greens are the four cardinals, all 0.4
	_, g, _:=img.RGB(2, 2)
	if g!=102 { t.Errorf("green at (2,2)=%d; want 102", g) }
	// and blues are the four diagonals, all 0.6
	_, _, b:=img.RGB(2, 2)
	if b!=153 { t.Errorf("blue at (2,2)=%d; want 153", b) }
}

// With degree 1, Wu's weighted average must equal the unweighted mean of
// the same neighbor set its radius selects
func TestWuDegreeOneReduction(t *testing.T) {
	m:=randomMosaic(10, 10, cfa.Bayer, cfa.RGGB, 7)
	img, err:=Reconstruct(m, Wu, Params{WuDegree: 1})
	if err!=nil { t.Fatal(err) }

	clf:=m.Classifier()
	for y:=2; y<8; y++ {
		for x:=2; x<8; x++ {
			if clf.Classify(x, y)==cfa.G { continue }
			nbs:=m.Neighbors(x, y, 2, cfa.G)
			sum:=float32(0)
			for _, nb:=range nbs { sum+=nb.Value }
			want:=rgba.Quantize(sum/float32(len(nbs)))
			if got:=img.Channel(x, y, int(cfa.G)); got!=want {
				t.Errorf("green at (%d,%d)=%d; want plain average %d", x, y, got, want)
			}
		}
	}
}

// Around the red pixel (2,2), the four distance-1 greens are dark and the
// eight distance-sqrt(5) greens in the radius-2 window bright. Degree 1
// averages them all equally; a higher degree weights the near darks more
// and must pull the green estimate down
func TestWuHigherDegreeWeightsNearNeighborsMore(t *testing.T) {
	clf:=cfa.NewClassifier(cfa.Bayer, cfa.RGGB)
	samples:=make([]float32, 100)
	for y:=0; y<10; y++ {
		for x:=0; x<10; x++ {
			if clf.Classify(x, y)==cfa.G { samples[y*10+x]=0.9 }
		}
	}
	for _,p:=range [][2]int{{1, 2}, {3, 2}, {2, 1}, {2, 3}} {
		samples[p[1]*10+p[0]]=0.1
	}
	m:=mosaic.New(10, 10, samples, cfa.Bayer, cfa.RGGB)

	img1, err:=Reconstruct(m, Wu, Params{WuDegree: 1})
	if err!=nil { t.Fatal(err) }
	img4, err:=Reconstruct(m, Wu, Params{WuDegree: 4})
	if err!=nil { t.Fatal(err) }
	g1:=img1.Channel(2, 2, int(cfa.G))
	g4:=img4.Channel(2, 2, int(cfa.G))
	if g4>=g1 {
		t.Errorf("green at (2,2): degree 4 gives %d, degree 1 gives %d; want degree 4 lower", g4, g1)
	}
}

// On a constant-color input all residuals vanish, so Kiku's output equals
// its bilinear baseline exactly, independent of the iteration count
func TestKikuNoOpOnFlatField(t *testing.T) {
	for _, pattern:=range []cfa.Pattern{cfa.Bayer, cfa.XTrans} {
		m, truth:=flatMosaic(12, 12, pattern, cfa.RGGB, 80, 160, 40)
		var first *rgba.Image
		for _, iters:=range []int{1, 2, 5} {
			img, err:=Reconstruct(m, Kiku, Params{KikuIterations: iters})
			if err!=nil { t.Fatal(err) }
			if !bytes.Equal(img.Pix, truth.Pix) {
				t.Errorf("%s iters=%d: flat field not preserved", pattern, iters)
			}
			if first==nil {
				first=img
			} else if !bytes.Equal(img.Pix, first.Pix) {
				t.Errorf("%s iters=%d: output differs from single iteration", pattern, iters)
			}
		}
	}
}

// The propagation passes consult cells computed earlier in the same pass,
// so the row-major order contract makes repeated runs bit-identical. This
// implementation never parallelizes within a pass
func TestLienDeterminism(t *testing.T) {
	for _, pattern:=range []cfa.Pattern{cfa.Bayer, cfa.XTrans} {
		m:=randomMosaic(16, 9, pattern, cfa.RGGB, 11)
		a, err:=Reconstruct(m, Lien, DefaultParams())
		if err!=nil { t.Fatal(err) }
		b, err:=Reconstruct(m, Lien, DefaultParams())
		if err!=nil { t.Fatal(err) }
		if !bytes.Equal(a.Pix, b.Pix) {
			t.Errorf("%s: repeated reconstructions differ", pattern)
		}
	}
}

func TestNiuParameterGuards(t *testing.T) {
	m:=randomMosaic(8, 8, cfa.Bayer, cfa.RGGB, 5)
	// a negative threshold clamps to the 0.01 floor, not to the 0.1 default
	neg, err:=Reconstruct(m, Niu, Params{NiuThreshold: -1})
	if err!=nil { t.Fatal(err) }
	floor, err:=Reconstruct(m, Niu, Params{NiuThreshold: 0.01})
	if err!=nil { t.Fatal(err) }
	if !bytes.Equal(neg.Pix, floor.Pix) {
		t.Errorf("negative threshold does not reconstruct like the 0.01 floor")
	}
	for i:=0; i<len(neg.Pix); i+=4 {
		if neg.Pix[i+3]!=255 { t.Fatalf("alpha at %d is %d", i, neg.Pix[i+3]) }
	}
}

func TestUnknownMethodErrors(t *testing.T) {
	m:=randomMosaic(4, 4, cfa.Bayer, cfa.RGGB, 1)
	if _, err:=Reconstruct(m, "vng", DefaultParams()); err==nil {
		t.Errorf("expected error for unknown method")
	}
}

func TestUnknownPatternDegradesToGreen(t *testing.T) {
	// classifier falls back to constant green; reconstruction stays well
	// defined with red and blue estimated from an empty universe
	m:=mosaic.New(6, 6, make([]float32, 36), "foveon", "")
	for _, method:=range Methods {
		if _, err:=Reconstruct(m, method, DefaultParams()); err!=nil {
			t.Errorf("%s: %s", method, err.Error())
		}
	}
}
