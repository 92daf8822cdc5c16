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


package ops

import (
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/mlnoga/demosaic/internal/cfa"
	"github.com/mlnoga/demosaic/internal/demosaic"
	"github.com/mlnoga/demosaic/internal/rgba"
)

// Wraps an in-memory ground truth image in a source promise
func framePromise(id int, truth *rgba.Image) Promise {
	return func() (*Frame, error) {
		return &Frame{ID: id, Truth: truth}, nil
	}
}

func flatImage(width, height int, r, g, b uint8) *rgba.Image {
	img:=rgba.NewImage(width, height)
	for y:=0; y<height; y++ {
		for x:=0; x<width; x++ { img.SetRGB(x, y, r, g, b) }
	}
	return img
}

func TestSequenceJSONRoundTrip(t *testing.T) {
	seq:=NewOpSequence(
		NewOpNoise(5, 42),
		NewOpSimulate(cfa.Bayer, cfa.GRBG),
		NewOpDemosaic(demosaic.Wu, demosaic.Params{WuDegree: 3}),
		NewOpErrorStats(),
	)
	data, err:=json.Marshal(seq)
	if err!=nil { t.Fatal(err) }

	back:=NewOpSequenceDefault()
	if err:=json.Unmarshal(data, back); err!=nil { t.Fatal(err) }
	if len(back.Steps)!=4 { t.Fatalf("len(steps)=%d; want 4", len(back.Steps)) }

	wantTypes:=[]string{"noise", "simulate", "demosaic", "errorStats"}
	for i, want:=range wantTypes {
		if got:=back.Steps[i].GetType(); got!=want {
			t.Errorf("step %d type=%s; want %s", i, got, want)
		}
	}
	sim, ok:=back.Steps[1].(*OpSimulate)
	if !ok { t.Fatalf("step 1 is %T; want *OpSimulate", back.Steps[1]) }
	if sim.Pattern!=cfa.Bayer || sim.Layout!=cfa.GRBG {
		t.Errorf("simulate=(%s,%s); want (bayer,GRBG)", sim.Pattern, sim.Layout)
	}
	dem, ok:=back.Steps[2].(*OpDemosaic)
	if !ok { t.Fatalf("step 2 is %T; want *OpDemosaic", back.Steps[2]) }
	if dem.Method!=demosaic.Wu || dem.Params.WuDegree!=3 {
		t.Errorf("demosaic=(%s,%d); want (%s,3)", dem.Method, dem.Params.WuDegree, demosaic.Wu)
	}
}

func TestSequenceRejectsUnknownOperator(t *testing.T) {
	data:=[]byte(`{"type":"seq", "active":true, "steps":[{"type":"stack"}]}`)
	if err:=json.Unmarshal(data, NewOpSequenceDefault()); err==nil {
		t.Errorf("expected error for unknown operator type")
	}
}

// A deserialized operator must stay runnable: the factory binds Apply
// before JSON fills in the parameters
func TestDeserializedSequenceRuns(t *testing.T) {
	data:=[]byte(`{"type":"seq", "active":true, "steps":[
		{"type":"simulate", "active":true, "pattern":"bayer", "layout":"RGGB"},
		{"type":"demosaic", "active":true, "method":"bilinear", "params":{}},
		{"type":"errorStats", "active":true}
	]}`)
	seq:=NewOpSequenceDefault()
	if err:=json.Unmarshal(data, seq); err!=nil { t.Fatal(err) }

	ctx:=NewContext(io.Discard)
	promises, err:=seq.MakePromises([]Promise{framePromise(0, flatImage(8, 8, 50, 100, 150))}, ctx)
	if err!=nil { t.Fatal(err) }
	frames, err:=MaterializeAll(promises, ctx.MaxThreads)
	if err!=nil { t.Fatal(err) }
	if len(frames)!=1 || frames[0].Stats==nil { t.Fatalf("expected one frame with stats") }
}

// A flat field survives simulation and reconstruction without loss, so
// the pipeline must report the perfect PSNR sentinel
func TestPipelinePerfectReconstruction(t *testing.T) {
	seq:=NewOpSequence(
		NewOpSimulate(cfa.XTrans, ""),
		NewOpDemosaic(demosaic.Nearest, demosaic.DefaultParams()),
		NewOpErrorStats(),
	)
	ctx:=NewContext(io.Discard)
	ins:=[]Promise{
		framePromise(0, flatImage(12, 12, 60, 120, 180)),
		framePromise(1, flatImage(12, 12, 10, 20, 30)),
	}
	promises, err:=seq.MakePromises(ins, ctx)
	if err!=nil { t.Fatal(err) }
	frames, err:=MaterializeAll(promises, ctx.MaxThreads)
	if err!=nil { t.Fatal(err) }
	if len(frames)!=2 { t.Fatalf("len(frames)=%d; want 2", len(frames)) }
	for _, f:=range frames {
		if f.Stats.Total.PSNR!=100 {
			t.Errorf("%d: PSNR=%f; want 100", f.ID, f.Stats.Total.PSNR)
		}
	}
}

func TestMaterializeAllCollectsErrors(t *testing.T) {
	boom:=func() (*Frame, error) { return nil, errors.New("boom") }
	frames, err:=MaterializeAll([]Promise{framePromise(0, flatImage(2, 2, 1, 2, 3)), boom}, 4)
	if err==nil { t.Errorf("expected error from failing promise") }
	if len(frames)!=1 { t.Errorf("len(frames)=%d; want 1 surviving frame", len(frames)) }
}

func TestNoiseInactiveWhenAmplitudeZero(t *testing.T) {
	truth:=flatImage(4, 4, 90, 90, 90)
	op:=NewOpNoise(0, 1)
	if op.IsActive() { t.Errorf("amplitude 0 noise operator is active") }
	f, err:=op.Apply(&Frame{ID: 0, Truth: truth}, NewContext(io.Discard))
	if err!=nil { t.Fatal(err) }
	if f.Truth!=truth { t.Errorf("inactive noise operator replaced the image") }
}

func TestIsPathAllowed(t *testing.T) {
	cases:=[]struct{
		path string
		want bool
	}{
		{"image.png", true},
		{"sub/dir/image.png", true},
		{"/etc/passwd", false},
		{"../secret.png", false},
		{"sub/../../secret.png", false},
	}
	for _, c:=range cases {
		if got:=IsPathAllowed(c.path); got!=c.want {
			t.Errorf("IsPathAllowed(%s)=%v; want %v", c.path, got, c.want)
		}
	}
}
