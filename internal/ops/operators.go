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
	"errors"
	"fmt"
	"strings"

	"github.com/mlnoga/demosaic/internal/cfa"
	"github.com/mlnoga/demosaic/internal/demosaic"
	"github.com/mlnoga/demosaic/internal/metrics"
	"github.com/mlnoga/demosaic/internal/mosaic"
)

// Simulates a color filter array exposure of the frame's ground truth
// image. Takes one input, produces one output
type OpSimulate struct {
	OpUnaryBase
	Pattern cfa.Pattern `json:"pattern"`
	Layout  cfa.Layout  `json:"layout"`
}

func init() { SetOperatorFactory(func() Operator { return NewOpSimulateDefault() }) } // register the operator for JSON decoding

func NewOpSimulateDefault() *OpSimulate { return NewOpSimulate(cfa.Bayer, cfa.RGGB) }

func NewOpSimulate(pattern cfa.Pattern, layout cfa.Layout) *OpSimulate {
	op:=OpSimulate{
		OpUnaryBase: OpUnaryBase{OpBase: OpBase{Type: "simulate", Active: true}},
		Pattern:     pattern,
		Layout:      layout,
	}
	op.OpUnaryBase.Apply=op.Apply // assign class method to superclass abstract method
	return &op
}

func (op *OpSimulate) Apply(f *Frame, c *Context) (*Frame, error) {
	if f.Truth==nil { return nil, fmt.Errorf("%d: %s operator without ground truth image", f.ID, op.Type) }
	f.Mosaic=mosaic.NewFromImage(f.Truth, op.Pattern, op.Layout)
	fmt.Fprintf(c.Log, "%d: Simulated %s mosaic %dx%d\n", f.ID, op.Pattern, f.Mosaic.Width, f.Mosaic.Height)
	return f, nil
}

// Adds synthetic uniform sensor noise to the ground truth before mosaic
// simulation, for metric experiments. Takes one input, produces one output
type OpNoise struct {
	OpUnaryBase
	Amplitude int    `json:"amplitude"`
	Seed      uint32 `json:"seed"`
}

func init() { SetOperatorFactory(func() Operator { return NewOpNoiseDefault() }) } // register the operator for JSON decoding

func NewOpNoiseDefault() *OpNoise { return NewOpNoise(0, 1) }

func NewOpNoise(amplitude int, seed uint32) *OpNoise {
	op:=OpNoise{
		OpUnaryBase: OpUnaryBase{OpBase: OpBase{Type: "noise", Active: amplitude>0}},
		Amplitude:   amplitude,
		Seed:        seed,
	}
	op.OpUnaryBase.Apply=op.Apply // assign class method to superclass abstract method
	return &op
}

func (op *OpNoise) Apply(f *Frame, c *Context) (*Frame, error) {
	if !op.Active || op.Amplitude<=0 { return f, nil }
	if f.Truth==nil { return nil, fmt.Errorf("%d: %s operator without ground truth image", f.ID, op.Type) }
	f.Truth=f.Truth.AddNoise(op.Amplitude, op.Seed+uint32(f.ID))
	fmt.Fprintf(c.Log, "%d: Added uniform noise amplitude %d\n", f.ID, op.Amplitude)
	return f, nil
}

// Reconstructs a full color image from the frame's mosaic with the
// selected method. Takes one input, produces one output
type OpDemosaic struct {
	OpUnaryBase
	Method string          `json:"method"`
	Params demosaic.Params `json:"params"`
}

func init() { SetOperatorFactory(func() Operator { return NewOpDemosaicDefault() }) } // register the operator for JSON decoding

func NewOpDemosaicDefault() *OpDemosaic { return NewOpDemosaic(demosaic.Bilinear, demosaic.DefaultParams()) }

func NewOpDemosaic(method string, params demosaic.Params) *OpDemosaic {
	op:=OpDemosaic{
		OpUnaryBase: OpUnaryBase{OpBase: OpBase{Type: "demosaic", Active: true}},
		Method:      method,
		Params:      params,
	}
	op.OpUnaryBase.Apply=op.Apply // assign class method to superclass abstract method
	return &op
}

func (op *OpDemosaic) Apply(f *Frame, c *Context) (*Frame, error) {
	if f.Mosaic==nil { return nil, fmt.Errorf("%d: %s operator without mosaic", f.ID, op.Type) }
	recon, err:=demosaic.Reconstruct(f.Mosaic, op.Method, op.Params)
	if err!=nil { return nil, err }
	f.Recon=recon
	fmt.Fprintf(c.Log, "%d: Reconstructed with %s\n", f.ID, op.Method)
	return f, nil
}

// Computes error statistics of the reconstruction against the ground
// truth. Takes one input, produces one output
type OpErrorStats struct {
	OpUnaryBase
}

func init() { SetOperatorFactory(func() Operator { return NewOpErrorStatsDefault() }) } // register the operator for JSON decoding

func NewOpErrorStatsDefault() *OpErrorStats { return NewOpErrorStats() }

func NewOpErrorStats() *OpErrorStats {
	op:=OpErrorStats{
		OpUnaryBase: OpUnaryBase{OpBase: OpBase{Type: "errorStats", Active: true}},
	}
	op.OpUnaryBase.Apply=op.Apply // assign class method to superclass abstract method
	return &op
}

func (op *OpErrorStats) Apply(f *Frame, c *Context) (*Frame, error) {
	if f.Truth==nil || f.Recon==nil { return nil, fmt.Errorf("%d: %s operator needs ground truth and reconstruction", f.ID, op.Type) }
	if f.Truth.Width!=f.Recon.Width || f.Truth.Height!=f.Recon.Height {
		return nil, fmt.Errorf("%d: dimension mismatch %dx%d vs %dx%d", f.ID, f.Truth.Width, f.Truth.Height, f.Recon.Width, f.Recon.Height)
	}
	f.Stats=metrics.Compute(f.Truth, f.Recon)
	fmt.Fprintf(c.Log, "%d: %s\n", f.ID, f.Stats)
	return f, nil
}

// Saves the error heatmap under a given filename, with pattern expansion
// for %d based on the frame id. Takes one input, produces one output
type OpHeatmap struct {
	OpUnaryBase
	FilePattern string `json:"filePattern"`
}

func init() { SetOperatorFactory(func() Operator { return NewOpHeatmapDefault() }) } // register the operator for JSON decoding

func NewOpHeatmapDefault() *OpHeatmap { return NewOpHeatmap("") }

func NewOpHeatmap(filePattern string) *OpHeatmap {
	op:=OpHeatmap{
		OpUnaryBase: OpUnaryBase{OpBase: OpBase{Type: "heatmap", Active: filePattern!=""}},
		FilePattern: filePattern,
	}
	op.OpUnaryBase.Apply=op.Apply // assign class method to superclass abstract method
	return &op
}

func (op *OpHeatmap) Apply(f *Frame, c *Context) (*Frame, error) {
	if !op.Active || op.FilePattern=="" { return f, nil }
	if f.Stats==nil { return nil, fmt.Errorf("%d: %s operator without error statistics", f.ID, op.Type) }
	fileName:=expandPattern(op.FilePattern, f.ID)
	fmt.Fprintf(c.Log, "%d: Writing error heatmap to %s\n", f.ID, fileName)
	return f, f.Stats.Heatmap().WriteFile(fileName)
}

// Saves the reconstruction under a given filename, with pattern expansion
// for %d based on the frame id. Takes one input, produces one output
type OpSave struct {
	OpUnaryBase
	FilePattern string `json:"filePattern"`
}

func init() { SetOperatorFactory(func() Operator { return NewOpSaveDefault() }) } // register the operator for JSON decoding

func NewOpSaveDefault() *OpSave { return NewOpSave("") }

func NewOpSave(filePattern string) *OpSave {
	op:=OpSave{
		OpUnaryBase: OpUnaryBase{OpBase: OpBase{Type: "save", Active: filePattern!=""}},
		FilePattern: filePattern,
	}
	op.OpUnaryBase.Apply=op.Apply // assign class method to superclass abstract method
	return &op
}

func (op *OpSave) Apply(f *Frame, c *Context) (*Frame, error) {
	if !op.Active || op.FilePattern=="" { return f, nil }
	if f.Recon==nil { return nil, errors.New("save operator without reconstruction") }
	fileName:=expandPattern(op.FilePattern, f.ID)
	fmt.Fprintf(c.Log, "%d: Writing %dx%d reconstruction to %s\n", f.ID, f.Recon.Width, f.Recon.Height, fileName)
	if err:=f.Recon.WriteFile(fileName); err!=nil {
		return nil, fmt.Errorf("%d: error writing to file %s: %s", f.ID, fileName, err.Error())
	}
	return f, nil
}

func expandPattern(pattern string, id int) string {
	if strings.Contains(pattern, "%d") {
		return fmt.Sprintf(pattern, id)
	}
	return pattern
}
