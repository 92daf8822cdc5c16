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


// Package ops provides a JSON-serializable operator pipeline for
// demosaicing workloads: load ground truth, simulate a sensor mosaic,
// reconstruct, measure, save
package ops

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pbnjay/memory"

	"github.com/mlnoga/demosaic/internal/metrics"
	"github.com/mlnoga/demosaic/internal/mosaic"
	"github.com/mlnoga/demosaic/internal/rgba"
)

// A processing frame traveling through the pipeline. Operators fill in
// fields as they run; earlier fields are never mutated once set
type Frame struct {
	ID       int
	FileName string

	Truth *rgba.Image     // ground truth, if loaded
	Mosaic *mosaic.Mosaic // simulated sensor mosaic
	Recon *rgba.Image     // reconstruction result
	Stats *metrics.Stats  // error statistics vs ground truth
}

// An execution context for operators
type Context struct {
	Log        io.Writer
	MemoryMB   int  // memory.TotalMemory()/1024/1024
	MaxThreads int  `json:"maxThreads"`
}

func NewContext(log io.Writer) *Context {
	return &Context{
		Log:        log,
		MemoryMB:   int(memory.TotalMemory()/1024/1024),
		MaxThreads: runtime.GOMAXPROCS(0),
	}
}

// A promise for a processing frame. Returns a materialized frame, or an
// error
type Promise func() (f *Frame, err error)

// Materializes all promises with given concurrency limit. Frames are
// independent of each other; passes inside one reconstruction stay
// sequential per their algorithm contract
func MaterializeAll(ins []Promise, maxThreads int) (outs []*Frame, err error) {
	if len(ins)==0 { return nil, nil }
	outs=make([]*Frame, len(ins))
	limiter:=make(chan bool, maxThreads)
	errs:=make(chan error, len(ins))
	for i, in:=range ins {
		limiter <- true
		go func(i int, theIn Promise) {
			defer func() { <-limiter }()
			f, err:=theIn()
			outs[i]=f
			errs <- err
		}(i, in)
	}
	for i:=0; i<cap(limiter); i++ {  // wait for goroutines to finish
		limiter <- true
	}
	for i:=0; i<len(ins); i++ {  // collect errors
		if e:=<-errs; e!=nil {
			if err==nil {
				err=e
			} else {
				err=fmt.Errorf("%s; %s", err.Error(), e.Error())
			}
		}
	}
	return removeNils(outs), err
}

// Remove nils from an array of frames, editing the underlying array in place
func removeNils(frames []*Frame) []*Frame {
	o:=0
	for i:=0; i<len(frames); i++ {
		if frames[i]!=nil {
			frames[o]=frames[i]
			o++
		}
	}
	for i:=o; i<len(frames); i++ {
		frames[i]=nil
	}
	return frames[:o]
}

// A general pipeline operator: takes n promises as inputs, and produces m
// promises as output or an error
type Operator interface {
	GetType() string
	IsActive() bool
	MakePromises(ins []Promise, c *Context) (outs []Promise, err error)
}

// Base type for operators, including type information for JSON
// serializing/deserializing
type OpBase struct {
	Type   string `json:"type"`
	Active bool   `json:"active"`
}

func (op *OpBase) GetType() string { return op.Type }
func (op *OpBase) IsActive() bool  { return op.Active }

// Factory method for operators, for JSON deserializing
type OperatorFactory func() Operator

var operatorFactories=map[string]OperatorFactory{}

// Returns the operator factory for a given type string
func GetOperatorFactory(t string) OperatorFactory {
	return operatorFactories[t]
}

// Registers a factory under the type string of its exemplar
func SetOperatorFactory(f OperatorFactory) {
	op:=f()
	t:=op.GetType()
	if GetOperatorFactory(t)!=nil { panic(fmt.Sprintf("error: re-registering operator key %s\n", t)) }
	operatorFactories[t]=f
}

// A unary operator: applies itself to each input frame individually
type OperatorUnary interface {
	Operator
	Apply(f *Frame, c *Context) (fOut *Frame, err error)
}

// Abstract base type for unary operators
type OpUnaryBase struct {
	OpBase
	Apply func(f *Frame, c *Context) (fOut *Frame, err error) `json:"-"`
}

func (op *OpUnaryBase) MakePromises(ins []Promise, c *Context) (outs []Promise, err error) {
	if len(ins)==0 { return nil, fmt.Errorf("unary operator with %d inputs", len(ins)) }
	outs=make([]Promise, len(ins))
	for i, in:=range ins {
		outs[i]=op.MakePromise(in, c)
	}
	return outs, nil
}

func (op *OpUnaryBase) MakePromise(in Promise, c *Context) (out Promise) {
	return func() (f *Frame, err error) {
		if f, err=in(); err!=nil { return nil, err }           // materialize input promise
		if f, err=op.Apply(f, c); err!=nil { return nil, err } // apply unary operator
		return f, nil                                          // wrap output in promise
	}
}

// Returns true if a path is considered safe, i.e. not an absolute path,
// and doesn't contain the ".." characters to change to a parent directory
func IsPathAllowed(p string) bool {
	if filepath.IsAbs(p) { return false }          // relative paths only
	if strings.Contains(p, "..") { return false }  // no going outside the tree
	return true
}

// Load a single ground truth image from a single filename. Takes zero
// inputs, produces one output
type OpLoad struct {
	OpBase
	ID       int    `json:"id"`
	FileName string `json:"fileName"`
}

func init() { SetOperatorFactory(func() Operator { return NewOpLoadDefault() }) } // register the operator for JSON decoding

func NewOpLoadDefault() *OpLoad { return NewOpLoad(0, "") }

func NewOpLoad(id int, fileName string) *OpLoad {
	return &OpLoad{
		OpBase:   OpBase{Type: "load", Active: true},
		ID:       id,
		FileName: fileName,
	}
}

func (op *OpLoad) MakePromises(ins []Promise, c *Context) (outs []Promise, err error) {
	if len(ins)>0 { return nil, fmt.Errorf("%s operator with non-zero input", op.Type) }
	if !IsPathAllowed(op.FileName) { return nil, errors.New("filename outside current directory tree, aborting") }

	out:=func() (f *Frame, err error) {
		img, err:=rgba.NewImageFromFile(op.FileName)
		if err!=nil { return nil, err }
		fmt.Fprintf(c.Log, "%d: Loaded %dx%d image from %s\n", op.ID, img.Width, img.Height, op.FileName)
		return &Frame{ID: op.ID, FileName: op.FileName, Truth: img}, nil
	}
	return []Promise{out}, nil
}

// Load many ground truth images from a slice of filename patterns with
// wildcards. Takes zero inputs, produces n outputs
type OpLoadMany struct {
	OpBase
	FilePatterns []string `json:"filePatterns"`
}

func init() { SetOperatorFactory(func() Operator { return NewOpLoadManyDefault() }) } // register the operator for JSON decoding

func NewOpLoadManyDefault() *OpLoadMany { return NewOpLoadMany(nil) }

func NewOpLoadMany(filePatterns []string) *OpLoadMany {
	return &OpLoadMany{
		OpBase:       OpBase{Type: "loadMany", Active: true},
		FilePatterns: filePatterns,
	}
}

func (op *OpLoadMany) MakePromises(ins []Promise, c *Context) (outs []Promise, err error) {
	if len(ins)>0 { return nil, fmt.Errorf("%s operator with non-zero input", op.Type) }
	for _, pattern:=range op.FilePatterns {
		matches, err:=filepath.Glob(pattern)
		if err!=nil { return nil, err }
		for _, match:=range matches {
			if !IsPathAllowed(match) {
				fmt.Fprintf(c.Log, "Pattern match outside current directory tree, skipping\n")
				continue
			}
			opLoad:=NewOpLoad(len(outs), match)
			promises, err:=opLoad.MakePromises(nil, c)
			if err!=nil { return nil, err }
			outs=append(outs, promises[0])
		}
	}
	if len(outs)==0 {
		return nil, fmt.Errorf("%s operator with no files to load from pattern %v", op.Type, op.FilePatterns)
	}
	fmt.Fprintf(c.Log, "Found %d files.\n", len(outs))
	return outs, nil
}

// Applies a sequence of operators. Number of inputs and outputs as per the
// chained steps
type OpSequence struct {
	OpBase
	Steps    []Operator        `json:"-"`      // the actual steps
	StepsRaw []json.RawMessage `json:"steps"`  // helper for unmarshaling
}

func init() { SetOperatorFactory(func() Operator { return NewOpSequenceDefault() }) } // register the operator for JSON decoding

func NewOpSequenceDefault() *OpSequence { return NewOpSequence() }

func NewOpSequence(steps ...Operator) *OpSequence {
	return &OpSequence{
		OpBase: OpBase{Type: "seq", Active: len(steps)>0},
		Steps:  steps,
	}
}

// Unmarshals a sequence of polymorphic operators from JSON via the
// temporary op.StepsRaw
func (op *OpSequence) UnmarshalJSON(b []byte) error {
	type alias OpSequence
	err:=json.Unmarshal(b, (*alias)(op))
	if err!=nil { return err }

	for _, raw:=range op.StepsRaw {
		var step OpBase
		err=json.Unmarshal(raw, &step)
		if err!=nil { return err }

		var i Operator
		if factory:=GetOperatorFactory(step.Type); factory!=nil {
			i=factory()
		} else {
			return fmt.Errorf("unknown operator type '%s' in raw JSON message '%s'", step.Type, string(raw))
		}
		err=json.Unmarshal(raw, i)
		if err!=nil { return err }
		op.Steps=append(op.Steps, i)
	}
	return nil
}

// Appends one or more operators to the existing sequence
func (op *OpSequence) Append(steps ...Operator) {
	op.Steps=append(op.Steps, steps...)
}

// Marshals a sequence with polymorphic operators to JSON, using the actual
// op.Steps with label "steps" and ignoring op.StepsRaw
func (op *OpSequence) MarshalJSON() (bs []byte, err error) {
	buf:=bytes.Buffer{}
	buf.WriteString("{\"type\":")
	inner, err:=json.Marshal(op.Type)
	if err!=nil { return nil, err }
	buf.Write(inner)
	fmt.Fprintf(&buf, ", \"active\":%v, \"steps\":", op.Active)
	inner, err=json.Marshal(op.Steps)
	if err!=nil { return nil, err }
	buf.Write(inner)
	buf.WriteRune('}')
	return buf.Bytes(), nil
}

func (op *OpSequence) MakePromises(ins []Promise, c *Context) (outs []Promise, err error) {
	return op.applyRecursive(op.Steps, ins, c)
}

func (op *OpSequence) applyRecursive(steps []Operator, ins []Promise, c *Context) (outs []Promise, err error) {
	if len(steps)==0 { return ins, nil }
	ins, err=steps[0].MakePromises(ins, c)
	if err!=nil { return nil, err }
	return op.applyRecursive(steps[1:], ins, c)
}

// Applies a single operator to each input. Takes n inputs, produces n
// outputs
type OpForEach struct {
	OpBase
	Operation Operator `json:"operation"`
}

func init() { SetOperatorFactory(func() Operator { return NewOpForEachDefault() }) } // register the operator for JSON decoding

func NewOpForEachDefault() *OpForEach { return NewOpForEach(nil) }

func NewOpForEach(operation Operator) *OpForEach {
	return &OpForEach{
		OpBase:    OpBase{Type: "forEach", Active: operation!=nil},
		Operation: operation,
	}
}

func (op *OpForEach) MakePromises(ins []Promise, c *Context) (outs []Promise, err error) {
	if len(ins)==0 { return ins, nil }
	if op.Operation==nil { return nil, fmt.Errorf("%s operator has no operation to apply", op.Type) }
	for _, in:=range ins {
		out, err:=op.Operation.MakePromises([]Promise{in}, c)
		if err!=nil { return nil, err }
		if len(out)!=1 { return nil, fmt.Errorf("%s operator needs exactly one promise from embedded operation", op.Type) }
		outs=append(outs, out[0])
	}
	return outs, nil
}
