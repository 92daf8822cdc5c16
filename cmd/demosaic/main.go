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

package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/klauspost/cpuid"
	"github.com/pbnjay/memory"

	"github.com/mlnoga/demosaic/internal/cfa"
	"github.com/mlnoga/demosaic/internal/demosaic"
	"github.com/mlnoga/demosaic/internal/metrics"
	"github.com/mlnoga/demosaic/internal/ops"
	"github.com/mlnoga/demosaic/internal/rest"
	"github.com/mlnoga/demosaic/internal/rgba"
)

const version = "0.1.0"

var totalMiBs=memory.TotalMemory()/1024/1024

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to `file`")

var out     = flag.String("out", "out%d.png", "save reconstructions to `file` pattern, %d is replaced by the frame id")
var heatmap = flag.String("heatmap", "", "save error heatmaps to `file` pattern, %d is replaced by the frame id")

var pattern = flag.String("pattern", "bayer", "color filter array pattern, one of bayer, xtrans")
var layout  = flag.String("cfa", "RGGB", "Bayer layout, one of RGGB, GRBG, GBRG, BGGR")
var method  = flag.String("method", "bilinear", "reconstruction method, one of nearest, bilinear, niu_edge_sensing, lien_edge_based, wu_polynomial, kiku_residual")

var niuThreshold = flag.Float64("niuThreshold", 0.1, "logistic edge threshold for niu_edge_sensing")
var niuSteepness = flag.Float64("niuSteepness", 0, "logistic steepness for niu_edge_sensing, 0=derive from threshold")
var wuDegree     = flag.Int("wuDegree", 2, "distance weighting degree for wu_polynomial, 1=plain average")
var kikuIters    = flag.Int("kikuIters", 1, "residual refinement iterations for kiku_residual")

var noise = flag.Int("noise", 0, "add uniform noise of given amplitude to the ground truth before simulation, 0=off")
var seed  = flag.Int("seed", 1, "random seed for noise injection")

var chroot = flag.String("chroot", "", "serve: change filesystem root to `dir` (requires root)")
var setuid = flag.Int("setuid", -1, "serve: change user id after chroot, -1=no change")

func main() {
	logWriter:=os.Stdout
	start:=time.Now()
	flag.Usage=func() {
		fmt.Fprintf(logWriter, `Demosaic Copyright (c) 2020 Markus L. Noga
This program comes with ABSOLUTELY NO WARRANTY.
This is free software, and you are welcome to redistribute it under certain conditions.
Refer to https://www.gnu.org/licenses/gpl-3.0.en.html for details.

Usage: %s [-flag value] (recon|stats|serve|legal|version) (img0.png ... imgn.png)

Commands:
  recon   Simulate a sensor mosaic from each ground truth image, reconstruct it and report error statistics
  stats   Compare two finished images: first is ground truth, second the reconstruction
  serve   Start the HTTP API server
  legal   Show license and attribution information
  version Show version information

Flags:
`, os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	// Enable CPU profiling if flagged
	if *cpuprofile!="" {
		f, err:=os.Create(*cpuprofile)
		if err!=nil {
			fmt.Fprintf(logWriter, "Could not create CPU profile: %s\n", err.Error())
			os.Exit(1)
		}
		defer f.Close()
		if err:=pprof.StartCPUProfile(f); err!=nil {
			fmt.Fprintf(logWriter, "Could not start CPU profile: %s\n", err.Error())
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	args:=flag.Args()
	if len(args)<1 {
		flag.Usage()
		return
	}

	switch args[0] {
	case "recon":
		fmt.Fprintf(logWriter, "Running on %s with %d MiB physical memory\n", cpuid.CPU.BrandName, totalMiBs)
		if len(args)<2 {
			fmt.Fprintf(logWriter, "recon needs at least one ground truth image\n")
			os.Exit(1)
		}
		if err:=runRecon(args[1:], logWriter); err!=nil {
			fmt.Fprintf(logWriter, "error: %s\n", err.Error())
			os.Exit(1)
		}

	case "stats":
		if len(args)!=3 {
			fmt.Fprintf(logWriter, "stats needs exactly two images: ground truth and reconstruction\n")
			os.Exit(1)
		}
		if err:=runStats(args[1], args[2], logWriter); err!=nil {
			fmt.Fprintf(logWriter, "error: %s\n", err.Error())
			os.Exit(1)
		}

	case "serve":
		if err:=rest.MakeSandbox(logWriter, *chroot, *setuid); err!=nil {
			fmt.Fprintf(logWriter, "error: %s\n", err.Error())
			os.Exit(1)
		}
		rest.Serve()

	case "legal":
		fmt.Fprintf(logWriter, "%s\n", legal)

	case "version":
		fmt.Fprintf(logWriter, "Version %s\n", version)

	default:
		flag.Usage()
		os.Exit(1)
	}

	fmt.Fprintf(logWriter, "Done after %v\n", time.Since(start))
}

// Reconstructs all given ground truth images through the operator pipeline
func runRecon(fileNames []string, logWriter *os.File) error {
	params:=demosaic.Params{
		NiuThreshold:   float32(*niuThreshold),
		NiuSteepness:   float32(*niuSteepness),
		WuDegree:       *wuDegree,
		KikuIterations: *kikuIters,
	}
	ctx:=ops.NewContext(logWriter)
	seq:=ops.NewOpSequence(
		ops.NewOpLoadMany(fileNames),
		ops.NewOpNoise(*noise, uint32(*seed)),
		ops.NewOpSimulate(cfa.Pattern(*pattern), cfa.Layout(*layout)),
		ops.NewOpDemosaic(*method, params),
		ops.NewOpErrorStats(),
		ops.NewOpHeatmap(*heatmap),
		ops.NewOpSave(*out),
	)
	promises, err:=seq.MakePromises(nil, ctx)
	if err!=nil { return err }
	frames, err:=ops.MaterializeAll(promises, ctx.MaxThreads)
	if err!=nil { return err }

	// aggregate across frames
	psnr:=0.0
	for _,f:=range frames {
		psnr+=f.Stats.Total.PSNR
	}
	if len(frames)>0 {
		fmt.Fprintf(logWriter, "Mean PSNR across %d frames: %.2f dB\n", len(frames), psnr/float64(len(frames)))
	}
	return nil
}

// Compares two finished images and prints their error statistics
func runStats(truthFile, reconFile string, logWriter *os.File) error {
	truth, err:=rgba.NewImageFromFile(truthFile)
	if err!=nil { return err }
	recon, err:=rgba.NewImageFromFile(reconFile)
	if err!=nil { return err }
	if truth.Width!=recon.Width || truth.Height!=recon.Height {
		return fmt.Errorf("dimension mismatch: %dx%d vs %dx%d", truth.Width, truth.Height, recon.Width, recon.Height)
	}
	stats:=metrics.Compute(truth, recon)
	fmt.Fprintf(logWriter, "%s\n", stats)
	if *heatmap!="" {
		fmt.Fprintf(logWriter, "Writing error heatmap to %s\n", *heatmap)
		return stats.Heatmap().WriteFile(*heatmap)
	}
	return nil
}
