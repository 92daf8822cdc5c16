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


package rest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mlnoga/demosaic/internal/cfa"
	"github.com/mlnoga/demosaic/internal/demosaic"
	"github.com/mlnoga/demosaic/internal/ops"
)

func Serve() {
	newRouter().Run() // listen and serve on 0.0.0.0:8080
}

func newRouter() *gin.Engine {
	r:=gin.Default()
	api:=r.Group("/api")
	{
		v1:=api.Group("/v1")
		{
			v1.GET ("/ping",     getPing)
			v1.POST("/demosaic", postDemosaic)
			v1.POST("/stats",    postStats)
		}
	}
	return r
}

func getPing(c *gin.Context) {
	c.JSON(200, gin.H{
		"message": "pong",
	})
}

func printArgs(logWriter io.Writer, prefix, suffix string, args interface{}) error {
	m, err:=json.MarshalIndent(args, "", "  ")
	if err!=nil { return err }
	fmt.Fprintf(logWriter, "%s%s%s", prefix, string(m), suffix)
	return nil
}

type postDemosaicArgs struct {
	FilePatterns []string         `json:"filePatterns"`
	Pattern      cfa.Pattern      `json:"pattern"`
	Layout       cfa.Layout       `json:"layout"`
	Method       string           `json:"method"`
	Params       demosaic.Params  `json:"params"`
	Noise        int              `json:"noise"`
	OutPattern   string           `json:"outPattern"`
	HeatPattern  string           `json:"heatPattern"`
}

// Runs the full pipeline for all matched files: simulate, reconstruct,
// measure, save. Streams progress as text/plain
func postDemosaic(c *gin.Context) {
	logWriter:=c.Writer
	var args postDemosaicArgs
	if err:=c.ShouldBind(&args); err!=nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if args.Pattern=="" { args.Pattern=cfa.Bayer }
	if args.Layout=="" { args.Layout=cfa.RGGB }
	if args.Method=="" { args.Method=demosaic.Bilinear }
	for _,p:=range []string{args.OutPattern, args.HeatPattern} {
		if p!="" && !ops.IsPathAllowed(p) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "output path outside current directory tree"})
			return
		}
	}

	header:=logWriter.Header()
	header.Set("Content-Type", "text/plain")
	logWriter.WriteHeader(http.StatusOK)

	if err:=printArgs(logWriter, "Arguments:\n", "\n", args); err!=nil {
		fmt.Fprintf(logWriter, "Error printing arguments: %s\n", err.Error())
		return
	}

	ctx:=ops.NewContext(logWriter)
	seq:=ops.NewOpSequence(
		ops.NewOpLoadMany(args.FilePatterns),
		ops.NewOpNoise(args.Noise, 1),
		ops.NewOpSimulate(args.Pattern, args.Layout),
		ops.NewOpDemosaic(args.Method, args.Params),
		ops.NewOpErrorStats(),
		ops.NewOpHeatmap(args.HeatPattern),
		ops.NewOpSave(args.OutPattern),
	)
	promises, err:=seq.MakePromises(nil, ctx)
	if err!=nil {
		fmt.Fprintf(logWriter, "error: %s\n", err.Error())
		logWriter.(http.Flusher).Flush()
		return
	}
	if _, err=ops.MaterializeAll(promises, ctx.MaxThreads); err!=nil {
		fmt.Fprintf(logWriter, "error: %s\n", err.Error())
	}
	logWriter.(http.Flusher).Flush()
}

type postStatsArgs struct {
	TruthFile string `json:"truthFile"`
	ReconFile string `json:"reconFile"`
}

// Compares two finished images and returns their error statistics as JSON
func postStats(c *gin.Context) {
	var args postStatsArgs
	if err:=c.ShouldBind(&args); err!=nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !ops.IsPathAllowed(args.TruthFile) || !ops.IsPathAllowed(args.ReconFile) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "filename outside current directory tree"})
		return
	}

	stats, err:=compareFiles(args.TruthFile, args.ReconFile)
	if err!=nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}
