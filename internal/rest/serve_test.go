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
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req:=httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w:=httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestPing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w:=httptest.NewRecorder()
	newRouter().ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/ping", nil))
	if w.Code!=http.StatusOK { t.Errorf("code=%d; want 200", w.Code) }
	if !strings.Contains(w.Body.String(), "pong") { t.Errorf("body=%s; want pong", w.Body.String()) }
}

// Filenames must stay inside the current directory tree: no absolute
// paths, no parent traversal. Violations are rejected before any
// filesystem access
func TestStatsRejectsPathsOutsideTree(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router:=newRouter()
	cases:=[]string{
		`{"truthFile":"/etc/hostname", "reconFile":"recon.png"}`,
		`{"truthFile":"truth.png", "reconFile":"../recon.png"}`,
		`{"truthFile":"sub/../../truth.png", "reconFile":"recon.png"}`,
	}
	for _,body:=range cases {
		if w:=postJSON(router, "/api/v1/stats", body); w.Code!=http.StatusBadRequest {
			t.Errorf("%s: code=%d; want 400", body, w.Code)
		}
	}
}

// The same rule applies to the reconstruction and heatmap output patterns
func TestDemosaicRejectsOutputPathsOutsideTree(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router:=newRouter()
	cases:=[]string{
		`{"filePatterns":["in.png"], "outPattern":"/tmp/out%d.png"}`,
		`{"filePatterns":["in.png"], "heatPattern":"../heat%d.png"}`,
	}
	for _,body:=range cases {
		if w:=postJSON(router, "/api/v1/demosaic", body); w.Code!=http.StatusBadRequest {
			t.Errorf("%s: code=%d; want 400", body, w.Code)
		}
	}
}
