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


package cfa

import (
	"testing"
)

func TestClassifierBayerLayouts(t *testing.T) {
	cases:=[]struct{
		layout Layout
		want   [2][2]Channel  // indexed [y][x]
	}{
		{RGGB, [2][2]Channel{{R,G},{G,B}}},
		{GRBG, [2][2]Channel{{G,R},{B,G}}},
		{GBRG, [2][2]Channel{{G,B},{R,G}}},
		{BGGR, [2][2]Channel{{B,G},{G,R}}},
	}
	for _,c:=range cases {
		clf:=NewClassifier(Bayer, c.layout)
		if clf.Period()!=2 { t.Errorf("%s: period=%d; want 2", c.layout, clf.Period()) }
		for y:=0; y<2; y++ {
			for x:=0; x<2; x++ {
				if got:=clf.Classify(x,y); got!=c.want[y][x] {
					t.Errorf("%s: classify(%d,%d)=%s; want %s", c.layout, x, y, got, c.want[y][x])
				}
			}
		}
	}
}

func TestClassifierPeriodicity(t *testing.T) {
	clfs:=[]struct{
		name string
		clf  Classifier
	}{
		{"bayer",  NewClassifier(Bayer,  RGGB)},
		{"xtrans", NewClassifier(XTrans, "")},
	}
	for _,c:=range clfs {
		p:=c.clf.Period()
		for y:=-2*p; y<2*p; y++ {
			for x:=-2*p; x<2*p; x++ {
				ch:=c.clf.Classify(x,y)
				if got:=c.clf.Classify(x+p,y); got!=ch {
					t.Errorf("%s: classify(%d,%d)=%s but classify(%d,%d)=%s", c.name, x, y, ch, x+p, y, got)
				}
				if got:=c.clf.Classify(x,y+p); got!=ch {
					t.Errorf("%s: classify(%d,%d)=%s but classify(%d,%d)=%s", c.name, x, y, ch, x, y+p, got)
				}
			}
		}
	}
}

func TestClassifierXTransRowsAndColumns(t *testing.T) {
	clf:=NewClassifier(XTrans, "")
	for y:=0; y<6; y++ {
		seen:=map[Channel]bool{}
		for x:=0; x<6; x++ { seen[clf.Classify(x,y)]=true }
		if len(seen)!=3 { t.Errorf("row %d misses a channel: %v", y, seen) }
	}
	for x:=0; x<6; x++ {
		seen:=map[Channel]bool{}
		for y:=0; y<6; y++ { seen[clf.Classify(x,y)]=true }
		if len(seen)!=3 { t.Errorf("column %d misses a channel: %v", x, seen) }
	}
}

func TestClassifierUnknownPatternFallsBackToGreen(t *testing.T) {
	clf:=NewClassifier("quadbayer", "")
	for y:=-3; y<3; y++ {
		for x:=-3; x<3; x++ {
			if got:=clf.Classify(x,y); got!=G {
				t.Errorf("classify(%d,%d)=%s; want G", x, y, got)
			}
		}
	}
}
