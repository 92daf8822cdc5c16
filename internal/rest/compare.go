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
	"fmt"

	"github.com/mlnoga/demosaic/internal/metrics"
	"github.com/mlnoga/demosaic/internal/rgba"
)

// Loads two images and computes the error statistics of the second against
// the first. Enforces the equal-dimensions contract of the metrics engine
func compareFiles(truthFile, reconFile string) (*metrics.Stats, error) {
	truth, err:=rgba.NewImageFromFile(truthFile)
	if err!=nil { return nil, err }
	recon, err:=rgba.NewImageFromFile(reconFile)
	if err!=nil { return nil, err }
	if truth.Width!=recon.Width || truth.Height!=recon.Height {
		return nil, fmt.Errorf("dimension mismatch: %dx%d vs %dx%d", truth.Width, truth.Height, recon.Width, recon.Height)
	}
	return metrics.Compute(truth, recon), nil
}
