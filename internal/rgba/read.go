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
	"bufio"
	"image"
	_ "image/jpeg"  // register decoders
	_ "image/png"
	"os"

	_ "golang.org/x/image/tiff"
)

// Read a ground truth image from a PNG, JPEG or TIFF file
func NewImageFromFile(fileName string) (*Image, error) {
	file, err:=os.Open(fileName)
	if err!=nil { return nil, err }
	defer file.Close()

	src, _, err:=image.Decode(bufio.NewReader(file))
	if err!=nil { return nil, err }
	return NewImageFromGoImage(src), nil
}
