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
	"fmt"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"strings"

	"golang.org/x/image/tiff"
)

// Write the image to a file, selecting the format from the filename
// suffix. Supports .png, .jpg/.jpeg and .tif/.tiff
func (img *Image) WriteFile(fileName string) error {
	file, err:=os.Create(fileName)
	if err!=nil { return err }
	defer file.Close()

	writer:=bufio.NewWriter(file)
	defer writer.Flush()

	fnLower:=strings.ToLower(fileName)
	switch {
	case strings.HasSuffix(fnLower, ".png"):
		return img.WritePNG(writer)
	case strings.HasSuffix(fnLower, ".jpg"), strings.HasSuffix(fnLower, ".jpeg"):
		return img.WriteJPG(writer, 95)
	case strings.HasSuffix(fnLower, ".tif"), strings.HasSuffix(fnLower, ".tiff"):
		return img.WriteTIFF(writer)
	}
	return fmt.Errorf("unknown suffix in output filename %s", fileName)
}

// Write the image to PNG
func (img *Image) WritePNG(writer io.Writer) error {
	return png.Encode(writer, img.ToGoImage())
}

// Write the image to JPG with the given quality
func (img *Image) WriteJPG(writer io.Writer, quality int) error {
	return jpeg.Encode(writer, img.ToGoImage(), &jpeg.Options{Quality: quality})
}

// Write the image to uncompressed TIFF
func (img *Image) WriteTIFF(writer io.Writer) error {
	return tiff.Encode(writer, img.ToGoImage(), &tiff.Options{Compression: tiff.Uncompressed})
}
