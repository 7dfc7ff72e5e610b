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

package ppm

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/pbnjay/memory"
)

// A single RGB pixel with 8 bits per channel. No alpha.
type Pixel struct {
	R, G, B uint8
}

// A decoded raster image. Pixels are stored row-major, len(Data)==Width*Height.
// Kernels treat an Image as read-only and allocate a fresh one for their output.
type Image struct {
	ID       int     // Sequential ID number, for log output
	FileName string  // Original file name, if any, for log output
	Width    int     // Number of columns
	Height   int     // Number of rows
	Data     []Pixel // The pixels, row by row
}

// Bytes per pixel in the P6 payload
const bytesPerPixel = 3

// Creates an image of the given dimensions with all pixels black.
// The buffer is sized exactly to width*height. Fails with ErrConfiguration for
// non-positive dimensions, and with ErrAllocation if the buffer would overflow
// the address space or exceed physical memory.
func NewImage(width, height int) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: invalid image size %dx%d", ErrConfiguration, width, height)
	}
	if err := checkAllocation(width, height); err != nil {
		return nil, err
	}
	return &Image{
		Width:  width,
		Height: height,
		Data:   make([]Pixel, width*height),
	}, nil
}

// Creates an image with the same ID, file name and dimensions as the given one.
// Pixel data is freshly allocated, not copied.
func NewImageFromImage(img *Image) (*Image, error) {
	out, err := NewImage(img.Width, img.Height)
	if err != nil {
		return nil, err
	}
	out.ID = img.ID
	out.FileName = img.FileName
	return out, nil
}

// Returns an error wrapping ErrAllocation if a width x height pixel buffer cannot be sized
func checkAllocation(width, height int) error {
	if width > math.MaxInt/height {
		return fmt.Errorf("%w: %dx%d pixels overflow the address space", ErrAllocation, width, height)
	}
	pixels := width * height
	if pixels > math.MaxInt/bytesPerPixel {
		return fmt.Errorf("%w: %d pixels overflow the address space", ErrAllocation, pixels)
	}
	bytes := uint64(pixels) * bytesPerPixel
	if total := memory.TotalMemory(); total > 0 && bytes > total {
		return fmt.Errorf("%w: %dx%d pixels need %d MiB, physical memory is %d MiB",
			ErrAllocation, width, height, bytes/1024/1024, total/1024/1024)
	}
	return nil
}

// Returns the index of pixel (x,y) into Data
func (img *Image) Offset(x, y int) int {
	return y*img.Width + x
}

// Returns true if (x,y) lies within [0,Width)x[0,Height)
func (img *Image) InBounds(x, y int) bool {
	return x >= 0 && x < img.Width && y >= 0 && y < img.Height
}

// Returns the pixel at column x, row y. Panics if out of bounds
func (img *Image) Pixel(x, y int) Pixel {
	return img.Data[img.Offset(x, y)]
}

// Sets the pixel at column x, row y. Panics if out of bounds
func (img *Image) SetPixel(x, y int, p Pixel) {
	img.Data[img.Offset(x, y)] = p
}

// Returns the pixels of row y. The slice aliases the image data
func (img *Image) Row(y int) []Pixel {
	return img.Data[y*img.Width : (y+1)*img.Width]
}

// Returns true if both images have equal dimensions and pixels
func (img *Image) Equal(other *Image) bool {
	if img.Width != other.Width || img.Height != other.Height || len(img.Data) != len(other.Data) {
		return false
	}
	for i, p := range img.Data {
		if p != other.Data[i] {
			return false
		}
	}
	return true
}

// Returns the image dimensions as a string, for log output
func (img *Image) DimensionsToString() string {
	return fmt.Sprintf("%dx%d", img.Width, img.Height)
}

// ColorModel implements image.Image
func (img *Image) ColorModel() color.Model { return color.RGBAModel }

// Bounds implements image.Image
func (img *Image) Bounds() image.Rectangle { return image.Rect(0, 0, img.Width, img.Height) }

// At implements image.Image. Out of bounds pixels are transparent black
func (img *Image) At(x, y int) color.Color {
	if !img.InBounds(x, y) {
		return color.RGBA{}
	}
	p := img.Pixel(x, y)
	return color.RGBA{R: p.R, G: p.G, B: p.B, A: 0xff}
}
