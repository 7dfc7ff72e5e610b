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

package gray

import (
	"fmt"

	"github.com/mlnoga/ppmbench/internal/ppm"
)

// Luminance weights for red, green and blue
const (
	WeightR = 0.21
	WeightG = 0.71
	WeightB = 0.07
)

// Returns the luminance 0.21 R + 0.71 G + 0.07 B of a pixel, truncated towards zero
// and clamped to [0, 255]
func Luminance(p ppm.Pixel) uint8 {
	lum := WeightR*float64(p.R) + WeightG*float64(p.G) + WeightB*float64(p.B)
	if lum <= 0 {
		return 0
	}
	if lum >= ppm.MaxValue {
		return ppm.MaxValue
	}
	return uint8(lum)
}

// Converts an image to gray scale with up to the given number of threads. All three channels
// of each output pixel hold the luminance of the input pixel. The input is not modified.
func Convert(in *ppm.Image, threads int) (*ppm.Image, error) {
	if in == nil || in.Width <= 0 || in.Height <= 0 || len(in.Data) != in.Width*in.Height {
		return nil, fmt.Errorf("%w: gray scale conversion needs a non-empty image", ppm.ErrConfiguration)
	}
	if threads < 1 {
		return nil, fmt.Errorf("%w: invalid number of threads %d", ppm.ErrConfiguration, threads)
	}
	out, err := ppm.NewImageFromImage(in)
	if err != nil {
		return nil, err
	}

	ppm.ParallelRows(in.Height, threads, func(lower, upper int) {
		src := in.Data[lower*in.Width : upper*in.Width]
		dest := out.Data[lower*in.Width : upper*in.Width]
		for i, p := range src {
			l := Luminance(p)
			dest[i] = ppm.Pixel{R: l, G: l, B: l}
		}
	})
	return out, nil
}
