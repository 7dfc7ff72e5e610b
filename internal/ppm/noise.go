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

	"github.com/valyala/fastrand"
)

// Resolution of the noise probability
const noiseSteps = 1 << 20

// Returns a copy of the image where the given fraction of pixels is replaced
// with salt (white) or pepper (black) impulse noise, in equal proportions.
// The same non-zero seed always yields the same noise pattern, zero picks a random one.
func NewImageWithImpulseNoise(img *Image, fraction float64, seed uint32) (*Image, error) {
	if fraction < 0 || fraction > 1 {
		return nil, fmt.Errorf("%w: noise fraction %g outside [0,1]", ErrConfiguration, fraction)
	}
	out, err := NewImageFromImage(img)
	if err != nil {
		return nil, err
	}
	copy(out.Data, img.Data)

	rng := fastrand.RNG{}
	rng.Seed(seed)
	threshold := uint32(fraction * noiseSteps)
	for i := range out.Data {
		if rng.Uint32n(noiseSteps) >= threshold {
			continue
		}
		if rng.Uint32()&1 == 0 {
			out.Data[i] = Pixel{}
		} else {
			out.Data[i] = Pixel{R: MaxValue, G: MaxValue, B: MaxValue}
		}
	}
	return out, nil
}
