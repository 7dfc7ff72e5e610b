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
	"errors"
	"math"
	"testing"

	"github.com/mlnoga/ppmbench/internal/ppm"
	"github.com/valyala/fastrand"
)

func TestAllRed(t *testing.T) {
	in, _ := ppm.NewImage(4, 4)
	for i := range in.Data {
		in.Data[i] = ppm.Pixel{R: 255}
	}
	out, err := Convert(in, 2)
	if err != nil {
		t.Fatal(err)
	}
	for i, p := range out.Data {
		if p != (ppm.Pixel{R: 53, G: 53, B: 53}) {
			t.Errorf("pixel %d=%v; want {53 53 53}", i, p)
		}
	}
	if in.Data[0] != (ppm.Pixel{R: 255}) {
		t.Errorf("input was modified")
	}
}

func TestLuminanceExtremes(t *testing.T) {
	if l := Luminance(ppm.Pixel{}); l != 0 {
		t.Errorf("Luminance(black)=%d; want 0", l)
	}
	// weights sum to 0.99
	if l := Luminance(ppm.Pixel{R: 255, G: 255, B: 255}); l != 252 {
		t.Errorf("Luminance(white)=%d; want 252", l)
	}
	if l := Luminance(ppm.Pixel{G: 255}); l != 181 {
		t.Errorf("Luminance(green)=%d; want 181", l)
	}
	if l := Luminance(ppm.Pixel{B: 255}); l != 17 {
		t.Errorf("Luminance(blue)=%d; want 17", l)
	}
}

func TestConvertRandom(t *testing.T) {
	in, _ := ppm.NewImage(37, 23)
	rng := fastrand.RNG{}
	rng.Seed(11)
	for i := range in.Data {
		v := rng.Uint32()
		in.Data[i] = ppm.Pixel{R: uint8(v), G: uint8(v >> 8), B: uint8(v >> 16)}
	}
	for _, threads := range []int{1, 3, 16} {
		out, err := Convert(in, threads)
		if err != nil {
			t.Fatal(err)
		}
		if out.Width != in.Width || out.Height != in.Height {
			t.Fatalf("size=%s; want %s", out.DimensionsToString(), in.DimensionsToString())
		}
		for i, p := range in.Data {
			want := uint8(math.Floor(0.21*float64(p.R) + 0.71*float64(p.G) + 0.07*float64(p.B)))
			got := out.Data[i]
			if got.R != want || got.G != want || got.B != want {
				t.Fatalf("threads=%d: pixel %d=%v from %v; want all %d", threads, i, got, p, want)
			}
		}
	}
}

func TestConvertErrors(t *testing.T) {
	in, _ := ppm.NewImage(2, 2)
	if _, err := Convert(in, 0); !errors.Is(err, ppm.ErrConfiguration) {
		t.Errorf("threads=0 err=%v; want ErrConfiguration", err)
	}
	if _, err := Convert(nil, 1); !errors.Is(err, ppm.ErrConfiguration) {
		t.Errorf("nil image err=%v; want ErrConfiguration", err)
	}
}
