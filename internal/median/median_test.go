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

package median

import (
	"errors"
	"sort"
	"testing"

	"github.com/mlnoga/ppmbench/internal/ppm"
	"github.com/valyala/fastrand"
)

func newRandomImage(t *testing.T, width, height int, seed uint32, levels uint32) *ppm.Image {
	img, err := ppm.NewImage(width, height)
	if err != nil {
		t.Fatalf("NewImage(%d, %d): %v", width, height, err)
	}
	rng := fastrand.RNG{}
	rng.Seed(seed)
	for i := range img.Data {
		img.Data[i] = ppm.Pixel{
			R: uint8(rng.Uint32n(levels)),
			G: uint8(rng.Uint32n(levels)),
			B: uint8(rng.Uint32n(levels)),
		}
	}
	return img
}

// Straightforward reference: collect, sort, pick
func bruteForceMedian(in *ppm.Image, w, i, j int) ppm.Pixel {
	var rs, gs, bs []int
	for k := i - w; k < i+w; k++ {
		for l := j - w; l < j+w; l++ {
			if k < 0 || k >= in.Height || l < 0 || l >= in.Width {
				continue
			}
			p := in.Pixel(l, k)
			rs, gs, bs = append(rs, int(p.R)), append(gs, int(p.G)), append(bs, int(p.B))
		}
	}
	med := func(s []int) uint8 {
		sort.Ints(s)
		m := len(s)
		if m%2 == 1 {
			return uint8(s[m/2])
		}
		return uint8((s[m/2-1] + s[m/2]) / 2)
	}
	return ppm.Pixel{R: med(rs), G: med(gs), B: med(bs)}
}

func TestFilterMatchesBruteForce(t *testing.T) {
	for _, strategy := range []Strategy{Select, Histogram, Auto} {
		for w := 1; w <= 5; w++ {
			in := newRandomImage(t, 19, 13, uint32(w*7+1), 256)
			out, err := FilterWith(in, w, 3, strategy)
			if err != nil {
				t.Fatalf("%v w=%d: %v", strategy, w, err)
			}
			for i := 0; i < in.Height; i++ {
				for j := 0; j < in.Width; j++ {
					want := bruteForceMedian(in, w, i, j)
					if got := out.Pixel(j, i); got != want {
						t.Fatalf("%v w=%d: pixel (%d,%d)=%v; want %v", strategy, w, i, j, got, want)
					}
				}
			}
		}
	}
}

func TestStrategiesAgree(t *testing.T) {
	for _, levels := range []uint32{2, 5, 256} {
		for _, w := range []int{1, 2, 3, 7, 12} {
			in := newRandomImage(t, 40, 31, levels*uint32(w)+3, levels)
			a, err := FilterWith(in, w, 4, Select)
			if err != nil {
				t.Fatal(err)
			}
			b, err := FilterWith(in, w, 2, Histogram)
			if err != nil {
				t.Fatal(err)
			}
			if !a.Equal(b) {
				t.Errorf("levels=%d w=%d: select and histogram results differ", levels, w)
			}
		}
	}
}

func TestThreadCountDoesNotMatter(t *testing.T) {
	in := newRandomImage(t, 25, 50, 99, 256)
	ref, err := Filter(in, 3, 1)
	if err != nil {
		t.Fatal(err)
	}
	for _, threads := range []int{2, 5, 64} {
		out, err := Filter(in, 3, threads)
		if err != nil {
			t.Fatal(err)
		}
		if !out.Equal(ref) {
			t.Errorf("threads=%d: result differs from single-threaded run", threads)
		}
	}
}

func TestCornerHasFewerSamples(t *testing.T) {
	const width, height = 20, 20
	for w := 1; w <= 4; w++ {
		count := func(i, j int) int {
			k0, k1 := windowRange(i, w, height)
			l0, l1 := windowRange(j, w, width)
			return (k1 - k0) * (l1 - l0)
		}
		interior, corner := count(10, 10), count(0, 0)
		if interior != 4*w*w {
			t.Errorf("w=%d: interior samples=%d; want %d", w, interior, 4*w*w)
		}
		if corner >= interior {
			t.Errorf("w=%d: corner samples=%d; want fewer than %d", w, corner, interior)
		}
		if corner != w*w {
			t.Errorf("w=%d: corner samples=%d; want %d", w, corner, w*w)
		}
	}
}

func TestSingleOutlierRemoved(t *testing.T) {
	field := ppm.Pixel{R: 10, G: 20, B: 30}
	outlier := ppm.Pixel{R: 250, G: 0, B: 128}

	for _, strategy := range []Strategy{Select, Histogram} {
		in, _ := ppm.NewImage(5, 5)
		for i := range in.Data {
			in.Data[i] = field
		}
		in.SetPixel(2, 2, outlier)

		out, err := FilterWith(in, 1, 2, strategy)
		if err != nil {
			t.Fatal(err)
		}
		for i, p := range out.Data {
			if p != field {
				t.Errorf("%v: pixel %d=%v; want %v", strategy, i, p, field)
			}
		}

		// in the corner, clipping leaves the outlier as the only sample
		in.SetPixel(2, 2, field)
		in.SetPixel(0, 0, outlier)
		out, _ = FilterWith(in, 1, 2, strategy)
		if got := out.Pixel(0, 0); got != outlier {
			t.Errorf("%v: corner=%v; want %v", strategy, got, outlier)
		}
		if got := out.Pixel(1, 1); got != field {
			t.Errorf("%v: (1,1)=%v; want %v", strategy, got, field)
		}
	}
}

func TestInputNotModified(t *testing.T) {
	in := newRandomImage(t, 16, 16, 5, 256)
	orig := append([]ppm.Pixel(nil), in.Data...)
	for _, strategy := range []Strategy{Select, Histogram} {
		if _, err := FilterWith(in, 2, 3, strategy); err != nil {
			t.Fatal(err)
		}
		for i, p := range in.Data {
			if p != orig[i] {
				t.Fatalf("%v: input pixel %d changed", strategy, i)
			}
		}
	}
}

func TestFilterErrors(t *testing.T) {
	in := newRandomImage(t, 4, 4, 1, 256)
	cases := []struct {
		name     string
		img      *ppm.Image
		w, p     int
		strategy Strategy
	}{
		{"nil image", nil, 1, 1, Auto},
		{"zero window", in, 0, 1, Auto},
		{"negative window", in, -3, 1, Auto},
		{"huge window", in, MaxWindowSize + 1, 1, Auto},
		{"zero threads", in, 1, 0, Auto},
		{"bad strategy", in, 1, 1, Strategy(17)},
	}
	for _, c := range cases {
		out, err := FilterWith(c.img, c.w, c.p, c.strategy)
		if !errors.Is(err, ppm.ErrConfiguration) {
			t.Errorf("%s: err=%v; want ErrConfiguration", c.name, err)
		}
		if out != nil {
			t.Errorf("%s: got output on rejected configuration", c.name)
		}
	}
}

func TestWindowLargerThanImage(t *testing.T) {
	in := newRandomImage(t, 3, 2, 8, 256)
	a, err := FilterWith(in, 50, 2, Select)
	if err != nil {
		t.Fatal(err)
	}
	b, err := FilterWith(in, 50, 2, Histogram)
	if err != nil {
		t.Fatal(err)
	}
	if !a.Equal(b) {
		t.Errorf("strategies differ for oversized window")
	}
	// every window covers the whole image
	want := bruteForceMedian(in, 50, 0, 0)
	for i, p := range a.Data {
		if p != want {
			t.Errorf("pixel %d=%v; want %v", i, p, want)
		}
	}
}

func TestParseStrategy(t *testing.T) {
	for _, c := range []struct {
		in   string
		want Strategy
	}{{"", Auto}, {"auto", Auto}, {"Select", Select}, {"HISTOGRAM", Histogram}} {
		got, err := ParseStrategy(c.in)
		if err != nil || got != c.want {
			t.Errorf("ParseStrategy(%q)=%v, %v; want %v", c.in, got, err, c.want)
		}
	}
	if _, err := ParseStrategy("bubble"); !errors.Is(err, ppm.ErrConfiguration) {
		t.Errorf("ParseStrategy(bubble) err=%v; want ErrConfiguration", err)
	}
}

func TestHistogramMedian(t *testing.T) {
	h := make([]int32, histBins)
	h[10], h[20], h[30], h[41] = 1, 1, 1, 1
	if got := histogramMedian(h, 4); got != 25 {
		t.Errorf("median=%d; want 25", got)
	}
	h[41] = 2
	if got := histogramMedian(h, 5); got != 30 {
		t.Errorf("median=%d; want 30", got)
	}
}
