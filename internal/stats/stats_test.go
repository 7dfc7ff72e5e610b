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

package stats

import (
	"errors"
	"math"
	"testing"

	"github.com/mlnoga/ppmbench/internal/ppm"
)

func TestChannelStats(t *testing.T) {
	img, _ := ppm.NewImage(2, 2)
	img.Data[0] = ppm.Pixel{R: 0, G: 10, B: 7}
	img.Data[1] = ppm.Pixel{R: 2, G: 10, B: 7}
	img.Data[2] = ppm.Pixel{R: 4, G: 10, B: 7}
	img.Data[3] = ppm.Pixel{R: 6, G: 10, B: 8}

	s, err := ChannelStats(img)
	if err != nil {
		t.Fatal(err)
	}
	if len(s) != 3 {
		t.Fatalf("len=%d; want 3", len(s))
	}
	r := s[0]
	if r.Min != 0 || r.Max != 6 || r.Mean != 3 {
		t.Errorf("R min/max/mean=%g/%g/%g; want 0/6/3", r.Min, r.Max, r.Mean)
	}
	if math.Abs(r.StdDev-math.Sqrt(5)) > 1e-9 {
		t.Errorf("R stddev=%g; want %g", r.StdDev, math.Sqrt(5))
	}
	if r.Median != 3 {
		t.Errorf("R median=%g; want 3", r.Median)
	}
	if s[1].StdDev != 0 || s[1].Median != 10 {
		t.Errorf("G stddev/median=%g/%g; want 0/10", s[1].StdDev, s[1].Median)
	}
	if s[2].Median != 7 {
		t.Errorf("B median=%g; want 7", s[2].Median)
	}
	if img.Data[0] != (ppm.Pixel{R: 0, G: 10, B: 7}) {
		t.Errorf("input was modified")
	}
}

func TestHistogramFit(t *testing.T) {
	bins := make([]int32, Bins)
	for i := range bins {
		x := (float64(i) - 100) / 10
		bins[i] = int32(10000 * math.Exp(-0.5*x*x))
	}
	mode, sigma, err := GetModeStdDevFromHistogram(bins)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(mode-100) > 1 {
		t.Errorf("mode=%g; want 100", mode)
	}
	if math.Abs(sigma-10) > 1 {
		t.Errorf("sigma=%g; want 10", sigma)
	}
}

func TestHistogram(t *testing.T) {
	bins := make([]int32, Bins)
	bins[3] = 99
	Histogram([]uint8{1, 1, 255}, bins)
	if bins[1] != 2 || bins[255] != 1 || bins[3] != 0 {
		t.Errorf("bins[1]=%d bins[255]=%d bins[3]=%d; want 2, 1, 0", bins[1], bins[255], bins[3])
	}
	if x, y := GetPeak(bins); x != 1 || y != 2 {
		t.Errorf("peak=(%g,%g); want (1,2)", x, y)
	}
}

func TestMeanLabDistance(t *testing.T) {
	a, _ := ppm.NewImage(3, 3)
	b, _ := ppm.NewImage(3, 3)
	if d, err := MeanLabDistance(a, b); err != nil || d != 0 {
		t.Errorf("identical: d=%g err=%v; want 0", d, err)
	}
	for i := range b.Data {
		b.Data[i] = ppm.Pixel{R: 255, G: 255, B: 255}
	}
	d, err := MeanLabDistance(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(d-1) > 0.01 {
		t.Errorf("black vs white d=%g; want about 1", d)
	}

	c, _ := ppm.NewImage(3, 4)
	if _, err := MeanLabDistance(a, c); !errors.Is(err, ppm.ErrConfiguration) {
		t.Errorf("size mismatch err=%v; want ErrConfiguration", err)
	}
}
