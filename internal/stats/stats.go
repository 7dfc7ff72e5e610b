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
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/mlnoga/ppmbench/internal"
	"github.com/mlnoga/ppmbench/internal/ppm"
	"github.com/mlnoga/ppmbench/internal/qsort"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Basic statistics on one channel of an image
type BasicStats struct {
	Min    float64 // Minimum
	Max    float64 // Maximum
	Mean   float64 // Mean (average)
	StdDev float64 // Standard deviation (norm 2, sigma)
	Median float64 // Median, with the same tie-break as the median filter

	Mode      float64 // Location of a normal distribution fitted to the histogram, not calculated by default
	ModeSigma float64 // Scale of that normal distribution
}

// Channel names, in the order returned by ChannelStats
var ChannelNames = []string{"R", "G", "B"}

// Pretty print basic stats to string
func (s *BasicStats) String() string {
	return fmt.Sprintf("Min %.6g Max %.6g Mean %.6g StdDev %.6g Median %.6g Mode %.6g ModeSigma %.4g",
		s.Min, s.Max, s.Mean, s.StdDev, s.Median, s.Mode, s.ModeSigma)
}

// Pretty print basic stats to CSV header
func (s *BasicStats) ToCSVHeader() string {
	return "Min,Max,Mean,StdDev,Median,Mode,ModeSigma"
}

// Pretty print basic stats to CSV line item
func (s *BasicStats) ToCSVLine() string {
	return fmt.Sprintf("%.6g,%.6g,%.6g,%.6g,%.6g,%.6g,%.4g",
		s.Min, s.Max, s.Mean, s.StdDev, s.Median, s.Mode, s.ModeSigma)
}

// Splits an image into its three channels. The arrays come from the pool,
// callers return them with internal.PutArrayOfUint8IntoPool
func splitChannels(img *ppm.Image) [][]uint8 {
	chans := make([][]uint8, 3)
	for c := range chans {
		chans[c] = internal.GetArrayOfUint8FromPool(len(img.Data))
	}
	for i, p := range img.Data {
		chans[0][i], chans[1][i], chans[2][i] = p.R, p.G, p.B
	}
	return chans
}

// Calculate basic statistics for one channel. Partially reorders the data
func calcBasicStats(data []uint8, scratch []float64) *BasicStats {
	for i, d := range data {
		scratch[i] = float64(d)
	}
	s := &BasicStats{
		Min: floats.Min(scratch),
		Max: floats.Max(scratch),
	}
	s.Mean, s.StdDev = stat.PopMeanStdDev(scratch, nil)
	s.Median = float64(qsort.MedianUint8(data))
	return s
}

// Calculates basic statistics for the R, G and B channels of an image
func ChannelStats(img *ppm.Image) ([]*BasicStats, error) {
	return channelStats(img, false)
}

// Like ChannelStats, but also fits a normal distribution to each channel histogram
// to determine mode and sigma
func ExtendedChannelStats(img *ppm.Image) ([]*BasicStats, error) {
	return channelStats(img, true)
}

func channelStats(img *ppm.Image, extended bool) ([]*BasicStats, error) {
	if img == nil || len(img.Data) == 0 {
		return nil, fmt.Errorf("%w: statistics need a non-empty image", ppm.ErrConfiguration)
	}
	chans := splitChannels(img)
	defer func() {
		for _, ch := range chans {
			internal.PutArrayOfUint8IntoPool(ch)
		}
	}()
	scratch := make([]float64, len(img.Data))
	bins := make([]int32, Bins)

	res := make([]*BasicStats, len(chans))
	for c, ch := range chans {
		if extended {
			Histogram(ch, bins) // before calcBasicStats reorders the channel
		}
		res[c] = calcBasicStats(ch, scratch)
		if extended {
			mode, sigma, err := GetModeStdDevFromHistogram(bins)
			if err != nil {
				return nil, fmt.Errorf("fitting histogram of channel %s: %w", ChannelNames[c], err)
			}
			res[c].Mode, res[c].ModeSigma = mode, sigma
		}
	}
	return res, nil
}

// Converts a pixel to a colorful color with components in [0,1]
func toColorful(p ppm.Pixel) colorful.Color {
	return colorful.Color{
		R: float64(p.R) / ppm.MaxValue,
		G: float64(p.G) / ppm.MaxValue,
		B: float64(p.B) / ppm.MaxValue,
	}
}

// Returns the mean perceptual distance in CIE L*a*b* space between corresponding pixels
// of two images of identical size. Identical images yield 0, black versus white about 1
func MeanLabDistance(a, b *ppm.Image) (float64, error) {
	if a == nil || b == nil || a.Width != b.Width || a.Height != b.Height || len(a.Data) == 0 {
		return 0, fmt.Errorf("%w: Lab distance needs two non-empty images of identical size", ppm.ErrConfiguration)
	}
	sum := 0.0
	for i, p := range a.Data {
		q := b.Data[i]
		if p == q {
			continue
		}
		sum += toColorful(p).DistanceLab(toColorful(q))
	}
	return sum / float64(len(a.Data)), nil
}
