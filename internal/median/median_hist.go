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
	"github.com/mlnoga/ppmbench/internal"
	"github.com/mlnoga/ppmbench/internal/ppm"
)

const histBins = 256

// Median filters output rows [lower, upper) with one 256-bin histogram per channel,
// sliding left to right along each row. Moving from column j to j+1 adds input column j+w
// and drops input column j-w, so each step costs O(w) updates plus one scan of the bins.
func filterRowsHistogram(out, in *ppm.Image, w, lower, upper int) {
	buf := internal.GetArrayOfInt32FromPool(3 * histBins)
	defer internal.PutArrayOfInt32IntoPool(buf)
	hr, hg, hb := buf[:histBins], buf[histBins:2*histBins], buf[2*histBins:3*histBins]

	for i := lower; i < upper; i++ {
		for b := range buf {
			buf[b] = 0
		}
		k0, k1 := windowRange(i, w, in.Height)
		rows := k1 - k0

		// columns [0, w) form the window of column 0
		_, c1 := windowRange(0, w, in.Width)
		for k := k0; k < k1; k++ {
			for _, p := range in.Row(k)[:c1] {
				hr[p.R]++
				hg[p.G]++
				hb[p.B]++
			}
		}

		outRow := out.Row(i)
		for j := range outRow {
			if j > 0 {
				if add := j + w - 1; add < in.Width {
					for k := k0; k < k1; k++ {
						p := in.Data[k*in.Width+add]
						hr[p.R]++
						hg[p.G]++
						hb[p.B]++
					}
				}
				if drop := j - w - 1; drop >= 0 {
					for k := k0; k < k1; k++ {
						p := in.Data[k*in.Width+drop]
						hr[p.R]--
						hg[p.G]--
						hb[p.B]--
					}
				}
			}

			l0, l1 := windowRange(j, w, in.Width)
			m := int32(rows * (l1 - l0))
			outRow[j] = ppm.Pixel{
				R: histogramMedian(hr, m),
				G: histogramMedian(hg, m),
				B: histogramMedian(hb, m),
			}
		}
	}
}

// Returns the median of the m samples counted in the histogram, using the same
// tie-break as qsort.MedianUint8: the truncated mean of the two central samples
// for even m. Returns 0 for m=0.
func histogramMedian(h []int32, m int32) uint8 {
	hi := m / 2
	lo := hi
	if m&1 == 0 {
		lo = hi - 1
	}
	var cum int32
	loVal := -1
	for v := 0; v < histBins; v++ {
		cum += h[v]
		if loVal < 0 && cum > lo {
			loVal = v
		}
		if cum > hi {
			return uint8((loVal + v) >> 1)
		}
	}
	return 0
}
