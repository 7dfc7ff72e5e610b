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
	"github.com/mlnoga/ppmbench/internal/qsort"
)

// Median filters output rows [lower, upper) by gathering the window samples of each channel
// into scratch buffers and selecting the central order statistics.
// Scratch is taken from the pool and owned by this call until it returns.
func filterRowsSelect(out, in *ppm.Image, w, lower, upper int) {
	n := maxSamples(in.Width, in.Height, w)
	buf := internal.GetArrayOfUint8FromPool(3 * n)
	defer internal.PutArrayOfUint8IntoPool(buf)
	rs, gs, bs := buf[:n], buf[n:2*n], buf[2*n:3*n]

	for i := lower; i < upper; i++ {
		k0, k1 := windowRange(i, w, in.Height)
		outRow := out.Row(i)
		for j := range outRow {
			l0, l1 := windowRange(j, w, in.Width)

			m := 0
			for k := k0; k < k1; k++ {
				for _, p := range in.Row(k)[l0:l1] {
					rs[m], gs[m], bs[m] = p.R, p.G, p.B
					m++
				}
			}

			outRow[j] = ppm.Pixel{
				R: qsort.MedianUint8(rs[:m]),
				G: qsort.MedianUint8(gs[:m]),
				B: qsort.MedianUint8(bs[:m]),
			}
		}
	}
}
