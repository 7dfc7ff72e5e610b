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
	"fmt"
	"strings"

	"github.com/mlnoga/ppmbench/internal/ppm"
)

// Strategy selects how the per-channel order statistics of a window are computed.
// All strategies produce identical output.
type Strategy int

const (
	Auto      Strategy = iota // Pick by window size
	Select                    // Gather samples, then quickselect
	Histogram                 // Sliding 256-bin histograms per row
)

// Largest supported window size. Keeps (2W)^2 sample counts within int32
const MaxWindowSize = 1 << 14

// Auto uses gather/select up to this window size, and histograms beyond
const selectMaxWindowSize = 2

var strategyNames = []string{"auto", "select", "histogram"}

func (s Strategy) String() string {
	if s < 0 || int(s) >= len(strategyNames) {
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
	return strategyNames[s]
}

// Parses a strategy name, case insensitive. The empty string yields Auto
func ParseStrategy(name string) (Strategy, error) {
	if name == "" {
		return Auto, nil
	}
	for i, n := range strategyNames {
		if strings.EqualFold(name, n) {
			return Strategy(i), nil
		}
	}
	return Auto, fmt.Errorf("%w: unknown median strategy '%s' (must be one of %s)",
		ppm.ErrConfiguration, name, strings.Join(strategyNames, ", "))
}

func (s Strategy) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(strategyNames) {
		return nil, fmt.Errorf("%w: unknown median strategy %d", ppm.ErrConfiguration, int(s))
	}
	return []byte(strategyNames[s]), nil
}

func (s *Strategy) UnmarshalText(text []byte) error {
	parsed, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Applies a median filter with the given window size to all three channels of the input,
// using up to the given number of threads. Returns a new image of identical dimensions.
// The input is not modified.
func Filter(in *ppm.Image, windowSize, threads int) (*ppm.Image, error) {
	return FilterWith(in, windowSize, threads, Auto)
}

// Like Filter, but with an explicit strategy.
//
// For the target pixel at row i, column j the window spans rows [i-W, i+W) and columns [j-W, j+W),
// clipped to the image. Each output channel is the median of the m in-bounds samples s, sorted
// ascending: s[m/2] for odd m, and the truncated mean of s[m/2-1] and s[m/2] for even m.
func FilterWith(in *ppm.Image, windowSize, threads int, strategy Strategy) (*ppm.Image, error) {
	if in == nil || in.Width <= 0 || in.Height <= 0 || len(in.Data) != in.Width*in.Height {
		return nil, fmt.Errorf("%w: median filter needs a non-empty image", ppm.ErrConfiguration)
	}
	if windowSize < 1 || windowSize > MaxWindowSize {
		return nil, fmt.Errorf("%w: invalid median window size %d (must be 1..%d)",
			ppm.ErrConfiguration, windowSize, MaxWindowSize)
	}
	if threads < 1 {
		return nil, fmt.Errorf("%w: invalid number of threads %d", ppm.ErrConfiguration, threads)
	}
	if strategy == Auto {
		if windowSize <= selectMaxWindowSize {
			strategy = Select
		} else {
			strategy = Histogram
		}
	}
	if strategy != Select && strategy != Histogram {
		return nil, fmt.Errorf("%w: unknown median strategy %d", ppm.ErrConfiguration, int(strategy))
	}

	out, err := ppm.NewImageFromImage(in)
	if err != nil {
		return nil, err
	}

	if strategy == Select {
		ppm.ParallelRows(in.Height, threads, func(lower, upper int) {
			filterRowsSelect(out, in, windowSize, lower, upper)
		})
	} else {
		ppm.ParallelRows(in.Height, threads, func(lower, upper int) {
			filterRowsHistogram(out, in, windowSize, lower, upper)
		})
	}
	return out, nil
}

// Returns the clipped half-open range [lower, upper) of a window of size w around
// index i, within [0, n)
func windowRange(i, w, n int) (lower, upper int) {
	lower, upper = i-w, i+w
	if lower < 0 {
		lower = 0
	}
	if upper > n {
		upper = n
	}
	return lower, upper
}

// Largest number of in-bounds samples any window can hold for an image of given size
func maxSamples(width, height, w int) int {
	rows, cols := 2*w, 2*w
	if rows > height {
		rows = height
	}
	if cols > width {
		cols = width
	}
	return rows * cols
}
