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

package ops

import (
	"fmt"
	"time"

	"github.com/mlnoga/ppmbench/internal/gray"
	"github.com/mlnoga/ppmbench/internal/median"
	"github.com/mlnoga/ppmbench/internal/ppm"
	"github.com/mlnoga/ppmbench/internal/stats"
)

// Median filter with a square window, applied to all three channels
type OpMedian struct {
	OpUnaryBase
	WindowSize int             `json:"windowSize"`
	Strategy   median.Strategy `json:"strategy"`
}

func init() { SetOperatorFactory(func() Operator { return NewOpMedianDefault() }) } // register the operator for JSON decoding

func NewOpMedianDefault() *OpMedian { return NewOpMedian(5, median.Auto) }

func NewOpMedian(windowSize int, strategy median.Strategy) *OpMedian {
	op := OpMedian{
		OpUnaryBase: OpUnaryBase{OpBase: OpBase{Type: "median", Active: windowSize > 0}},
		WindowSize:  windowSize,
		Strategy:    strategy,
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return &op
}

func (op *OpMedian) Apply(img *ppm.Image, c *Context) (result *ppm.Image, err error) {
	start := time.Now()
	result, err = median.FilterWith(img, op.WindowSize, c.MaxThreads, op.Strategy)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(c.Log, "%d: Median filtered %s pixels with window %d and %s strategy in %v\n",
		img.ID, img.DimensionsToString(), op.WindowSize, op.Strategy, time.Since(start))
	return result, nil
}

// Luminance-weighted gray scale conversion
type OpGray struct {
	OpUnaryBase
}

func init() { SetOperatorFactory(func() Operator { return NewOpGrayDefault() }) } // register the operator for JSON decoding

func NewOpGrayDefault() *OpGray { return NewOpGray(true) }

func NewOpGray(active bool) *OpGray {
	op := OpGray{
		OpUnaryBase: OpUnaryBase{OpBase: OpBase{Type: "gray", Active: active}},
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return &op
}

func (op *OpGray) Apply(img *ppm.Image, c *Context) (result *ppm.Image, err error) {
	start := time.Now()
	result, err = gray.Convert(img, c.MaxThreads)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(c.Log, "%d: Converted %s pixels to gray scale in %v\n",
		img.ID, img.DimensionsToString(), time.Since(start))
	return result, nil
}

// Adds salt-and-pepper impulse noise to a fraction of the pixels
type OpNoise struct {
	OpUnaryBase
	Fraction float64 `json:"fraction"`
	Seed     uint32  `json:"seed"`
}

func init() { SetOperatorFactory(func() Operator { return NewOpNoiseDefault() }) } // register the operator for JSON decoding

func NewOpNoiseDefault() *OpNoise { return NewOpNoise(0, 0) }

func NewOpNoise(fraction float64, seed uint32) *OpNoise {
	op := OpNoise{
		OpUnaryBase: OpUnaryBase{OpBase: OpBase{Type: "noise", Active: fraction > 0}},
		Fraction:    fraction,
		Seed:        seed,
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return &op
}

func (op *OpNoise) Apply(img *ppm.Image, c *Context) (result *ppm.Image, err error) {
	result, err = ppm.NewImageWithImpulseNoise(img, op.Fraction, op.Seed)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(c.Log, "%d: Added %.3g%% impulse noise to %s pixels\n",
		img.ID, op.Fraction*100, img.DimensionsToString())
	return result, nil
}

// Logs per-channel statistics. Takes one input, produces the unchanged input
type OpStats struct {
	OpUnaryBase
	Extended bool `json:"extended"` // also fit the histogram mode, which is slower
}

func init() { SetOperatorFactory(func() Operator { return NewOpStatsDefault() }) } // register the operator for JSON decoding

func NewOpStatsDefault() *OpStats { return NewOpStats(false) }

func NewOpStats(extended bool) *OpStats {
	op := OpStats{
		OpUnaryBase: OpUnaryBase{OpBase: OpBase{Type: "stats", Active: true}},
		Extended:    extended,
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return &op
}

func (op *OpStats) Apply(img *ppm.Image, c *Context) (result *ppm.Image, err error) {
	var s []*stats.BasicStats
	if op.Extended {
		s, err = stats.ExtendedChannelStats(img)
	} else {
		s, err = stats.ChannelStats(img)
	}
	if err != nil {
		return nil, err
	}
	for i, cs := range s {
		fmt.Fprintf(c.Log, "%d: %s %v\n", img.ID, stats.ChannelNames[i], cs)
	}
	return img, nil
}
