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

package bench

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mlnoga/ppmbench/internal/ppm"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Problem name, the first field of every report line
const ProblemName = "image_processing"

// Approach names, the second field of a report line
const (
	ApproachFiltering = "filtering"
	ApproachGrayScale = "gray_scale"
)

// Wall clock measurement of one program run. End-to-end time runs from StartTimer
// until Stop, algorithm time accumulates over all Time calls in between
type Timer struct {
	start     time.Time
	endToEnd  time.Duration
	algorithm time.Duration
	runs      []time.Duration
}

// Starts the end-to-end clock
func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Runs f and adds its wall clock time to the algorithm time. Returns the error of f
func (t *Timer) Time(f func() error) error {
	start := time.Now()
	err := f()
	d := time.Since(start)
	t.algorithm += d
	t.runs = append(t.runs, d)
	return err
}

// Stops the end-to-end clock
func (t *Timer) Stop() {
	t.endToEnd = time.Since(t.start)
}

// Durations of the individual Time calls
func (t *Timer) Runs() []time.Duration { return t.runs }

// Creates the report for this measurement. Stops the end-to-end clock if still running
func (t *Timer) Report(approach string, n, p int) *Report {
	if t.endToEnd == 0 {
		t.Stop()
	}
	return &Report{Approach: approach, N: n, P: p, EndToEnd: t.endToEnd, Algorithm: t.algorithm}
}

// One structured line of benchmark output
type Report struct {
	Approach  string
	N         int // problem size label, also the input file stem
	P         int // degree of parallelism
	EndToEnd  time.Duration
	Algorithm time.Duration
}

// Splits a duration into whole seconds and remaining nanoseconds
func splitDuration(d time.Duration) (sec, nsec int64) {
	return int64(d / time.Second), int64(d % time.Second)
}

// Formats the report as problem,approach,n,p,e2e_sec,e2e_nsec,alg_sec,alg_nsec
func (r *Report) String() string {
	es, ens := splitDuration(r.EndToEnd)
	as, ans := splitDuration(r.Algorithm)
	return fmt.Sprintf("%s,%s,%d,%d,%d,%d,%d,%d", ProblemName, r.Approach, r.N, r.P, es, ens, as, ans)
}

// Name of the per-run report file
func (r *Report) FileName() string {
	return fmt.Sprintf("%s_%s_%d_%d_output.txt", ProblemName, r.Approach, r.N, r.P)
}

// Appends the report line to its file in the given directory, creating both if needed
func (r *Report) AppendToFile(dir string) (err error) {
	if err = os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: unable to create report directory '%s': %s", ppm.ErrIO, dir, err.Error())
	}
	fileName := filepath.Join(dir, r.FileName())
	f, err := os.OpenFile(fileName, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0666)
	if err != nil {
		return fmt.Errorf("%w: unable to open file '%s': %s", ppm.ErrIO, fileName, err.Error())
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: closing '%s': %s", ppm.ErrIO, fileName, cerr.Error())
		}
	}()
	w := bufio.NewWriter(f)
	fmt.Fprintln(w, r.String())
	if err = w.Flush(); err != nil {
		return fmt.Errorf("%w: writing '%s': %s", ppm.ErrIO, fileName, err.Error())
	}
	return nil
}

// Summary statistics over repeated runs
type Summary struct {
	Runs   int
	Mean   time.Duration
	StdDev time.Duration
	Min    time.Duration
	Max    time.Duration
}

// Summarizes the given run durations. Returns the zero Summary for no runs
func Summarize(runs []time.Duration) Summary {
	if len(runs) == 0 {
		return Summary{}
	}
	xs := make([]float64, len(runs))
	for i, d := range runs {
		xs[i] = float64(d)
	}
	mean, stdDev := stat.PopMeanStdDev(xs, nil)
	return Summary{
		Runs:   len(runs),
		Mean:   time.Duration(mean),
		StdDev: time.Duration(stdDev),
		Min:    time.Duration(floats.Min(xs)),
		Max:    time.Duration(floats.Max(xs)),
	}
}

func (s Summary) String() string {
	return fmt.Sprintf("%d runs, mean %v stddev %v min %v max %v", s.Runs, s.Mean, s.StdDev, s.Min, s.Max)
}
