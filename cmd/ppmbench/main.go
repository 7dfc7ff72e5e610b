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

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime/pprof"
	"strconv"

	"github.com/klauspost/cpuid"
	nl "github.com/mlnoga/ppmbench/internal"
	"github.com/mlnoga/ppmbench/internal/bench"
	"github.com/mlnoga/ppmbench/internal/gray"
	"github.com/mlnoga/ppmbench/internal/median"
	"github.com/mlnoga/ppmbench/internal/ops"
	"github.com/mlnoga/ppmbench/internal/ppm"
	"github.com/mlnoga/ppmbench/internal/rest"
	"github.com/mlnoga/ppmbench/internal/stats"
)

const version = "0.3.0"

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to `file`")

var dir = flag.String("dir", "img", "read input `n.ppm` from and write outputs to this directory")
var reportDir = flag.String("reportDir", "", "also append the report line to a file in this directory, e.g. `output`")
var log = flag.String("log", "", "save log output to `file`")
var verbose = flag.Bool("v", false, "log CPU, image statistics and the Lab difference between input and output")

var window = flag.Int("window", 5, "median filter window size W; the window spans 2W rows and columns")
var strategy = flag.String("strategy", "auto", "median strategy, one of auto, select or histogram")
var mono = flag.Bool("mono", false, "write gray scale output as single-channel P5 to `n_grayed.pgm`")
var repeat = flag.Int("repeat", 1, "run the kernel this many times and report the mean algorithm time")

var noise = flag.Float64("noise", 0.1, "fraction of pixels to replace with salt and pepper noise")
var seed = flag.Uint("seed", 1, "random seed for noise, 0=random")

var addr = flag.String("addr", ":8080", "listen on this address for the REST API")
var chroot = flag.String("chroot", "", "serve: change filesystem root to this directory (requires root)")
var setuid = flag.Int("setuid", -1, "serve: change user id to this value after startup, -1=don't")
var images = flag.Int("images", 1, "run: number of images to process concurrently")

func main() {
	timer := bench.StartTimer()
	logWriter := os.Stdout
	flag.Usage = func() {
		fmt.Fprintf(logWriter, `ppmbench Copyright (c) 2020 Markus L. Noga
This program comes with ABSOLUTELY NO WARRANTY.
This is free software, and you are welcome to redistribute it under certain conditions.
Refer to https://www.gnu.org/licenses/gpl-3.0.en.html for details.

Usage: %s [-flag value] (median|gray|noise|stats|run|serve|legal|version|help) [args]

Commands:
  median n p  Median filter dir/n.ppm with p threads into dir/n_filtered.ppm and report timing
  gray n p    Convert dir/n.ppm to gray scale with p threads into dir/n_grayed.ppm and report timing
  noise n     Add impulse noise to dir/n.ppm and write dir/n_noisy.ppm
  stats n     Show statistics of dir/n.ppm
  run f.json  Apply the operator sequence in f.json
  serve       Serve the REST API
  legal       Show license and attribution information
  version     Show version information

A thread count p of 0 uses all physical cores.

Flags:
`, os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	// Initialize logging to file in addition to stdout, if selected
	if *log != "" {
		if err := nl.LogAlsoToFile(*log); err != nil {
			nl.LogFatalf("Unable to open logfile '%s': %s\n", *log, err.Error())
		}
	}

	// Enable CPU profiling if flagged
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			nl.LogFatal("Could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			nl.LogFatal("Could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}

	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		os.Exit(-1)
	}
	if *verbose {
		nl.LogPrintf("Running on %s with %d physical and %d logical cores\n",
			cpuid.CPU.BrandName, cpuid.CPU.PhysicalCores, cpuid.CPU.LogicalCores)
	}

	var err error
	switch args[0] {
	case "median":
		err = cmdKernel(timer, args[1:], bench.ApproachFiltering)

	case "gray":
		err = cmdKernel(timer, args[1:], bench.ApproachGrayScale)

	case "noise":
		err = cmdNoise(args[1:])

	case "stats":
		err = cmdStats(args[1:])

	case "run":
		err = cmdRun(args[1:])

	case "serve":
		if err = rest.MakeSandbox(*chroot, *setuid); err == nil {
			err = rest.Serve(*addr, ops.NewContext(nl.LogWriter(), 0))
		}

	case "legal":
		fmt.Fprint(logWriter, legal)

	case "version":
		fmt.Fprintf(logWriter, "Version %s\n", version)

	case "help", "?":
		flag.Usage()

	default:
		fmt.Fprintf(logWriter, "Unknown command '%s'\n\n", args[0])
		flag.Usage()
		os.Exit(-1)
	}

	if err != nil {
		pprof.StopCPUProfile()
		nl.LogFatalf("Error: %s\n", err.Error())
	}
	nl.LogSync()
}

// Parses the positional arguments n and p. Exits with usage if they are missing
func parseNP(args []string, needP bool) (n, p int, err error) {
	if len(args) < 1 || (needP && len(args) < 2) {
		fmt.Fprintf(os.Stdout, "Usage: %s %s n p\n", os.Args[0], flag.Arg(0))
		os.Exit(-1)
	}
	if n, err = strconv.Atoi(args[0]); err != nil || n < 0 {
		return 0, 0, fmt.Errorf("%w: invalid image number '%s'", ppm.ErrConfiguration, args[0])
	}
	if !needP {
		return n, 0, nil
	}
	if p, err = strconv.Atoi(args[1]); err != nil || p < 0 {
		return 0, 0, fmt.Errorf("%w: invalid number of threads '%s'", ppm.ErrConfiguration, args[1])
	}
	if p == 0 {
		p = ops.DefaultThreads()
	}
	return n, p, nil
}

// Name of the input file for image number n
func inputFileName(n int) string {
	return filepath.Join(*dir, fmt.Sprintf("%d.ppm", n))
}

// Name of an output file for image number n, with the given suffix and extension
func outputFileName(n int, suffix, ext string) string {
	return filepath.Join(*dir, fmt.Sprintf("%d_%s%s", n, suffix, ext))
}

// Runs the median or gray scale kernel, writes the output and prints the report line
func cmdKernel(timer *bench.Timer, args []string, approach string) error {
	n, p, err := parseNP(args, true)
	if err != nil {
		return err
	}
	if *repeat < 1 {
		return fmt.Errorf("%w: invalid repeat count %d", ppm.ErrConfiguration, *repeat)
	}

	var kernel func(in *ppm.Image) (*ppm.Image, error)
	switch approach {
	case bench.ApproachFiltering:
		st, err := median.ParseStrategy(*strategy)
		if err != nil {
			return err
		}
		kernel = func(in *ppm.Image) (*ppm.Image, error) { return median.FilterWith(in, *window, p, st) }
	default:
		kernel = func(in *ppm.Image) (*ppm.Image, error) { return gray.Convert(in, p) }
	}

	in, err := ppm.ReadFile(inputFileName(n))
	if err != nil {
		return err
	}
	in.ID = n
	if *verbose {
		nl.LogPrintf("%d: Loaded %s pixel image from %s\n", in.ID, in.DimensionsToString(), in.FileName)
	}

	var out *ppm.Image
	for i := 0; i < *repeat; i++ {
		err = timer.Time(func() (err error) {
			out, err = kernel(in)
			return err
		})
		if err != nil {
			return err
		}
	}

	if approach == bench.ApproachFiltering {
		err = out.WriteFile(outputFileName(n, "filtered", ".ppm"))
	} else if *mono {
		err = out.WriteGrayFile(outputFileName(n, "grayed", ".pgm"))
	} else {
		err = out.WriteFile(outputFileName(n, "grayed", ".ppm"))
	}
	if err != nil {
		return err
	}

	timer.Stop()
	report := timer.Report(approach, n, p)
	if *repeat > 1 {
		summary := bench.Summarize(timer.Runs())
		report.Algorithm = summary.Mean
		nl.LogPrintf("%d: Algorithm time over %v\n", n, summary)
	}
	fmt.Println(report)
	if *reportDir != "" {
		if err := report.AppendToFile(*reportDir); err != nil {
			return err
		}
	}

	if *verbose {
		return logDifference(in, out)
	}
	return nil
}

// Logs channel statistics of input and output, and their mean Lab distance
func logDifference(in, out *ppm.Image) error {
	for _, img := range []*ppm.Image{in, out} {
		s, err := stats.ChannelStats(img)
		if err != nil {
			return err
		}
		for c, cs := range s {
			nl.LogPrintf("%d: %s %v\n", img.ID, stats.ChannelNames[c], cs)
		}
	}
	d, err := stats.MeanLabDistance(in, out)
	if err != nil {
		return err
	}
	nl.LogPrintf("%d: Mean Lab distance between input and output %.4g\n", in.ID, d)
	return nil
}

// Writes a copy of image n with impulse noise
func cmdNoise(args []string) error {
	n, _, err := parseNP(args, false)
	if err != nil {
		return err
	}
	in, err := ppm.ReadFile(inputFileName(n))
	if err != nil {
		return err
	}
	out, err := ppm.NewImageWithImpulseNoise(in, *noise, uint32(*seed))
	if err != nil {
		return err
	}
	fileName := outputFileName(n, "noisy", ".ppm")
	nl.LogPrintf("%d: Writing %s pixels with %.3g%% impulse noise to %s\n", n, in.DimensionsToString(), *noise*100, fileName)
	return out.WriteFile(fileName)
}

// Logs extended statistics of image n
func cmdStats(args []string) error {
	n, _, err := parseNP(args, false)
	if err != nil {
		return err
	}
	in, err := ppm.ReadFile(inputFileName(n))
	if err != nil {
		return err
	}
	in.ID = n
	nl.LogPrintf("%d: %s pixels from %s\n", n, in.DimensionsToString(), in.FileName)
	c := ops.NewContext(nl.LogWriter(), 0)
	_, err = ops.NewOpStats(true).Apply(in, c)
	return err
}

// Applies an operator sequence read from a JSON file
func cmdRun(args []string) error {
	if len(args) < 1 {
		fmt.Fprintf(os.Stdout, "Usage: %s run ops.json\n", os.Args[0])
		os.Exit(-1)
	}
	bs, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("%w: unable to open file '%s': %s", ppm.ErrIO, args[0], err.Error())
	}
	op, err := ops.UnmarshalOperator(bs)
	if err != nil {
		return err
	}
	if m, err := json.MarshalIndent(op, "", "  "); err == nil {
		nl.LogPrintf("Applying these operators:\n%s\n", string(m))
	}

	c := ops.NewContext(nl.LogWriter(), 0)
	promises, err := op.MakePromises(nil, c)
	if err != nil {
		return err
	}
	_, err = ops.MaterializeAll(promises, *images, true)
	return err
}
