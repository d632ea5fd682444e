// Copyright 2024 The csbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Csbench benchmarks command-line programs.
//
// It runs the given commands repeatedly, measures wall clock time,
// resource usage and optionally hardware performance counters, and
// reports distributions, pairwise speedups with significance, and
// fitted complexity for parameterized commands.
//
// Usage:
//
//	csbench [flags] command...
//
// Each command is benchmarked separately. Commands may contain a
// {name} placeholder expanded over --param values, producing one
// benchmark per value and a per-group complexity fit.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/csbench/csbench/benchan"
	"github.com/csbench/csbench/benchcfg"
	"github.com/csbench/csbench/benchfmt"
	"github.com/csbench/csbench/benchperf"
	"github.com/csbench/csbench/benchrun"
	"github.com/csbench/csbench/cmd/csbench/internal/benchtab"
)

func main() {
	benchrun.TrampolineMain()
	benchrun.SetupSignals()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type options struct {
	runs      int
	timeLimit string
	minRuns   int
	maxRuns   int

	warmupTime string
	warmupRuns int
	noWarmup   bool

	roundTime    string
	roundRuns    int
	minRoundRuns int
	maxRoundRuns int
	noRound      bool

	shell   string
	noShell bool
	jobs    int

	ignoreFailure bool
	prepare       string

	inputFile   string
	inputString string
	output      string

	meas    []string
	perf    bool
	custom  []string
	customT []string
	customX []string

	param      string
	paramRange string
	renameAll  []string

	resamples int
	seed      uint64
	baseline  int
	regr      bool
	sortMode  string
	statTest  string

	csvDir   string
	jsonFile string
	saveFile string
	load     []string
	config   string

	color            string
	progressBar      bool
	progressInterval time.Duration
	debug            bool
}

func newRootCmd() *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:           "csbench [flags] command...",
		Short:         "benchmark command-line programs",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, o, args)
		},
	}
	f := cmd.Flags()
	f.IntVarP(&o.runs, "runs", "R", 0, "run each benchmark exactly this many times")
	f.StringVarP(&o.timeLimit, "time-limit", "T", "", "benchmark time limit (seconds or duration)")
	f.IntVar(&o.minRuns, "min-runs", 0, "minimum runs in adaptive mode")
	f.IntVar(&o.maxRuns, "max-runs", 0, "maximum runs in adaptive mode")

	f.StringVarP(&o.warmupTime, "warmup", "W", "", "warmup time limit")
	f.IntVar(&o.warmupRuns, "warmup-runs", 0, "exact warmup run count")
	f.BoolVar(&o.noWarmup, "no-warmup", false, "disable warmup")

	f.StringVar(&o.roundTime, "round-time", "", "scheduler round time limit")
	f.IntVar(&o.roundRuns, "round-runs", 0, "exact runs per scheduler round")
	f.IntVar(&o.minRoundRuns, "min-round-runs", 0, "minimum runs per round")
	f.IntVar(&o.maxRoundRuns, "max-round-runs", 0, "maximum runs per round")
	f.BoolVar(&o.noRound, "no-round", false, "never yield between benchmarks")

	f.StringVarP(&o.shell, "shell", "S", "/bin/sh", "shell used to run commands")
	f.BoolVarP(&o.noShell, "no-shell", "N", false, "execute commands directly without a shell")
	f.IntVarP(&o.jobs, "jobs", "j", 1, "number of worker threads")

	f.BoolVarP(&o.ignoreFailure, "ignore-failure", "i", false, "tolerate non-zero exit codes")
	f.StringVar(&o.prepare, "prepare", "", "shell command executed before every run")

	f.StringVar(&o.inputFile, "input", "", "redirect benchmark stdin from this file")
	f.StringVar(&o.inputString, "inputs", "", "feed this string to benchmark stdin")
	f.StringVar(&o.output, "output", "null", "benchmark output policy: null or inherit")

	f.StringSliceVar(&o.meas, "meas", nil, "measurements to record (wall, utime, stime, maxrss, minflt, majflt, nvcsw, nivcsw, cycles, ins, b, bm)")
	f.BoolVar(&o.perf, "perf", false, "record hardware performance counters")
	f.StringArrayVar(&o.custom, "custom", nil, "custom measurement NAME parsing stdout as seconds")
	f.StringArrayVar(&o.customT, "custom-t", nil, "custom measurement NAME/CMD piping stdout through CMD, in seconds")
	f.StringArrayVar(&o.customX, "custom-x", nil, "custom measurement NAME/UNITS/CMD")

	f.StringVar(&o.param, "param", "", "parameter NAME/v1,v2,... substituted for {NAME}")
	f.StringVar(&o.paramRange, "param-range", "", "parameter NAME/low/high[/step]")
	f.StringSliceVar(&o.renameAll, "rename-all", nil, "rename all benchmarks (or groups) positionally")

	f.IntVar(&o.resamples, "nrs", 100000, "bootstrap resample count")
	f.Uint64Var(&o.seed, "seed", 0, "RNG seed (0 picks a time-based seed)")
	f.IntVar(&o.baseline, "baseline", 0, "1-based index of the baseline benchmark (or group)")
	f.BoolVar(&o.regr, "regr", false, "fit and print complexity for parameter groups")
	f.StringVar(&o.sortMode, "sort", "command", "benchmark order in reports: command or mean-time")
	f.StringVar(&o.statTest, "stat-test", "mwu", "significance test for p-values: mwu or t-test")

	f.StringVar(&o.csvDir, "csv", "", "write per-measurement CSV tables into this directory")
	f.StringVar(&o.jsonFile, "json", "", "write raw run data as JSON to this file")
	f.StringVar(&o.saveFile, "save", "", "save raw samples in the text data format")
	f.StringArrayVar(&o.load, "load", nil, "load saved data instead of benchmarking (repeatable)")
	f.StringVar(&o.config, "config", "", "YAML suite description")

	f.StringVar(&o.color, "color", "auto", "colored output: auto, always or never")
	f.BoolVar(&o.progressBar, "progress-bar", false, "force the live progress display")
	f.DurationVar(&o.progressInterval, "progress-bar-interval", 100*time.Millisecond, "progress display poll interval")
	f.BoolVar(&o.debug, "debug", false, "enable debug logging")
	return cmd
}

func run(cmd *cobra.Command, o *options, args []string) error {
	level := slog.LevelWarn
	if o.debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg := benchcfg.DefaultRunConfig()
	settings := &benchcfg.Settings{Commands: args, Shell: cfg.Shell}

	if o.config != "" {
		file, err := benchcfg.LoadSuiteFile(o.config)
		if err != nil {
			return err
		}
		if err := file.Apply(settings, cfg); err != nil {
			return err
		}
	}
	if err := applyFlags(cmd, o, settings, cfg); err != nil {
		return err
	}

	var data *benchan.Data
	if len(o.load) > 0 {
		loaded, err := loadData(o.load)
		if err != nil {
			return err
		}
		data = loaded
	} else {
		params, groups, err := settings.Instantiate()
		if err != nil {
			return err
		}
		slog.Debug("starting run", "benchmarks", len(params), "threads", cfg.Threads, "seed", cfg.Seed)
		benches, err := benchrun.Run(context.Background(), cfg, params)
		defer func() {
			for _, b := range benches {
				if b != nil {
					b.Cleanup()
				}
			}
		}()
		if err != nil {
			return err
		}
		data = &benchan.Data{Meas: params[0].Meas, Benches: benches, Groups: groups}
	}

	if o.sortMode == "mean-time" && len(data.Groups) == 0 {
		sortByMean(data)
	}

	an := benchan.Analyze(data, cfg)
	benchtab.Render(os.Stdout, an, benchtab.Options{
		Color:     useColor(o),
		Regr:      o.regr,
		RunsShown: cfg.Bench.Runs > 0,
	})
	return export(o, an)
}

// applyFlags merges explicitly given flags into settings and cfg,
// overriding suite-file values.
func applyFlags(cmd *cobra.Command, o *options, s *benchcfg.Settings, cfg *benchcfg.RunConfig) error {
	changed := cmd.Flags().Changed

	if changed("runs") {
		cfg.Bench = benchcfg.StopPolicy{Runs: o.runs}
	}
	if changed("time-limit") {
		d, err := benchcfg.ParseTimeLimit(o.timeLimit)
		if err != nil {
			return err
		}
		cfg.Bench.TimeLimit = d
	}
	cfg.Bench.MinRuns = o.minRuns
	cfg.Bench.MaxRuns = o.maxRuns

	switch {
	case o.noWarmup:
		cfg.Warmup = benchcfg.StopPolicy{}
	case o.warmupRuns > 0:
		cfg.Warmup = benchcfg.StopPolicy{Runs: o.warmupRuns}
	case changed("warmup"):
		d, err := benchcfg.ParseTimeLimit(o.warmupTime)
		if err != nil {
			return err
		}
		cfg.Warmup = benchcfg.StopPolicy{TimeLimit: d}
	}

	switch {
	case o.noRound:
		cfg.Round = benchcfg.StopPolicy{}
	case changed("round-time") || o.roundRuns > 0 || o.minRoundRuns > 0 || o.maxRoundRuns > 0:
		round := benchcfg.StopPolicy{Runs: o.roundRuns, MinRuns: o.minRoundRuns, MaxRuns: o.maxRoundRuns}
		if o.roundTime != "" {
			d, err := benchcfg.ParseTimeLimit(o.roundTime)
			if err != nil {
				return err
			}
			round.TimeLimit = d
		}
		cfg.Round = round
	}

	if o.noShell {
		s.Shell = ""
		cfg.Shell = ""
	} else if changed("shell") {
		s.Shell = o.shell
		cfg.Shell = o.shell
	}

	cfg.Threads = o.jobs
	cfg.IgnoreFailure = o.ignoreFailure
	cfg.Prepare = o.prepare
	cfg.Resamples = o.resamples
	cfg.Baseline = o.baseline - 1
	cfg.ProgressInterval = o.progressInterval
	cfg.ProgressBar = o.progressBar ||
		(term.IsTerminal(int(os.Stdout.Fd())) && len(o.load) == 0)

	cfg.Seed = o.seed
	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
	}

	switch {
	case changed("input"):
		s.Input = benchcfg.InputPolicy{Kind: benchcfg.InputFile, File: o.inputFile}
	case changed("inputs"):
		s.Input = benchcfg.InputPolicy{Kind: benchcfg.InputString, String: o.inputString}
	}
	switch o.output {
	case "null":
	case "inherit":
		s.Output = benchcfg.OutputInherit
	default:
		return fmt.Errorf("unknown output policy %q", o.output)
	}

	if err := buildMeas(o, s, cfg); err != nil {
		return err
	}

	switch {
	case o.param != "":
		p, err := benchcfg.ParseParam(o.param)
		if err != nil {
			return err
		}
		s.Param = p
	case o.paramRange != "":
		p, err := benchcfg.ParseParamRange(o.paramRange)
		if err != nil {
			return err
		}
		s.Param = p
	}
	s.RenameAll = append(s.RenameAll, o.renameAll...)

	switch o.sortMode {
	case "command", "mean-time":
	default:
		return fmt.Errorf("unknown sort mode %q", o.sortMode)
	}
	st, err := benchcfg.ParseStatTest(o.statTest)
	if err != nil {
		return err
	}
	cfg.StatTest = st
	return nil
}

// buildMeas assembles the measurement list: built-ins from --meas (or
// the default wall/utime/stime set), then custom measurements.
func buildMeas(o *options, s *benchcfg.Settings, cfg *benchcfg.RunConfig) error {
	var meas []benchcfg.Meas
	if len(o.meas) > 0 {
		for _, name := range o.meas {
			m, err := benchcfg.BuiltinMeas(strings.TrimSpace(name))
			if err != nil {
				return err
			}
			meas = append(meas, m)
		}
	} else {
		meas = benchcfg.DefaultMeas()
	}
	if o.perf {
		meas = append(meas, benchcfg.PerfMeas(0)...)
	}

	for _, name := range o.custom {
		meas = append(meas, benchcfg.Meas{
			Name:  name,
			Cmd:   "cat",
			Units: benchcfg.Units{Kind: benchcfg.US},
			Kind:  benchcfg.MeasCustom,
		})
	}
	for _, spec := range o.customT {
		name, cmd, ok := strings.Cut(spec, "/")
		if !ok {
			return fmt.Errorf("--custom-t %q: want NAME/CMD", spec)
		}
		meas = append(meas, benchcfg.Meas{
			Name:  name,
			Cmd:   cmd,
			Units: benchcfg.Units{Kind: benchcfg.US},
			Kind:  benchcfg.MeasCustom,
		})
	}
	for _, spec := range o.customX {
		parts := strings.SplitN(spec, "/", 3)
		if len(parts) != 3 {
			return fmt.Errorf("--custom-x %q: want NAME/UNITS/CMD", spec)
		}
		meas = append(meas, benchcfg.Meas{
			Name:  parts[0],
			Cmd:   parts[2],
			Units: benchcfg.ParseUnits(parts[1]),
			Kind:  benchcfg.MeasCustom,
		})
	}
	s.Meas = append(meas, s.Meas...)

	for i := range s.Meas {
		if s.Meas[i].Kind.IsPerf() {
			if !benchperf.Supported() {
				return fmt.Errorf("measurement %q needs hardware counters, unsupported on this platform", s.Meas[i].Name)
			}
			cfg.UsePerf = true
		}
	}
	return nil
}

// loadData reads saved data files instead of running benchmarks. All
// files must describe the same measurement; their benchmarks are
// concatenated.
func loadData(files []string) (*benchan.Data, error) {
	data := &benchan.Data{}
	for _, path := range files {
		fd, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		f, err := benchfmt.ReadFile(fd, path)
		fd.Close()
		if err != nil {
			return nil, err
		}
		if len(data.Meas) == 0 {
			data.Meas = []benchcfg.Meas{f.Meas()}
		} else if data.Meas[0].Name != f.MeasName {
			return nil, fmt.Errorf("%s: measurement %q does not match %q", path, f.MeasName, data.Meas[0].Name)
		}
		for _, bs := range f.Benches {
			if len(bs.Samples) == 0 {
				return nil, fmt.Errorf("%s: benchmark %q has no samples", path, bs.Name)
			}
			data.Benches = append(data.Benches, &benchrun.Bench{
				Params: &benchcfg.BenchParams{
					Name:     bs.Name,
					Str:      bs.Name,
					Meas:     data.Meas,
					GroupIdx: -1,
				},
				RunCount:  len(bs.Samples),
				ExitCodes: make([]int, len(bs.Samples)),
				Samples:   [][]float64{bs.Samples},
			})
		}
	}
	if len(data.Benches) == 0 {
		return nil, fmt.Errorf("no benchmarks loaded")
	}
	return data, nil
}

// sortByMean reorders benchmarks fastest first by the mean of the
// first primary measurement.
func sortByMean(data *benchan.Data) {
	primary := 0
	for mi := range data.Meas {
		if !data.Meas[mi].IsSecondary {
			primary = mi
			break
		}
	}
	mean := func(b *benchrun.Bench) float64 {
		sum := 0.0
		for _, v := range b.Samples[primary] {
			sum += v
		}
		return sum / float64(len(b.Samples[primary]))
	}
	sort.SliceStable(data.Benches, func(i, j int) bool {
		return mean(data.Benches[i]) < mean(data.Benches[j])
	})
}

func export(o *options, an *benchan.Analysis) error {
	if o.saveFile != "" {
		if err := saveData(o.saveFile, an); err != nil {
			return err
		}
	}
	if o.jsonFile != "" {
		f, err := os.Create(o.jsonFile)
		if err != nil {
			return err
		}
		err = benchtab.WriteJSON(f, an)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
	}
	if o.csvDir != "" {
		if err := os.MkdirAll(o.csvDir, 0o755); err != nil {
			return err
		}
		for _, ma := range an.Meas {
			path := filepath.Join(o.csvDir, fmt.Sprintf("measurement_%d.csv", ma.MeasIdx))
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			err = benchtab.WriteCSV(f, an, ma.MeasIdx)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// saveData writes the first primary measurement's raw samples; other
// measurements get numbered sibling files.
func saveData(path string, an *benchan.Analysis) error {
	for i, ma := range an.Meas {
		name := path
		if i > 0 {
			name = fmt.Sprintf("%s.%d", path, i)
		}
		f := &benchfmt.File{
			MeasName: ma.Meas.Name,
			Units:    ma.Meas.Units,
			Extract:  ma.Meas.Cmd,
		}
		for _, ba := range an.Benches {
			f.Benches = append(f.Benches, benchfmt.BenchSamples{
				Name:    ba.Bench.Params.Name,
				Samples: ba.Bench.Samples[ma.MeasIdx],
			})
		}
		fd, err := os.Create(name)
		if err != nil {
			return err
		}
		err = benchfmt.WriteFile(fd, f)
		if cerr := fd.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func useColor(o *options) bool {
	switch o.color {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}
