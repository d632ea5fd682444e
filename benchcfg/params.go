// Copyright 2024 The csbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchcfg

import (
	"fmt"
	"time"
)

// An InputKind selects how the benchmarked command's stdin is
// provided.
type InputKind int

const (
	// InputNull redirects stdin from /dev/null.
	InputNull InputKind = iota
	// InputFile redirects stdin from a fixed file.
	InputFile
	// InputString spools an inline string to a temporary file and
	// redirects stdin from it.
	InputString
)

// An InputPolicy describes how to feed the benchmarked command.
type InputPolicy struct {
	Kind   InputKind
	File   string
	String string
}

// An OutputKind selects what happens to the benchmarked command's
// stdout and stderr.
type OutputKind int

const (
	// OutputNull discards both streams to /dev/null.
	OutputNull OutputKind = iota
	// OutputInherit passes both streams through to the
	// controlling terminal.
	OutputInherit
	// OutputCapture appends stdout to the benchmark's capture
	// file (required when custom measurements parse the command's
	// own output) and discards stderr.
	OutputCapture
)

// BenchParams is the fully resolved description of one command
// instance to benchmark. It is immutable for the lifetime of a run.
type BenchParams struct {
	// Name identifies the benchmark in reports. It defaults to
	// Str but may be overridden by renaming.
	Name string
	// Str is the original command string, after parameter
	// substitution.
	Str string
	// Exec and Args are the exec path and argument vector. When
	// the command runs through a shell, Exec is the shell and
	// Args carry ["-c", Str].
	Exec string
	Args []string

	Input  InputPolicy
	Output OutputKind

	// Meas is the ordered list of measurements to record. Sample
	// slices of the benchmark accumulator correspond to this list
	// index by index.
	Meas []Meas

	// GroupIdx and ParamValue identify the parameter-group
	// membership of this benchmark, if any. GroupIdx is -1 for
	// plain benchmarks.
	GroupIdx   int
	ParamValue string
}

// HasCustomMeas reports whether any measurement requires capturing
// the command's stdout.
func (p *BenchParams) HasCustomMeas() bool {
	for i := range p.Meas {
		if p.Meas[i].Kind == MeasCustom {
			return true
		}
	}
	return false
}

// NeedsPerf reports whether any measurement requires hardware
// performance counters.
func (p *BenchParams) NeedsPerf() bool {
	for i := range p.Meas {
		if p.Meas[i].Kind.IsPerf() {
			return true
		}
	}
	return false
}

// A StopPolicy bounds one phase of a benchmark-run session. The same
// shape governs the warmup phase, the benchmark itself, and the
// length of one scheduler round.
type StopPolicy struct {
	// TimeLimit bounds the phase's elapsed time. Zero or negative
	// means no time bound.
	TimeLimit time.Duration
	// Runs, when positive, requests exactly this many executions;
	// TimeLimit, MinRuns and MaxRuns are then ignored.
	Runs int
	// MinRuns and MaxRuns bound the adaptive mode. Zero means
	// unset.
	MinRuns int
	MaxRuns int
}

// Enabled reports whether the policy takes part in the session at
// all. A policy with no time limit and no run target is inert; this
// is how --no-warmup and --no-round are modeled.
func (p StopPolicy) Enabled() bool {
	return p.TimeLimit > 0 || p.Runs > 0
}

// A Param is a variable substituted into command templates,
// producing one benchmark per value.
type Param struct {
	Name   string
	Values []string
}

// A BenchGroup collects the benchmarks instantiated from one command
// template over the shared parameter's values. BenchIdxs is indexed
// by parameter value.
type BenchGroup struct {
	Name      string
	BenchIdxs []int
}

// A StatTest selects the statistical significance test used for
// pairwise p-values.
type StatTest int

const (
	// StatMWU is the two-sided Mann-Whitney U test.
	StatMWU StatTest = iota
	// StatTTest is Welch's two-sample t-test.
	StatTTest
)

// ParseStatTest interprets a --stat-test argument.
func ParseStatTest(s string) (StatTest, error) {
	switch s {
	case "mwu":
		return StatMWU, nil
	case "t-test":
		return StatTTest, nil
	}
	return 0, fmt.Errorf("unknown statistical test %q", s)
}

// A RunConfig carries all run-level settings. It is constructed once
// by the CLI and passed by pointer into the scheduler, execution and
// analysis entry points; nothing here is mutated after construction.
type RunConfig struct {
	Warmup StopPolicy
	Bench  StopPolicy
	Round  StopPolicy

	// Threads is the number of worker threads executing
	// benchmarks. 1 means fully sequential.
	Threads int

	// Seed is the run-level RNG seed. Worker and analysis RNGs
	// derive from it deterministically.
	Seed uint64

	// Resamples is the bootstrap resample count.
	Resamples int

	// UsePerf enables hardware performance counter collection.
	UsePerf bool

	// IgnoreFailure tolerates non-zero exit codes instead of
	// aborting the benchmark on the first one.
	IgnoreFailure bool

	// Prepare is a shell command executed before every run, or
	// empty.
	Prepare string

	// Shell is the shell used to run command strings; empty
	// string means commands are split into argv and executed
	// directly.
	Shell string

	// Baseline is the index of the benchmark (or group) used as
	// the comparison reference, or -1 to use the fastest.
	Baseline int

	// StatTest selects the significance test for p-values.
	StatTest StatTest

	// ProgressBar enables the live terminal progress display.
	ProgressBar bool
	// ProgressInterval is the reporter poll interval.
	ProgressInterval time.Duration
}

// DefaultRunConfig returns the configuration used when no flags
// override it: adaptive 5 second benchmarks after a short warmup,
// sequential execution, 100000 resamples.
func DefaultRunConfig() *RunConfig {
	return &RunConfig{
		Warmup:           StopPolicy{TimeLimit: 100 * time.Millisecond},
		Bench:            StopPolicy{TimeLimit: 5 * time.Second},
		Round:            StopPolicy{TimeLimit: 5 * time.Second},
		Threads:          1,
		Resamples:        100000,
		Baseline:         -1,
		Shell:            "/bin/sh",
		ProgressInterval: 100 * time.Millisecond,
	}
}
