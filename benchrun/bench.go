// Copyright 2024 The csbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchrun executes benchmarks: it spawns and times child
// processes, schedules benchmarks over a pool of workers with fair
// round-robin interleaving, and reports live progress.
//
// The entry point is Run, which takes a resolved configuration and
// the list of benchmarks to execute and returns the completed
// sample accumulators for analysis.
package benchrun

import (
	"os"
	"time"

	"github.com/csbench/csbench/benchcfg"
)

// A Bench accumulates the raw results of one benchmark. It is
// created before scheduling and mutated only by the worker that
// currently holds its task; after Run returns it is read-only.
type Bench struct {
	Params *benchcfg.BenchParams

	// RunCount is the number of completed runs. The sample slice
	// of every measurement has exactly this length.
	RunCount  int
	ExitCodes []int

	// Samples holds one value per run for each measurement,
	// indexed like Params.Meas. Custom measurements carry a
	// placeholder until the post-processing phase fills them in
	// from the captured output.
	Samples [][]float64

	// StdoutOffsets[i] is the end offset of run i's stdout in the
	// capture file. Run i's output occupies the byte range from
	// the previous offset (or 0) up to it.
	StdoutOffsets []int64

	// TimePassed is the time spent executing this benchmark so
	// far, accumulated across suspended rounds so the adaptive
	// stop policy and the ETA survive yielding the worker.
	TimePassed time.Duration

	prog       *BenchProgress
	capture    *os.File
	tmpInput   string
	warmupDone bool
}

func newBench(params *benchcfg.BenchParams, prog *BenchProgress) *Bench {
	return &Bench{
		Params:  params,
		Samples: make([][]float64, len(params.Meas)),
		prog:    prog,
	}
}

// record appends one run's values to every measurement's samples.
func (b *Bench) record(o *RunOutcome) {
	b.ExitCodes = append(b.ExitCodes, o.ExitCode)
	for i := range b.Params.Meas {
		b.Samples[i] = append(b.Samples[i], measValue(b.Params.Meas[i].Kind, o))
	}
	b.RunCount++
}

// Cleanup removes the benchmark's temporary files. It is safe to
// call more than once.
func (b *Bench) Cleanup() {
	if b.capture != nil {
		name := b.capture.Name()
		b.capture.Close()
		os.Remove(name)
		b.capture = nil
	}
	if b.tmpInput != "" {
		os.Remove(b.tmpInput)
		b.tmpInput = ""
	}
}

func measValue(kind benchcfg.MeasKind, o *RunOutcome) float64 {
	switch kind {
	case benchcfg.MeasWall:
		return o.WallTime
	case benchcfg.MeasRUsageUTime:
		return timevalSeconds(o.RUsage.Utime)
	case benchcfg.MeasRUsageSTime:
		return timevalSeconds(o.RUsage.Stime)
	case benchcfg.MeasRUsageMaxRSS:
		return float64(o.RUsage.Maxrss) * 1024
	case benchcfg.MeasRUsageMinFlt:
		return float64(o.RUsage.Minflt)
	case benchcfg.MeasRUsageMajFlt:
		return float64(o.RUsage.Majflt)
	case benchcfg.MeasRUsageNvCSw:
		return float64(o.RUsage.Nvcsw)
	case benchcfg.MeasRUsageNivCSw:
		return float64(o.RUsage.Nivcsw)
	case benchcfg.MeasPerfCycles:
		return float64(o.Counters.Cycles)
	case benchcfg.MeasPerfInstructions:
		return float64(o.Counters.Instructions)
	case benchcfg.MeasPerfBranches:
		return float64(o.Counters.Branches)
	case benchcfg.MeasPerfBranchMisses:
		return float64(o.Counters.MissedBranches)
	}
	// MeasCustom: filled in by the post-processing phase.
	return 0
}
