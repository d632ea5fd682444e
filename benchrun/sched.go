// Copyright 2024 The csbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchrun

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/csbench/csbench/benchcfg"
	"github.com/csbench/csbench/benchmath"
)

// maxCustomOutput bounds the output of a custom measurement
// extraction command. Anything longer is a misconfigured extractor,
// not a number.
const maxCustomOutput = 4096

type scheduler struct {
	cfg      *benchcfg.RunConfig
	benches  []*Bench
	queue    *taskQueue
	runner   *Runner
	reporter *Reporter
}

// Run executes every benchmark to completion and returns the filled
// accumulators. Worker failures cancel the remaining scheduled work;
// a partial result is never returned as success. The caller owns
// Cleanup on the returned benches even on error.
func Run(ctx context.Context, cfg *benchcfg.RunConfig, params []benchcfg.BenchParams) ([]*Bench, error) {
	benches := make([]*Bench, len(params))
	for i := range params {
		b := newBench(&params[i], &BenchProgress{})
		if err := prepareBench(b); err != nil {
			return benches, err
		}
		benches[i] = b
	}

	workers := cfg.Threads
	if workers < 1 {
		workers = 1
	}
	if workers > len(benches) {
		workers = len(benches)
	}

	s := &scheduler{
		cfg:     cfg,
		benches: benches,
		queue:   newTaskQueue(len(benches), workers),
		runner:  newRunner(cfg),
	}
	if cfg.ProgressBar {
		s.reporter = newReporter(os.Stdout, cfg.ProgressInterval, benches, workers)
		s.reporter.start()
	}

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error { return s.worker(ctx, w) })
	}
	err := g.Wait()
	if s.reporter != nil {
		s.reporter.stop()
	}
	if err != nil {
		return benches, err
	}
	return benches, s.postProcess(ctx, workers)
}

// prepareBench creates the per-benchmark capture file and spools an
// inline stdin string to a temporary file, so the runner only ever
// deals with real files.
func prepareBench(b *Bench) error {
	if b.Params.HasCustomMeas() {
		f, err := os.CreateTemp("", "csbench-out-*")
		if err != nil {
			return fatalf("create capture file: %w", err)
		}
		b.capture = f
	}
	if b.Params.Input.Kind == benchcfg.InputString {
		f, err := os.CreateTemp("", "csbench-in-*")
		if err != nil {
			return fatalf("create stdin file: %w", err)
		}
		if _, err := io.WriteString(f, b.Params.Input.String); err != nil {
			f.Close()
			return fatalf("write stdin file: %w", err)
		}
		f.Close()
		b.tmpInput = f.Name()
		b.Params.Input = benchcfg.InputPolicy{Kind: benchcfg.InputFile, File: f.Name()}
	}
	return nil
}

func (s *scheduler) worker(ctx context.Context, w int) error {
	// Each worker rotates its own cursor so repeated next/yield
	// cycles interleave benchmarks fairly. A single worker starts
	// at a pseudo-random task to avoid always benchmarking the
	// first command in a comparison while the machine is coldest.
	var cursor int
	if s.queue.workers == 1 {
		rng := benchmath.NewRNG(s.cfg.Seed + uint64(w) + 1)
		cursor = rng.Intn(len(s.benches))
	} else {
		cursor = w % len(s.benches)
	}
	for {
		idx, ok := s.queue.next(&cursor)
		if !ok {
			return nil
		}
		done, err := s.runTask(ctx, s.benches[idx])
		if err != nil {
			s.benches[idx].prog.aborted.Store(true)
			s.queue.finish(idx)
			if s.reporter != nil {
				s.reporter.anchor(w).set(idx, err.Error())
			}
			return err
		}
		if done {
			s.queue.finish(idx)
		} else {
			s.queue.yieldTask(idx)
		}
	}
}

// runTask runs one benchmark until it finishes or its round policy
// suspends it. done=false means the task was suspended and stays in
// the queue.
func (s *scheduler) runTask(ctx context.Context, b *Bench) (done bool, err error) {
	if !b.warmupDone {
		b.warmupDone = true
		if err := s.warmup(ctx, b); err != nil {
			return false, err
		}
	}

	b.prog.suspended.Store(false)
	phaseStart := time.Now()
	b.prog.start.Store(phaseStart.UnixNano())
	roundRuns := 0
	// Once the queue reports no other task is waiting, the round
	// policy stays off for the rest of this hold.
	keepRunning := false

	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		out, err := s.runner.execute(b.Params, b.capture, false)
		if err != nil {
			return false, err
		}
		if out.ExitCode != 0 && !s.cfg.IgnoreFailure {
			return false, fatalf("command %q exited with code %d", b.Params.Str, out.ExitCode)
		}
		b.record(out)
		if b.capture != nil {
			off, err := b.capture.Seek(0, io.SeekCurrent)
			if err != nil {
				return false, fatalf("capture file offset: %w", err)
			}
			b.StdoutOffsets = append(b.StdoutOffsets, off)
		}
		roundRuns++

		elapsed := b.TimePassed + time.Since(phaseStart)
		s.updateProgress(b, elapsed)
		if shouldStop(s.cfg.Bench, b.RunCount, elapsed) {
			b.TimePassed = elapsed
			b.prog.start.Store(0)
			b.prog.setPercent(100)
			b.prog.finished.Store(true)
			return true, nil
		}
		if s.cfg.Round.Enabled() && !keepRunning &&
			shouldStop(s.cfg.Round, roundRuns, time.Since(phaseStart)) {
			if s.queue.shouldSuspend() {
				b.TimePassed += time.Since(phaseStart)
				b.prog.start.Store(0)
				b.prog.timePassed.Store(int64(b.TimePassed))
				b.prog.suspended.Store(true)
				return false, nil
			}
			keepRunning = true
		}
	}
}

func (s *scheduler) warmup(ctx context.Context, b *Bench) error {
	if !s.cfg.Warmup.Enabled() {
		return nil
	}
	b.prog.warmup.Store(true)
	defer b.prog.warmup.Store(false)
	start := time.Now()
	for runs := 0; !shouldStop(s.cfg.Warmup, runs, time.Since(start)); runs++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := s.runner.execute(b.Params, nil, true); err != nil {
			return err
		}
	}
	return nil
}

func (s *scheduler) updateProgress(b *Bench, elapsed time.Duration) {
	p := s.cfg.Bench
	pct := 0
	switch {
	case p.Runs > 0:
		pct = b.RunCount * 100 / p.Runs
	default:
		if p.TimeLimit > 0 {
			pct = int(elapsed * 100 / p.TimeLimit)
		}
		if p.MaxRuns > 0 {
			if byRuns := b.RunCount * 100 / p.MaxRuns; byRuns > pct {
				pct = byRuns
			}
		}
	}
	b.prog.setPercent(pct)
	b.prog.timePassed.Store(int64(b.TimePassed))
	b.prog.setMetric(float64(b.RunCount))
}

// postProcess fills in custom measurements by replaying each run's
// captured stdout through its extraction command. There is no
// adaptive stopping here, so a fetch-and-increment cursor replaces
// the round-robin queue.
func (s *scheduler) postProcess(ctx context.Context, workers int) error {
	var cursor atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for {
				if err := ctx.Err(); err != nil {
					return err
				}
				i := int(cursor.Add(1)) - 1
				if i >= len(s.benches) {
					return nil
				}
				if err := s.extractCustom(s.benches[i]); err != nil {
					return err
				}
			}
		})
	}
	return g.Wait()
}

func (s *scheduler) extractCustom(b *Bench) error {
	if !b.Params.HasCustomMeas() {
		return nil
	}
	for run := 0; run < b.RunCount; run++ {
		var off int64
		if run > 0 {
			off = b.StdoutOffsets[run-1]
		}
		seg := make([]byte, b.StdoutOffsets[run]-off)
		if _, err := b.capture.ReadAt(seg, off); err != nil {
			return fmt.Errorf("read captured output of %q: %w", b.Params.Str, err)
		}
		for mi := range b.Params.Meas {
			m := &b.Params.Meas[mi]
			if m.Kind != benchcfg.MeasCustom {
				continue
			}
			v, err := s.extractValue(m, seg)
			if err != nil {
				return fmt.Errorf("measurement %q of %q: %w", m.Name, b.Params.Str, err)
			}
			b.Samples[mi][run] = v
		}
	}
	return nil
}

func (s *scheduler) extractValue(m *benchcfg.Meas, input []byte) (float64, error) {
	shell := s.cfg.Shell
	if shell == "" {
		shell = "/bin/sh"
	}
	cmd := exec.Command(shell, "-c", m.Cmd)
	cmd.Stdin = bytes.NewReader(input)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("run extraction command %q: %w", m.Cmd, err)
	}
	if len(out) > maxCustomOutput {
		return 0, fmt.Errorf("extraction command %q produced %d bytes of output", m.Cmd, len(out))
	}
	text := strings.TrimSpace(string(out))
	if text == "" {
		return 0, fmt.Errorf("extraction command %q produced no output", m.Cmd)
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("extraction command %q produced %q, want a number", m.Cmd, text)
	}
	return v, nil
}
