// Copyright 2024 The csbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchrun

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// BenchProgress is the per-benchmark state shared between a worker
// and the reporter goroutine. Workers only store, the reporter only
// loads; no field is ever read back by its writer, so plain atomics
// are enough. The struct is padded to a cache line to keep
// neighboring benchmarks from false-sharing.
type BenchProgress struct {
	percent   atomic.Uint32
	finished  atomic.Bool
	aborted   atomic.Bool
	warmup    atomic.Bool
	suspended atomic.Bool

	start      atomic.Int64  // unix nanoseconds
	timePassed atomic.Int64  // nanoseconds, accumulated across suspends
	metric     atomic.Uint64 // float64 bits: run count or elapsed seconds

	_ [8]byte
}

func (p *BenchProgress) setPercent(pct int) {
	if pct > 100 {
		pct = 100
	}
	p.percent.Store(uint32(pct))
}

func (p *BenchProgress) setMetric(v float64) {
	p.metric.Store(math.Float64bits(v))
}

func (p *BenchProgress) getMetric() float64 {
	return math.Float64frombits(p.metric.Load())
}

// A workerAnchor is one worker's error slot. While the progress
// display owns the terminal, worker errors are parked here and
// rendered by the reporter instead of being printed over the bars.
type workerAnchor struct {
	mu    sync.Mutex
	bench int
	msg   string
}

func (a *workerAnchor) set(bench int, msg string) {
	a.mu.Lock()
	a.bench = bench
	a.msg = msg
	a.mu.Unlock()
}

func (a *workerAnchor) get() (int, string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.bench, a.msg
}

// A Reporter redraws a terminal progress display at a fixed
// interval. It is the only goroutine writing to the terminal while
// benchmarks run.
type Reporter struct {
	out      io.Writer
	interval time.Duration
	names    []string
	progress []*BenchProgress
	anchors  []workerAnchor
	etas     []etaState

	done chan struct{}
	wg   sync.WaitGroup
}

// etaState implements ETA hysteresis: the estimate is recomputed
// only when the benchmark's metric advanced since the last poll and
// is linearly decremented in between, which keeps the display from
// jittering.
type etaState struct {
	lastMetric float64
	eta        time.Duration
	valid      bool
}

var (
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	abortStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	suspendStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

func newReporter(out io.Writer, interval time.Duration, benches []*Bench, workers int) *Reporter {
	r := &Reporter{
		out:      out,
		interval: interval,
		names:    make([]string, len(benches)),
		progress: make([]*BenchProgress, len(benches)),
		anchors:  make([]workerAnchor, workers),
		etas:     make([]etaState, len(benches)),
		done:     make(chan struct{}),
	}
	for i, b := range benches {
		r.names[i] = b.Params.Name
		r.progress[i] = b.prog
	}
	for i := range r.anchors {
		r.anchors[i].bench = -1
	}
	return r
}

// anchor returns the error slot of the given worker.
func (r *Reporter) anchor(worker int) *workerAnchor {
	return &r.anchors[worker]
}

func (r *Reporter) start() {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		tick := time.NewTicker(r.interval)
		defer tick.Stop()
		lines := 0
		for {
			select {
			case <-tick.C:
				lines = r.redraw(lines)
			case <-r.done:
				r.redraw(lines)
				return
			}
		}
	}()
}

func (r *Reporter) stop() {
	close(r.done)
	r.wg.Wait()
}

func (r *Reporter) redraw(prevLines int) int {
	width := 80
	if f, ok := r.out.(*os.File); ok {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			width = w
		}
	}
	var sb strings.Builder
	if prevLines > 0 {
		fmt.Fprintf(&sb, "\x1b[%dA", prevLines)
	}
	lines := 0
	for i := range r.progress {
		sb.WriteString("\x1b[2K")
		sb.WriteString(r.renderRow(i, width))
		sb.WriteByte('\n')
		lines++
	}
	for i := range r.anchors {
		if bench, msg := r.anchors[i].get(); bench >= 0 && msg != "" {
			sb.WriteString("\x1b[2K")
			sb.WriteString(abortStyle.Render(fmt.Sprintf("%s: %s", r.names[bench], msg)))
			sb.WriteByte('\n')
			lines++
		}
	}
	io.WriteString(r.out, sb.String())
	return lines
}

func (r *Reporter) renderRow(i, width int) string {
	p := r.progress[i]
	pct := int(p.percent.Load())
	name := r.names[i]
	if runes := []rune(name); len(runes) > 25 {
		name = string(runes[:22]) + "..."
	}

	var status string
	switch {
	case p.aborted.Load():
		status = abortStyle.Render("aborted")
	case p.finished.Load():
		status = doneStyle.Render("done")
	case p.warmup.Load():
		status = "warmup"
	case p.suspended.Load():
		status = suspendStyle.Render("suspended")
	default:
		status = fmt.Sprintf("eta %s", r.pollETA(i).Round(time.Second))
	}

	barWidth := width - 25 - 20
	if barWidth < 10 {
		barWidth = 10
	}
	filled := barWidth * pct / 100
	bar := strings.Repeat("#", filled) + strings.Repeat(" ", barWidth-filled)
	return fmt.Sprintf("%-25s [%s] %3d%% %s", name, bar, pct, status)
}

// pollETA applies the hysteresis rule for one benchmark.
func (r *Reporter) pollETA(i int) time.Duration {
	p, e := r.progress[i], &r.etas[i]
	metric := p.getMetric()
	pct := int(p.percent.Load())
	if !e.valid || metric != e.lastMetric {
		e.lastMetric = metric
		passed := time.Duration(p.timePassed.Load())
		if start := p.start.Load(); start > 0 {
			passed += time.Since(time.Unix(0, start))
		}
		if pct > 0 {
			e.eta = passed * time.Duration(100-pct) / time.Duration(pct)
			e.valid = true
		}
	} else if e.valid {
		e.eta -= r.interval
		if e.eta < 0 {
			e.eta = 0
		}
	}
	return e.eta
}
