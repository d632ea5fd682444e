// Copyright 2024 The csbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchrun

import (
	"bytes"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/csbench/csbench/benchcfg"
)

func progressBench(name string) *Bench {
	return &Bench{
		Params: &benchcfg.BenchParams{Name: name},
		prog:   &BenchProgress{},
	}
}

func TestPollETAHysteresis(t *testing.T) {
	b := progressBench("a")
	r := newReporter(&bytes.Buffer{}, 100*time.Millisecond, []*Bench{b}, 1)

	// Halfway through with 10s on the clock: as much again remains.
	b.prog.setPercent(50)
	b.prog.timePassed.Store(int64(10 * time.Second))
	b.prog.setMetric(1)
	assert.Equal(t, 10*time.Second, r.pollETA(0))

	// The metric did not advance, so the estimate only ticks down.
	assert.Equal(t, 10*time.Second-100*time.Millisecond, r.pollETA(0))
	assert.Equal(t, 10*time.Second-200*time.Millisecond, r.pollETA(0))

	// A new run recomputes from the updated progress.
	b.prog.setPercent(75)
	b.prog.timePassed.Store(int64(30 * time.Second))
	b.prog.setMetric(2)
	assert.Equal(t, 10*time.Second, r.pollETA(0))
}

func TestPollETAClampsAtZero(t *testing.T) {
	b := progressBench("a")
	r := newReporter(&bytes.Buffer{}, time.Second, []*Bench{b}, 1)

	b.prog.setPercent(99)
	b.prog.timePassed.Store(int64(10 * time.Millisecond))
	b.prog.setMetric(1)
	r.pollETA(0)
	assert.Equal(t, time.Duration(0), r.pollETA(0))
	assert.Equal(t, time.Duration(0), r.pollETA(0))
}

func TestPollETAInvalidWithoutProgress(t *testing.T) {
	// At 0% there is nothing to extrapolate from.
	b := progressBench("a")
	r := newReporter(&bytes.Buffer{}, time.Second, []*Bench{b}, 1)
	b.prog.setMetric(1)
	assert.Equal(t, time.Duration(0), r.pollETA(0))
}

func TestRedrawAnchoredError(t *testing.T) {
	benches := []*Bench{progressBench("ls"), progressBench("grep foo")}
	var out bytes.Buffer
	r := newReporter(&out, time.Second, benches, 2)
	benches[1].prog.aborted.Store(true)
	r.anchor(1).set(1, "process exited with code 2")

	lines := r.redraw(0)
	assert.Equal(t, 3, lines, "two bars plus one anchored error")
	s := out.String()
	assert.Contains(t, s, "ls")
	assert.Contains(t, s, "grep foo: process exited with code 2")
}

func TestRedrawSkipsEmptyAnchors(t *testing.T) {
	benches := []*Bench{progressBench("ls")}
	var out bytes.Buffer
	r := newReporter(&out, time.Second, benches, 4)
	assert.Equal(t, 1, r.redraw(0))
}

func TestRenderRowTruncatesOnRuneBoundary(t *testing.T) {
	name := strings.Repeat("я", 30)
	b := progressBench(name)
	r := newReporter(&bytes.Buffer{}, time.Second, []*Bench{b}, 1)

	row := r.renderRow(0, 80)
	assert.True(t, utf8.ValidString(row))
	assert.Contains(t, row, strings.Repeat("я", 22)+"...")
}

func TestRenderRowKeepsShortName(t *testing.T) {
	b := progressBench("sleep 1")
	b.prog.setPercent(40)
	r := newReporter(&bytes.Buffer{}, time.Second, []*Bench{b}, 1)

	row := r.renderRow(0, 80)
	assert.Contains(t, row, "sleep 1")
	assert.Contains(t, row, " 40%")
}