// Copyright 2024 The csbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchrun

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/csbench/csbench/benchcfg"
)

// runUntilStop simulates a session where every run takes perRun.
func runUntilStop(p benchcfg.StopPolicy, perRun time.Duration) int {
	runs := 0
	elapsed := time.Duration(0)
	for !shouldStop(p, runs, elapsed) {
		runs++
		elapsed += perRun
		if runs > 1<<20 {
			panic("stop policy never fired")
		}
	}
	return runs
}

func TestPolicyExactRuns(t *testing.T) {
	p := benchcfg.StopPolicy{Runs: 7, TimeLimit: time.Nanosecond}
	assert.Equal(t, 7, runUntilStop(p, time.Second))
}

func TestPolicyMaxRunsDominates(t *testing.T) {
	// 1ms runs against a 1000s budget: max_runs must stop the
	// session at exactly 10, never fewer than min_runs.
	p := benchcfg.StopPolicy{TimeLimit: 1000 * time.Second, MinRuns: 5, MaxRuns: 10}
	assert.Equal(t, 10, runUntilStop(p, time.Millisecond))
}

func TestPolicyMinRunsGatesTimeLimit(t *testing.T) {
	// Each run takes longer than the whole budget; min_runs still
	// forces 5 of them.
	p := benchcfg.StopPolicy{TimeLimit: time.Millisecond, MinRuns: 5}
	assert.Equal(t, 5, runUntilStop(p, 10*time.Millisecond))
}

func TestPolicyMaxRunsIgnoresMinRuns(t *testing.T) {
	p := benchcfg.StopPolicy{TimeLimit: 1000 * time.Second, MinRuns: 20, MaxRuns: 10}
	assert.Equal(t, 10, runUntilStop(p, time.Millisecond))
}

func TestPolicyTimeLimit(t *testing.T) {
	p := benchcfg.StopPolicy{TimeLimit: 100 * time.Millisecond}
	assert.Equal(t, 10, runUntilStop(p, 10*time.Millisecond))
}

func TestPolicyInert(t *testing.T) {
	p := benchcfg.StopPolicy{}
	assert.True(t, shouldStop(p, 0, 0), "inert policy stops immediately")
	assert.False(t, p.Enabled())
}
