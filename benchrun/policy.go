// Copyright 2024 The csbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchrun

import (
	"time"

	"github.com/csbench/csbench/benchcfg"
)

// shouldStop evaluates a stop policy after runs completed executions
// taking elapsed time so far. An explicit run target ignores the
// time bounds entirely. In adaptive mode MaxRuns short-circuits to
// finished regardless of MinRuns, while the time limit never fires
// before MinRuns executions.
func shouldStop(p benchcfg.StopPolicy, runs int, elapsed time.Duration) bool {
	if !p.Enabled() {
		return true
	}
	if p.Runs > 0 {
		return runs >= p.Runs
	}
	if p.MaxRuns > 0 && runs >= p.MaxRuns {
		return true
	}
	if p.TimeLimit > 0 && elapsed >= p.TimeLimit {
		return p.MinRuns <= 0 || runs >= p.MinRuns
	}
	return false
}
