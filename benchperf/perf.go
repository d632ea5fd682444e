// Copyright 2024 The csbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchperf collects hardware performance counters for
// benchmarked child processes.
//
// The collection protocol is a signal handshake: the child is
// spawned blocked on SIGUSR1 before it execs the benchmarked
// command. Collect opens the counters on the child's pid, sends
// SIGUSR1 to release it, and gathers counter values until the child
// exits, so the counters bracket exactly the command's execution
// window. The child remains reapable by the caller afterwards.
package benchperf

// Counters holds one run's hardware performance counter values.
type Counters struct {
	Cycles         uint64
	Instructions   uint64
	Branches       uint64
	MissedBranches uint64
}
