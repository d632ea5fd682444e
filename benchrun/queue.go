// Copyright 2024 The csbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchrun

import "sync"

// A taskQueue hands out benchmark tasks to workers round-robin. A
// task is owned by exactly one worker at a time: next marks it
// taken, and the owner either yields it back to the pool or finishes
// it for good. One mutex guards all queue state; it is held only for
// O(task count) scans, never across a run.
type taskQueue struct {
	mu        sync.Mutex
	taken     []bool
	finished  []bool
	remaining int
	workers   int
}

func newTaskQueue(tasks, workers int) *taskQueue {
	return &taskQueue{
		taken:     make([]bool, tasks),
		finished:  make([]bool, tasks),
		remaining: tasks,
		workers:   workers,
	}
}

// next returns the first task that is neither taken nor finished,
// scanning round-robin from the worker's cursor, and marks it taken.
// The cursor advances past the returned task so repeated
// next/yield cycles rotate through all unfinished tasks instead of
// revisiting the same one.
func (q *taskQueue) next(cursor *int) (int, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.remaining == 0 {
		return 0, false
	}
	n := len(q.taken)
	for i := 0; i < n; i++ {
		idx := (*cursor + i) % n
		if !q.taken[idx] && !q.finished[idx] {
			q.taken[idx] = true
			*cursor = (idx + 1) % n
			return idx, true
		}
	}
	return 0, false
}

// yieldTask returns a suspended task to the pool. It stays eligible
// for any worker's next call.
func (q *taskQueue) yieldTask(idx int) {
	q.mu.Lock()
	q.taken[idx] = false
	q.mu.Unlock()
}

// finish marks a task complete. Irreversible.
func (q *taskQueue) finish(idx int) {
	q.mu.Lock()
	q.taken[idx] = false
	q.finished[idx] = true
	q.remaining--
	q.mu.Unlock()
}

// shouldSuspend reports whether yielding the worker would let some
// other pending task run. Once every unfinished task is guaranteed a
// worker, suspending is pointless.
func (q *taskQueue) shouldSuspend() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.workers < q.remaining
}
