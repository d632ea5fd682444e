// Copyright 2024 The csbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchrun

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueRotation(t *testing.T) {
	// With a single worker repeatedly taking and yielding, every
	// unfinished task must be visited once before any task is
	// visited again.
	const n = 5
	q := newTaskQueue(n, 1)
	cursor := 0
	for rotation := 0; rotation < 3; rotation++ {
		seen := make(map[int]bool)
		for i := 0; i < n; i++ {
			idx, ok := q.next(&cursor)
			require.True(t, ok)
			assert.False(t, seen[idx], "task %d visited twice in one rotation", idx)
			seen[idx] = true
			q.yieldTask(idx)
		}
	}
}

func TestQueueSkipsFinished(t *testing.T) {
	q := newTaskQueue(3, 1)
	cursor := 0

	idx, ok := q.next(&cursor)
	require.True(t, ok)
	q.finish(idx)

	for i := 0; i < 4; i++ {
		got, ok := q.next(&cursor)
		require.True(t, ok)
		assert.NotEqual(t, idx, got)
		q.yieldTask(got)
	}
}

func TestQueueOwnership(t *testing.T) {
	// A taken task is invisible to other workers until yielded.
	q := newTaskQueue(2, 2)
	c1, c2 := 0, 0

	a, ok := q.next(&c1)
	require.True(t, ok)
	b, ok := q.next(&c2)
	require.True(t, ok)
	assert.NotEqual(t, a, b)

	_, ok = q.next(&c1)
	assert.False(t, ok)

	q.yieldTask(a)
	got, ok := q.next(&c2)
	require.True(t, ok)
	assert.Equal(t, a, got)
}

func TestQueueDrain(t *testing.T) {
	q := newTaskQueue(3, 1)
	cursor := 0
	for i := 0; i < 3; i++ {
		idx, ok := q.next(&cursor)
		require.True(t, ok)
		q.finish(idx)
	}
	_, ok := q.next(&cursor)
	assert.False(t, ok)
}

func TestShouldSuspend(t *testing.T) {
	q := newTaskQueue(3, 2)
	assert.True(t, q.shouldSuspend(), "3 unfinished tasks, 2 workers")

	cursor := 0
	idx, _ := q.next(&cursor)
	q.finish(idx)
	assert.False(t, q.shouldSuspend(), "2 unfinished tasks, 2 workers")
}
