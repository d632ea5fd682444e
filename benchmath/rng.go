// Copyright 2024 The csbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchmath

// An RNG is a small, fast pseudo-random number generator of the PCG
// family (PCG-XSH-RS with a 64-bit state and 32-bit output).
//
// Bootstrap resampling draws millions of indices per analysis, so the
// generator is deliberately minimal. Each worker owns its own RNG,
// seeded deterministically from the run-level seed and the worker
// index, which makes resampling reproducible without any
// synchronization.
type RNG struct {
	state uint64
}

// NewRNG returns an RNG seeded with seed. Distinct seeds yield
// independent streams for practical purposes.
func NewRNG(seed uint64) *RNG {
	// Scramble the seed so that small consecutive seeds (run seed
	// plus worker index) don't produce correlated early outputs.
	r := &RNG{state: seed + 0x9e3779b97f4a7c15}
	r.Uint32()
	r.Uint32()
	return r
}

// Uint32 returns the next value in the stream.
func (r *RNG) Uint32() uint32 {
	x := r.state
	count := uint(x >> 61)
	r.state = x * 6364136223846793005
	x ^= x >> 22
	return uint32(x >> (22 + count))
}

// Uint64 returns the next 64-bit value in the stream.
func (r *RNG) Uint64() uint64 {
	return uint64(r.Uint32())<<32 | uint64(r.Uint32())
}

// Intn returns a value in [0, n). n must be positive.
func (r *RNG) Intn(n int) int {
	return int(r.Uint32() % uint32(n))
}
