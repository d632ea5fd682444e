// Copyright 2024 The csbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchmath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateBounds(t *testing.T) {
	rng := NewRNG(1)
	// Generate several sample sets of varying size and noise and
	// check the envelope property on each.
	for _, n := range []int{2, 3, 10, 57, 100} {
		data := make([]float64, n)
		for i := range data {
			data[i] = 1.0 + float64(rng.Uint32()%1000)/1000.0
		}
		d := EstimateDistr(data, 1000, rng)
		assert.LessOrEqual(t, d.Mean.Lower, d.Mean.Point, "n=%d", n)
		assert.LessOrEqual(t, d.Mean.Point, d.Mean.Upper, "n=%d", n)
		assert.LessOrEqual(t, d.StdDev.Lower, d.StdDev.Point, "n=%d", n)
		assert.LessOrEqual(t, d.StdDev.Point, d.StdDev.Upper, "n=%d", n)
	}
}

func TestEstimateDistrPercentiles(t *testing.T) {
	// 100 samples 0..99: truncated-index percentiles are exact.
	data := make([]float64, 100)
	for i := range data {
		data[i] = float64(99 - i)
	}
	d := EstimateDistr(data, 10, NewRNG(1))
	assert.Equal(t, 0.0, d.Min)
	assert.Equal(t, 99.0, d.Max)
	assert.Equal(t, 1.0, d.P1)
	assert.Equal(t, 5.0, d.P5)
	assert.Equal(t, 25.0, d.Q1)
	assert.Equal(t, 50.0, d.Median)
	assert.Equal(t, 75.0, d.Q3)
	assert.Equal(t, 95.0, d.P95)
	assert.Equal(t, 99.0, d.P99)
}

func TestOutlierFenceOrdering(t *testing.T) {
	rng := NewRNG(42)
	for trial := 0; trial < 20; trial++ {
		data := make([]float64, 30)
		for i := range data {
			data[i] = float64(rng.Uint32() % 100)
		}
		// Inject extremes on some trials.
		if trial%2 == 0 {
			data[0] = 1e6
			data[1] = -1e6
		}
		d := EstimateDistr(data, 100, rng)
		o := d.Outliers
		assert.LessOrEqual(t, o.LowSevereX, o.LowMildX)
		assert.LessOrEqual(t, o.LowMildX, o.HighMildX)
		assert.LessOrEqual(t, o.HighMildX, o.HighSevereX)
	}
}

func TestOutlierClassification(t *testing.T) {
	// Tight cluster plus one extreme high point: the extreme must
	// be classified as a severe high outlier.
	data := []float64{10, 10, 10, 10, 11, 11, 11, 12, 12, 12, 12, 1000}
	d := EstimateDistr(data, 100, NewRNG(7))
	assert.Equal(t, 1, d.Outliers.HighSevere)
	assert.Equal(t, 0, d.Outliers.LowSevere)
	assert.Equal(t, 1, d.Outliers.Count())
}

func TestOutlierVarianceBands(t *testing.T) {
	// A clean low-noise sample should have negligible outlier
	// variance; a sample with a massive outlier should not.
	clean := make([]float64, 50)
	for i := range clean {
		clean[i] = 1.0 + 0.0001*float64(i%5)
	}
	d := EstimateDistr(clean, 100, NewRNG(3))
	assert.Equal(t, "no", VarianceSeverity(d.Outliers.Var))

	dirty := append([]float64(nil), clean...)
	dirty[0] = 100.0
	d = EstimateDistr(dirty, 100, NewRNG(3))
	assert.Greater(t, d.Outliers.Var, 0.5)
	assert.Equal(t, "severe", VarianceSeverity(d.Outliers.Var))
}

func TestMeanStdDev(t *testing.T) {
	data := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	require.InDelta(t, 5.0, Mean(data), 1e-12)
	// Population standard deviation.
	require.InDelta(t, 2.0, StdDev(data), 1e-12)
}

func TestRNGDeterminism(t *testing.T) {
	a := NewRNG(123)
	b := NewRNG(123)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Uint32(), b.Uint32())
	}
	c := NewRNG(124)
	diff := false
	d := NewRNG(123)
	for i := 0; i < 100; i++ {
		if c.Uint32() != d.Uint32() {
			diff = true
			break
		}
	}
	assert.True(t, diff, "different seeds should give different streams")
}
