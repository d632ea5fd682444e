// Copyright 2024 The csbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchmath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTTestIdentical(t *testing.T) {
	var a []float64
	for i := 0; i < 50; i++ {
		a = append(a, float64(i))
	}
	p := TTest(a, a)
	assert.InDelta(t, 1.0, p, 1e-9)
}

func TestTTestSeparated(t *testing.T) {
	var a, b []float64
	for i := 0; i < 20; i++ {
		a = append(a, 1.0+float64(i)*0.01)
		b = append(b, 2.0+float64(i)*0.01)
	}
	p := TTest(a, b)
	assert.Less(t, p, 0.001)
	assert.InDelta(t, p, TTest(b, a), 1e-12)
}

func TestTTestOverlapping(t *testing.T) {
	a := []float64{1, 3, 5, 7, 9, 11, 13, 15}
	b := []float64{2, 4, 6, 8, 10, 12, 14, 16}
	p := TTest(a, b)
	assert.Greater(t, p, 0.3)
}

func TestTTestDegenerate(t *testing.T) {
	// Too few samples or zero variance carry no evidence.
	assert.Equal(t, 1.0, TTest([]float64{1}, []float64{2, 3}))
	assert.Equal(t, 1.0, TTest([]float64{5, 5, 5}, []float64{5, 5, 5}))
}
