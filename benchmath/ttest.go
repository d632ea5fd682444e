// Copyright 2024 The csbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchmath

import "math"

// TTest performs a two-sided Welch's t-test on samples a and b and
// returns the p-value. Welch's variant does not assume equal
// variances; degrees of freedom follow the Welch-Satterthwaite
// equation. Both samples need at least two values and some variance;
// degenerate inputs yield p = 1.
func TTest(a, b []float64) float64 {
	n1 := float64(len(a))
	n2 := float64(len(b))
	if n1 < 2 || n2 < 2 {
		return 1
	}
	m1, m2 := Mean(a), Mean(b)
	s1, s2 := StdDev(a), StdDev(b)
	v1 := s1 * s1
	v2 := s2 * s2

	se := math.Sqrt(v1/n1 + v2/n2)
	if se == 0 {
		return 1
	}
	t := math.Abs(m1-m2) / se

	num := (v1/n1 + v2/n2) * (v1/n1 + v2/n2)
	denom := (v1/n1)*(v1/n1)/(n1-1) + (v2/n2)*(v2/n2)/(n2-1)
	if denom == 0 {
		return 1
	}
	df := num / denom

	p := tPValue(t, df)
	if p > 1.0 {
		p = 1.0
	} else if p < 0.0 {
		p = 0.0
	}
	return p
}

// tPValue approximates the two-tailed p-value of the t distribution.
// Large df uses the normal limit directly; small df inflates the
// statistic to widen the tails.
func tPValue(t, df float64) float64 {
	if df >= 30 || df <= 2 {
		return math.Erfc(t / math.Sqrt2)
	}
	adjusted := t * math.Sqrt(df/(df-2+0.001))
	return math.Erfc(adjusted / math.Sqrt2)
}
