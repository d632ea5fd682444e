// Copyright 2024 The csbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchmath

import (
	"math"
	"sort"
)

// MWU performs a two-sided Mann-Whitney U test on samples a and b and
// returns the p-value under the standard normal approximation with
// continuity correction.
//
// Known deviation from the textbook test: tied values are ranked by
// raw merge order instead of receiving averaged ranks. For samples
// with many repeated values (integer-quantized measurements such as
// page fault counts) this slightly distorts the statistic. The
// behavior is kept deliberately for compatibility with existing
// results.
func MWU(a, b []float64) float64 {
	n1 := len(a)
	n2 := len(b)
	as := append([]float64(nil), a...)
	bs := append([]float64(nil), b...)
	sort.Float64s(as)
	sort.Float64s(bs)

	// Merge the two sorted samples, assigning sequential ranks.
	// Ties go to the first sample.
	rankSum1 := 0.0
	i, j := 0, 0
	for rank := 1; rank <= n1+n2; rank++ {
		if i < n1 && (j >= n2 || as[i] <= bs[j]) {
			rankSum1 += float64(rank)
			i++
		} else {
			j++
		}
	}

	u1 := rankSum1 - float64(n1)*float64(n1+1)/2.0
	u2 := float64(n1)*float64(n2) - u1
	u := math.Max(u1, u2)

	mu := float64(n1) * float64(n2) / 2.0
	sigma := math.Sqrt(float64(n1) * float64(n2) * float64(n1+n2+1) / 12.0)
	z := (u - mu - 0.5) / sigma

	p := math.Erfc(z / math.Sqrt2)
	if p > 1.0 {
		p = 1.0
	} else if p < 0.0 {
		p = 0.0
	}
	return p
}
