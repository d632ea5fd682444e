// Copyright 2024 The csbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchmath

import "math"

// A PointErrEst is a point estimate with an error. The error is a
// standard deviation obtained by first-order propagation.
type PointErrEst struct {
	Point float64
	Err   float64
}

// RefSpeed estimates the ratio u1/u2 of two means with standard
// deviations sigma1 and sigma2, propagating the relative errors:
//
//	err = ref * sqrt((sigma1/u1)^2 + (sigma2/u2)^2)
func RefSpeed(u1, sigma1, u2, sigma2 float64) PointErrEst {
	ref := u1 / u2
	a := sigma1 / u1
	b := sigma2 / u2
	return PointErrEst{Point: ref, Err: ref * math.Sqrt(a*a+b*b)}
}

// A Speedup describes how many times faster or slower one benchmark
// is relative to a reference. Est is reference-over-subject ("how
// many times faster is the subject"), InvEst the inverse ratio;
// IsSlower tells presentation code which of the two to show.
type Speedup struct {
	Est      PointErrEst
	InvEst   PointErrEst
	IsSlower bool
}

// CalcSpeedup computes the speedup of a subject distribution relative
// to a reference distribution, both given as mean/stdev pairs.
func CalcSpeedup(refMean, refStdDev, mean, stdDev float64) Speedup {
	s := Speedup{
		Est:    RefSpeed(refMean, refStdDev, mean, stdDev),
		InvEst: RefSpeed(mean, stdDev, refMean, refStdDev),
	}
	s.IsSlower = s.InvEst.Point > 1.0
	return s
}

// GeoMeanSpeedup aggregates per-value speedups into a single group
// estimate using the geometric mean, with the error propagated
// through the n-th root product:
//
//	av     = (p1*p2*...*pn)^(1/n)
//	av_err = av/n * sqrt(sum((pi^(1/n-1) * erri)^2))
func GeoMeanSpeedup(ests []PointErrEst) PointErrEst {
	n := float64(len(ests))
	meanAccum := 1.0
	errAccum := 0.0
	for _, e := range ests {
		meanAccum *= e.Point
		a := math.Pow(e.Point, 1.0/n-1.0) * e.Err
		errAccum += a * a
	}
	av := math.Pow(meanAccum, 1.0/n)
	return PointErrEst{Point: av, Err: av / n * math.Sqrt(errAccum)}
}
