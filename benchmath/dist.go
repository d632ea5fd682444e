// Copyright 2024 The csbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchmath implements the statistical core of csbench:
// bootstrap distribution estimation, outlier classification,
// ordinary-least-squares complexity fitting, the Mann-Whitney U test,
// and speedup computation with error propagation.
//
// All functions in this package are pure: they take sample slices and
// return derived values without touching global state. Randomness is
// always supplied explicitly through an RNG so that analyses are
// reproducible.
package benchmath

import (
	"math"
	"sort"
)

// An Estimate is a bootstrap estimate of a statistic. Point is the
// statistic computed over the original sample; Lower and Upper are
// the extremes of the statistic observed across all bootstrap
// resamples (a min/max envelope, not a percentile interval).
type Estimate struct {
	Lower float64
	Point float64
	Upper float64
}

// Outliers describes the Tukey-fence classification of a sample.
// The *X fields are the fence positions; the counts bucket each
// sample point into at most one category.
type Outliers struct {
	// Var is the fraction of the observed variance attributable
	// to outliers rather than genuine measurement noise.
	Var float64

	LowSevereX  float64
	LowMildX    float64
	HighMildX   float64
	HighSevereX float64

	LowSevere  int
	LowMild    int
	HighMild   int
	HighSevere int
}

// Count returns the total number of outlier samples.
func (o *Outliers) Count() int {
	return o.LowSevere + o.LowMild + o.HighMild + o.HighSevere
}

// VarianceSeverity classifies the outlier variance fraction into the
// conventional severity bands.
func VarianceSeverity(frac float64) string {
	switch {
	case frac < 0.01:
		return "no"
	case frac < 0.1:
		return "slight"
	case frac < 0.5:
		return "moderate"
	}
	return "severe"
}

// A Distr is the read-only analysis artifact for one sample sequence:
// bootstrap estimates of mean and standard deviation, order
// statistics, and outlier classification. It is derived once from a
// finished benchmark and never mutated afterwards.
type Distr struct {
	// Data is the raw sample sequence the distribution was
	// computed from. It is owned by the benchmark accumulator and
	// must not be modified.
	Data []float64

	Mean   Estimate
	StdDev Estimate

	Min float64
	Max float64

	// Percentiles, read off the sorted samples at truncated
	// fractional indexes. No interpolation is performed between
	// adjacent ranks.
	P1     float64
	P5     float64
	Q1     float64
	Median float64
	Q3     float64
	P95    float64
	P99    float64

	Outliers Outliers
}

// Mean returns the arithmetic mean of v. v must be non-empty.
func Mean(v []float64) float64 {
	sum := 0.0
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}

// StdDev returns the population standard deviation of v. v must be
// non-empty.
func StdDev(v []float64) float64 {
	mean := Mean(v)
	sum := 0.0
	for _, x := range v {
		d := x - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(v)))
}

// resample fills dst with a resample-with-replacement of src.
func resample(src, dst []float64, rng *RNG) {
	n := uint32(len(src))
	for i := range dst {
		dst[i] = src[rng.Uint32()%n]
	}
}

// bootstrap computes the min/max envelope of stat over resamples
// bootstrap resamples of data.
func bootstrap(data, tmp []float64, resamples int, rng *RNG, stat func([]float64) float64) (lower, upper float64) {
	lower = math.Inf(1)
	upper = math.Inf(-1)
	for i := 0; i < resamples; i++ {
		resample(data, tmp, rng)
		s := stat(tmp)
		if s < lower {
			lower = s
		}
		if s > upper {
			upper = s
		}
	}
	return lower, upper
}

// EstimateMean bootstraps the mean of data.
func EstimateMean(data []float64, resamples int, rng *RNG) Estimate {
	tmp := make([]float64, len(data))
	lower, upper := bootstrap(data, tmp, resamples, rng, Mean)
	return Estimate{Lower: lower, Point: Mean(data), Upper: upper}
}

// EstimateStdDev bootstraps the standard deviation of data.
func EstimateStdDev(data []float64, resamples int, rng *RNG) Estimate {
	tmp := make([]float64, len(data))
	lower, upper := bootstrap(data, tmp, resamples, rng, StdDev)
	return Estimate{Lower: lower, Point: StdDev(data), Upper: upper}
}

// EstimateDistr computes the full distribution description of data
// using resamples bootstrap resamples. data must be non-empty; the
// returned Distr retains data without copying it.
func EstimateDistr(data []float64, resamples int, rng *RNG) *Distr {
	count := len(data)
	d := &Distr{Data: data}
	tmp := make([]float64, count)

	d.Mean.Point = Mean(data)
	d.Mean.Lower, d.Mean.Upper = bootstrap(data, tmp, resamples, rng, Mean)
	d.StdDev.Point = StdDev(data)
	d.StdDev.Lower, d.StdDev.Upper = bootstrap(data, tmp, resamples, rng, StdDev)

	copy(tmp, data)
	sort.Float64s(tmp)
	d.P1 = tmp[count*1/100]
	d.P5 = tmp[count*5/100]
	d.Q1 = tmp[count/4]
	d.Median = tmp[count/2]
	d.Q3 = tmp[count*3/4]
	d.P95 = tmp[count*95/100]
	d.P99 = tmp[count*99/100]
	d.Min = tmp[0]
	d.Max = tmp[count-1]

	classifyOutliers(d)
	return d
}

// classifyOutliers buckets every sample of d into the Tukey fence
// categories and computes the outlier variance fraction.
func classifyOutliers(d *Distr) {
	iqr := d.Q3 - d.Q1
	o := &d.Outliers
	o.LowSevereX = d.Q1 - iqr*3.0
	o.LowMildX = d.Q1 - iqr*1.5
	o.HighMildX = d.Q3 + iqr*1.5
	o.HighSevereX = d.Q3 + iqr*3.0
	for _, v := range d.Data {
		switch {
		case v < o.LowSevereX:
			o.LowSevere++
		case v > o.HighSevereX:
			o.HighSevere++
		case v < o.LowMildX:
			o.LowMild++
		case v > o.HighMildX:
			o.HighMild++
		}
	}
	o.Var = outlierVariance(d.Mean.Point, d.StdDev.Point, float64(len(d.Data)))
}

// The outlier variance computation follows the closed-form estimate
// from the Criterion statistics literature: given the observed mean
// and standard deviation it brackets the number of outliers that
// could inflate the variance (cMax evaluated at two boundary points)
// and reports the smaller resulting variance ratio.

func cMax(x, uA, a, sigmaB2, sigmaG2 float64) float64 {
	k := uA - x
	d := k * k
	ad := a * d
	k1 := sigmaB2 - a*sigmaG2 + ad
	k0 := -a * ad
	det := k1*k1 - 4*sigmaG2*k0
	return math.Floor(-2.0 * k0 / (k1 + math.Sqrt(det)))
}

func varOut(c, a, sigmaB2, sigmaG2 float64) float64 {
	ac := a - c
	return (ac / a) * (sigmaB2 - ac*sigmaG2)
}

func outlierVariance(mean, stdDev, a float64) float64 {
	sigmaB := stdDev
	uA := mean / a
	uGMin := uA / 2.0
	sigmaG := math.Min(uGMin/4.0, sigmaB/math.Sqrt(a))
	sigmaG2 := sigmaG * sigmaG
	sigmaB2 := sigmaB * sigmaB
	varOutMin := math.Min(
		varOut(1, a, sigmaB2, sigmaG2),
		varOut(math.Min(cMax(0, uA, a, sigmaB2, sigmaG2),
			cMax(uGMin, uA, a, sigmaB2, sigmaG2)), a, sigmaB2, sigmaG2)) /
		sigmaB2
	return varOutMin
}
