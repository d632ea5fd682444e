// Copyright 2024 The csbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchan turns raw benchmark results into the analysis
// consumed by reporting: distributions per measurement, speedup and
// p-value tables against a reference benchmark, and per-group
// parameter analyses with complexity fits.
package benchan

import (
	"sort"
	"strconv"

	"github.com/csbench/csbench/benchcfg"
	"github.com/csbench/csbench/benchmath"
	"github.com/csbench/csbench/benchrun"
)

// Data is the input to Analyze: completed accumulators plus the
// group structure they were instantiated from.
type Data struct {
	Meas    []benchcfg.Meas
	Benches []*benchrun.Bench
	Groups  []benchcfg.BenchGroup
}

// A BenchAnalysis holds one benchmark's distributions, indexed like
// Data.Meas.
type BenchAnalysis struct {
	Bench *benchrun.Bench
	Distr []*benchmath.Distr
}

// A BenchCmp compares every benchmark against a reference on one
// measurement. Speedups and PValues are indexed like Data.Benches;
// the reference's own entries are the identity.
type BenchCmp struct {
	// RefIdx is the benchmark every other one is compared to:
	// the configured baseline, or the fastest by mean.
	RefIdx   int
	Speedups []benchmath.Speedup
	PValues  []float64
}

// A GroupEntry is one parameter value's result within a group.
type GroupEntry struct {
	Value  string
	Num    float64
	Mean   float64
	StdDev float64
}

// A GroupAnalysis summarizes one command group over the shared
// parameter's values on one measurement.
type GroupAnalysis struct {
	Group   *benchcfg.BenchGroup
	Entries []GroupEntry
	Fastest int
	Slowest int
	// Regress is the complexity fit over (value, mean) pairs, or
	// nil when the parameter values are not numeric.
	Regress *benchmath.OLSRegress
}

// A GroupCmp compares groups on one measurement. Comparison is per
// parameter value: at each value the reference group is the
// configured baseline, or the group fastest at that value, and every
// other group gets a speedup and a p-value against it over the raw
// samples. Avg aggregates each group's per-value speedups against
// the run-level reference by geometric mean.
type GroupCmp struct {
	RefIdx int
	// ValRefs[v] is the reference group at parameter value v.
	ValRefs []int
	// Speedups[v][g] and PValues[v][g] compare group g to the
	// value's reference; the reference's own entries are the
	// identity.
	Speedups [][]benchmath.Speedup
	PValues  [][]float64
	Avg      []benchmath.Speedup
	// FastestCounts[g] is the number of parameter values on which
	// group g had the lowest mean.
	FastestCounts []int
}

// A MeasAnalysis is the complete analysis of one primary
// measurement.
type MeasAnalysis struct {
	Meas    *benchcfg.Meas
	MeasIdx int
	// ByMean lists benchmark indices ordered fastest first.
	ByMean   []int
	Cmp      *BenchCmp
	Groups   []GroupAnalysis
	GroupCmp *GroupCmp
}

// An Analysis is everything reporting needs.
type Analysis struct {
	Data    *Data
	Benches []BenchAnalysis
	// Meas holds one analysis per primary measurement; secondary
	// measurements are reported under their primary and are not
	// compared on their own.
	Meas []MeasAnalysis
}

// Analyze derives the full analysis from completed benchmarks. Every
// bench must have at least one run; the scheduler guarantees this.
func Analyze(data *Data, cfg *benchcfg.RunConfig) *Analysis {
	rng := benchmath.NewRNG(cfg.Seed + 1)
	an := &Analysis{Data: data}

	an.Benches = make([]BenchAnalysis, len(data.Benches))
	for i, b := range data.Benches {
		ba := BenchAnalysis{Bench: b, Distr: make([]*benchmath.Distr, len(data.Meas))}
		for mi := range data.Meas {
			ba.Distr[mi] = benchmath.EstimateDistr(b.Samples[mi], cfg.Resamples, rng)
		}
		an.Benches[i] = ba
	}

	for mi := range data.Meas {
		if data.Meas[mi].IsSecondary {
			continue
		}
		an.Meas = append(an.Meas, an.analyzeMeas(mi, cfg))
	}
	return an
}

func (an *Analysis) analyzeMeas(mi int, cfg *benchcfg.RunConfig) MeasAnalysis {
	data := an.Data
	ma := MeasAnalysis{Meas: &data.Meas[mi], MeasIdx: mi}

	ma.ByMean = make([]int, len(data.Benches))
	for i := range ma.ByMean {
		ma.ByMean[i] = i
	}
	sort.SliceStable(ma.ByMean, func(a, b int) bool {
		return an.mean(ma.ByMean[a], mi) < an.mean(ma.ByMean[b], mi)
	})

	if len(data.Benches) > 1 {
		ref := cfg.Baseline
		if ref < 0 || ref >= len(data.Benches) {
			ref = ma.ByMean[0]
		}
		ma.Cmp = an.compareBenches(mi, ref, cfg)
	}

	for gi := range data.Groups {
		ma.Groups = append(ma.Groups, an.analyzeGroup(&data.Groups[gi], mi))
	}
	if len(ma.Groups) > 1 {
		ma.GroupCmp = an.compareGroups(ma.Groups, mi, cfg)
	}
	return ma
}

func (an *Analysis) mean(bench, mi int) float64 {
	return an.Benches[bench].Distr[mi].Mean.Point
}

// pValue runs the configured significance test on two raw sample
// sequences.
func pValue(cfg *benchcfg.RunConfig, a, b []float64) float64 {
	if cfg.StatTest == benchcfg.StatTTest {
		return benchmath.TTest(a, b)
	}
	return benchmath.MWU(a, b)
}

func (an *Analysis) compareBenches(mi, ref int, cfg *benchcfg.RunConfig) *BenchCmp {
	data := an.Data
	cmp := &BenchCmp{
		RefIdx:   ref,
		Speedups: make([]benchmath.Speedup, len(data.Benches)),
		PValues:  make([]float64, len(data.Benches)),
	}
	refDistr := an.Benches[ref].Distr[mi]
	for i := range data.Benches {
		if i == ref {
			cmp.PValues[i] = 1
			continue
		}
		d := an.Benches[i].Distr[mi]
		cmp.Speedups[i] = benchmath.CalcSpeedup(
			refDistr.Mean.Point, refDistr.StdDev.Point,
			d.Mean.Point, d.StdDev.Point)
		cmp.PValues[i] = pValue(cfg,
			data.Benches[ref].Samples[mi], data.Benches[i].Samples[mi])
	}
	return cmp
}

func (an *Analysis) analyzeGroup(g *benchcfg.BenchGroup, mi int) GroupAnalysis {
	ga := GroupAnalysis{Group: g}
	numeric := true
	for _, bi := range g.BenchIdxs {
		b := an.Data.Benches[bi]
		d := an.Benches[bi].Distr[mi]
		num, err := strconv.ParseFloat(b.Params.ParamValue, 64)
		if err != nil {
			numeric = false
		}
		ga.Entries = append(ga.Entries, GroupEntry{
			Value:  b.Params.ParamValue,
			Num:    num,
			Mean:   d.Mean.Point,
			StdDev: d.StdDev.Point,
		})
	}
	for i, e := range ga.Entries {
		if e.Mean < ga.Entries[ga.Fastest].Mean {
			ga.Fastest = i
		}
		if e.Mean > ga.Entries[ga.Slowest].Mean {
			ga.Slowest = i
		}
	}
	if numeric && len(ga.Entries) > 1 {
		x := make([]float64, len(ga.Entries))
		y := make([]float64, len(ga.Entries))
		for i, e := range ga.Entries {
			x[i], y[i] = e.Num, e.Mean
		}
		r := benchmath.OLSFit(x, y)
		ga.Regress = &r
	}
	return ga
}

func (an *Analysis) compareGroups(groups []GroupAnalysis, mi int, cfg *benchcfg.RunConfig) *GroupCmp {
	ref := cfg.Baseline
	if ref < 0 || ref >= len(groups) {
		ref = 0
		for gi := range groups {
			if avgMean(&groups[gi]) < avgMean(&groups[ref]) {
				ref = gi
			}
		}
	}
	vals := len(groups[ref].Entries)
	cmp := &GroupCmp{
		RefIdx:        ref,
		ValRefs:       make([]int, vals),
		Speedups:      make([][]benchmath.Speedup, vals),
		PValues:       make([][]float64, vals),
		Avg:           make([]benchmath.Speedup, len(groups)),
		FastestCounts: make([]int, len(groups)),
	}

	for vi := 0; vi < vals; vi++ {
		fastest := 0
		for gi := range groups {
			if groups[gi].Entries[vi].Mean < groups[fastest].Entries[vi].Mean {
				fastest = gi
			}
		}
		cmp.FastestCounts[fastest]++

		valRef := fastest
		if cfg.Baseline >= 0 && cfg.Baseline < len(groups) {
			valRef = cfg.Baseline
		}
		cmp.ValRefs[vi] = valRef
		cmp.Speedups[vi] = make([]benchmath.Speedup, len(groups))
		cmp.PValues[vi] = make([]float64, len(groups))
		re := groups[valRef].Entries[vi]
		refSamples := an.valSamples(&groups[valRef], vi, mi)
		for gi := range groups {
			if gi == valRef {
				cmp.PValues[vi][gi] = 1
				continue
			}
			ge := groups[gi].Entries[vi]
			cmp.Speedups[vi][gi] = benchmath.CalcSpeedup(re.Mean, re.StdDev, ge.Mean, ge.StdDev)
			cmp.PValues[vi][gi] = pValue(cfg, refSamples, an.valSamples(&groups[gi], vi, mi))
		}
	}

	for gi := range groups {
		if gi == ref {
			continue
		}
		perVal := make([]benchmath.PointErrEst, vals)
		inv := make([]benchmath.PointErrEst, vals)
		for vi := 0; vi < vals; vi++ {
			re, ge := groups[ref].Entries[vi], groups[gi].Entries[vi]
			sp := benchmath.CalcSpeedup(re.Mean, re.StdDev, ge.Mean, ge.StdDev)
			perVal[vi], inv[vi] = sp.Est, sp.InvEst
		}
		avg := benchmath.GeoMeanSpeedup(perVal)
		avgInv := benchmath.GeoMeanSpeedup(inv)
		cmp.Avg[gi] = benchmath.Speedup{
			Est:      avg,
			InvEst:   avgInv,
			IsSlower: avgInv.Point > 1,
		}
	}
	return cmp
}

// valSamples returns the raw samples of one group's benchmark at one
// parameter value.
func (an *Analysis) valSamples(g *GroupAnalysis, vi, mi int) []float64 {
	return an.Data.Benches[g.Group.BenchIdxs[vi]].Samples[mi]
}

func avgMean(g *GroupAnalysis) float64 {
	sum := 0.0
	for _, e := range g.Entries {
		sum += e.Mean
	}
	return sum / float64(len(g.Entries))
}

