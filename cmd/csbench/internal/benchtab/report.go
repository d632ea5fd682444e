// Copyright 2024 The csbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchtab renders benchmark analyses as terminal reports,
// CSV tables and JSON documents.
package benchtab

import (
	"fmt"
	"io"

	"github.com/aclements/go-moremath/stats"
	"github.com/charmbracelet/lipgloss"

	"github.com/csbench/csbench/benchan"
	"github.com/csbench/csbench/benchcfg"
	"github.com/csbench/csbench/benchmath"
	"github.com/csbench/csbench/benchunit"
)

// Options control report rendering.
type Options struct {
	// Color enables ANSI styling.
	Color bool
	// Regr prints fitted complexity for parameter groups.
	Regr bool
	// RunsShown suppresses the per-benchmark run count line when
	// the run count was set explicitly.
	RunsShown bool
}

type reporter struct {
	w    io.Writer
	opts Options

	bold    lipgloss.Style
	green   lipgloss.Style
	ltGreen lipgloss.Style
	blue    lipgloss.Style
	ltBlue  lipgloss.Style
	magenta lipgloss.Style
	yellow  lipgloss.Style
}

// Render writes the full text report for an analysis.
func Render(w io.Writer, an *benchan.Analysis, opts Options) {
	r := &reporter{w: w, opts: opts}
	if opts.Color {
		r.bold = lipgloss.NewStyle().Bold(true)
		r.green = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
		r.ltGreen = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
		r.blue = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true)
		r.ltBlue = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
		r.magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
		r.yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	}

	for i := range an.Benches {
		r.benchInfo(an, &an.Benches[i])
	}
	for mi := range an.Meas {
		r.measAnalysis(an, &an.Meas[mi])
	}
}

func (r *reporter) printf(format string, args ...any) {
	fmt.Fprintf(r.w, format, args...)
}

func (r *reporter) benchInfo(an *benchan.Analysis, ba *benchan.BenchAnalysis) {
	r.printf("benchmark %s\n", r.bold.Render(ba.Bench.Params.Name))
	if !r.opts.RunsShown {
		r.printf("%d runs\n", ba.Bench.RunCount)
	}
	r.exitCodes(ba)

	primaries := 0
	for mi := range an.Data.Meas {
		if !an.Data.Meas[mi].IsSecondary {
			primaries++
		}
	}
	for mi := range an.Data.Meas {
		m := &an.Data.Meas[mi]
		if m.IsSecondary {
			continue
		}
		if primaries > 1 {
			r.printf("measurement %s\n", r.yellow.Render(m.Name))
		}
		r.distr(ba.Distr[mi], m.Units)
		for si := range an.Data.Meas {
			sec := &an.Data.Meas[si]
			if sec.IsSecondary && sec.PrimaryIdx == mi {
				r.estimate(sec.Name, ba.Distr[si].Mean, sec.Units, r.blue, r.ltBlue)
			}
		}
		r.outliers(&ba.Distr[mi].Outliers, ba.Bench.RunCount)
	}
}

func (r *reporter) exitCodes(ba *benchan.BenchAnalysis) {
	failures := 0
	for _, code := range ba.Bench.ExitCodes {
		if code != 0 {
			failures++
		}
	}
	if failures > 0 {
		r.printf("%d runs exited with non-zero status (%.2f%%)\n",
			failures, float64(failures)/float64(ba.Bench.RunCount)*100)
	}
}

func (r *reporter) distr(d *benchmath.Distr, u benchcfg.Units) {
	r.printf(" %s %s %s %s\n",
		r.magenta.Render("q{024}"),
		r.magenta.Render(benchunit.FormatValue(d.Min, u)),
		r.magenta.Render(benchunit.FormatValue(d.Median, u)),
		r.magenta.Render(benchunit.FormatValue(d.Max, u)))
	r.estimate("mean", d.Mean, u, r.green, r.ltGreen)
	r.estimate("st dev", d.StdDev, u, r.green, r.ltGreen)
}

func (r *reporter) estimate(name string, e benchmath.Estimate, u benchcfg.Units, prim, sec lipgloss.Style) {
	r.printf("%7s %s %s %s\n",
		prim.Render(name),
		sec.Render(fmt.Sprintf("%9s", benchunit.FormatValue(e.Lower, u))),
		prim.Render(fmt.Sprintf("%9s", benchunit.FormatValue(e.Point, u))),
		sec.Render(fmt.Sprintf("%9s", benchunit.FormatValue(e.Upper, u))))
}

func (r *reporter) outliers(o *benchmath.Outliers, runs int) {
	total := o.Count()
	if total == 0 {
		r.printf("outliers have %s (%.1f%%) effect on st dev\n",
			benchmath.VarianceSeverity(o.Var), o.Var*100)
		return
	}
	r.printf("%d outliers (%.2f%%) %s (%.1f%%) effect on st dev\n",
		total, float64(total)/float64(runs)*100,
		benchmath.VarianceSeverity(o.Var), o.Var*100)
	for _, c := range []struct {
		n    int
		name string
	}{
		{o.LowSevere, "low severe"},
		{o.LowMild, "low mild"},
		{o.HighMild, "high mild"},
		{o.HighSevere, "high severe"},
	} {
		if c.n > 0 {
			r.printf("  %d (%.2f%%) %s\n", c.n, float64(c.n)/float64(runs)*100, c.name)
		}
	}
}

func (r *reporter) measAnalysis(an *benchan.Analysis, ma *benchan.MeasAnalysis) {
	if ma.Cmp == nil && len(ma.Groups) == 0 {
		return
	}
	r.printf("measurement %s\n", r.yellow.Render(ma.Meas.Name))
	if ma.Cmp != nil {
		r.benchCmp(an, ma)
	}
	for gi := range ma.Groups {
		r.group(&ma.Groups[gi], ma.Meas.Units)
	}
	if ma.GroupCmp != nil {
		r.groupCmp(an, ma)
	}
	r.geomeanRow(an, ma)
}

func (r *reporter) benchCmp(an *benchan.Analysis, ma *benchan.MeasAnalysis) {
	cmp := ma.Cmp
	name := func(i int) string { return an.Data.Benches[i].Params.Name }
	if len(an.Data.Benches) > 2 {
		r.printf("%s is %s\n", r.blue.Render("fastest"), r.bold.Render(name(ma.ByMean[0])))
		r.printf("slowest is %s\n", r.bold.Render(name(ma.ByMean[len(ma.ByMean)-1])))
	}
	for _, i := range ma.ByMean {
		if i == cmp.RefIdx {
			continue
		}
		sp := cmp.Speedups[i]
		if sp.IsSlower {
			r.printf("  %s is %s ± %s times slower than %s (p=%.2f)\n",
				r.bold.Render(name(i)),
				r.green.Render(fmt.Sprintf("%.3f", sp.InvEst.Point)),
				r.ltGreen.Render(fmt.Sprintf("%.3f", sp.InvEst.Err)),
				r.bold.Render(name(cmp.RefIdx)), cmp.PValues[i])
		} else {
			r.printf("  %s is %s ± %s times faster than %s (p=%.2f)\n",
				r.bold.Render(name(i)),
				r.green.Render(fmt.Sprintf("%.3f", sp.Est.Point)),
				r.ltGreen.Render(fmt.Sprintf("%.3f", sp.Est.Err)),
				r.bold.Render(name(cmp.RefIdx)), cmp.PValues[i])
		}
	}
}

func (r *reporter) group(g *benchan.GroupAnalysis, u benchcfg.Units) {
	r.printf("group %s\n", r.bold.Render(g.Group.Name))
	for i, e := range g.Entries {
		marker := "  "
		switch i {
		case g.Fastest:
			marker = "< "
		case g.Slowest:
			marker = "> "
		}
		r.printf("%s%s: %s ± %s\n", marker, e.Value,
			benchunit.FormatValue(e.Mean, u), benchunit.FormatValue(e.StdDev, u))
	}
	if r.opts.Regr && g.Regress != nil {
		r.printf("%s complexity (%g)\n", g.Regress.Complexity, g.Regress.A)
	}
}

func (r *reporter) groupCmp(an *benchan.Analysis, ma *benchan.MeasAnalysis) {
	cmp := ma.GroupCmp
	name := func(i int) string { return ma.Groups[i].Group.Name }
	for vi, valRef := range cmp.ValRefs {
		r.printf("%s:\n", ma.Groups[valRef].Entries[vi].Value)
		for gi := range ma.Groups {
			if gi == valRef {
				continue
			}
			sp := cmp.Speedups[vi][gi]
			word, est := "faster", sp.Est
			if sp.IsSlower {
				word, est = "slower", sp.InvEst
			}
			r.printf("  %s is %s ± %s times %s than %s (p=%.2f)\n",
				r.bold.Render(name(gi)),
				r.green.Render(fmt.Sprintf("%.3f", est.Point)),
				r.ltGreen.Render(fmt.Sprintf("%.3f", est.Err)),
				word, r.bold.Render(name(valRef)), cmp.PValues[vi][gi])
		}
	}
	r.printf("on average %s is the reference\n", r.bold.Render(name(cmp.RefIdx)))
	for gi := range ma.Groups {
		if gi == cmp.RefIdx {
			continue
		}
		sp := cmp.Avg[gi]
		word, est := "faster", sp.Est
		if sp.IsSlower {
			word, est = "slower", sp.InvEst
		}
		r.printf("  %s is %s ± %s times %s on average (fastest on %d of %d values)\n",
			r.bold.Render(name(gi)),
			r.green.Render(fmt.Sprintf("%.3f", est.Point)),
			r.ltGreen.Render(fmt.Sprintf("%.3f", est.Err)),
			word,
			cmp.FastestCounts[gi], len(ma.Groups[cmp.RefIdx].Entries))
	}
}

// geomeanRow summarizes the measurement with the geometric mean over
// all benchmark means, the way benchmark tables carry a closing
// geomean line.
func (r *reporter) geomeanRow(an *benchan.Analysis, ma *benchan.MeasAnalysis) {
	if len(an.Data.Benches) < 2 {
		return
	}
	means := make([]float64, len(an.Benches))
	for i := range an.Benches {
		means[i] = an.Benches[i].Distr[ma.MeasIdx].Mean.Point
	}
	gm := stats.GeoMean(means)
	r.printf("geomean %s\n", benchunit.FormatValue(gm, ma.Meas.Units))
}

