// Copyright 2024 The csbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csbench/csbench/benchan"
	"github.com/csbench/csbench/benchcfg"
	"github.com/csbench/csbench/benchrun"
)

func TestBuildMeasDefaults(t *testing.T) {
	o := &options{}
	s := &benchcfg.Settings{}
	cfg := benchcfg.DefaultRunConfig()
	require.NoError(t, buildMeas(o, s, cfg))
	require.Len(t, s.Meas, 3)
	assert.Equal(t, "wall clock time", s.Meas[0].Name)
	assert.False(t, s.Meas[0].IsSecondary)
	assert.True(t, s.Meas[1].IsSecondary)
	assert.False(t, cfg.UsePerf)
}

func TestBuildMeasExplicit(t *testing.T) {
	o := &options{meas: []string{"wall", "maxrss"}}
	s := &benchcfg.Settings{}
	cfg := benchcfg.DefaultRunConfig()
	require.NoError(t, buildMeas(o, s, cfg))
	require.Len(t, s.Meas, 2)
	assert.Equal(t, benchcfg.MeasRUsageMaxRSS, s.Meas[1].Kind)
}

func TestBuildMeasUnknown(t *testing.T) {
	o := &options{meas: []string{"bogus"}}
	err := buildMeas(o, &benchcfg.Settings{}, benchcfg.DefaultRunConfig())
	assert.ErrorContains(t, err, "bogus")
}

func TestBuildMeasCustom(t *testing.T) {
	o := &options{
		custom:  []string{"score"},
		customT: []string{"latency/awk '{print $2}'"},
		customX: []string{"size/kb/wc -c"},
	}
	s := &benchcfg.Settings{}
	require.NoError(t, buildMeas(o, s, benchcfg.DefaultRunConfig()))
	require.Len(t, s.Meas, 6)

	score := s.Meas[3]
	assert.Equal(t, benchcfg.MeasCustom, score.Kind)
	assert.Equal(t, "cat", score.Cmd)
	assert.Equal(t, benchcfg.US, score.Units.Kind)

	latency := s.Meas[4]
	assert.Equal(t, "awk '{print $2}'", latency.Cmd)
	assert.Equal(t, benchcfg.US, latency.Units.Kind)

	size := s.Meas[5]
	assert.Equal(t, benchcfg.UKB, size.Units.Kind)
	assert.Equal(t, "wc -c", size.Cmd)
}

func TestBuildMeasCustomBadSpec(t *testing.T) {
	o := &options{customT: []string{"nocmd"}}
	err := buildMeas(o, &benchcfg.Settings{}, benchcfg.DefaultRunConfig())
	assert.ErrorContains(t, err, "NAME/CMD")
}

func TestLoadData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "saved.csbench")
	data := "# meas='wall clock time' units=s\nfirst,0.1,0.2,0.3\nsecond,0.4,0.5\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	got, err := loadData([]string{path})
	require.NoError(t, err)
	require.Len(t, got.Benches, 2)
	assert.Equal(t, "wall clock time", got.Meas[0].Name)
	assert.Equal(t, 3, got.Benches[0].RunCount)
	assert.Equal(t, []float64{0.4, 0.5}, got.Benches[1].Samples[0])
	assert.Equal(t, -1, got.Benches[0].Params.GroupIdx)
}

func TestLoadDataMeasMismatch(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	require.NoError(t, os.WriteFile(a, []byte("# meas='wall clock time' units=s\nx,1\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("# meas='cpu time' units=s\nx,1\n"), 0o644))

	_, err := loadData([]string{a, b})
	assert.ErrorContains(t, err, "does not match")
}

func TestSortByMean(t *testing.T) {
	mk := func(name string, samples ...float64) *benchrun.Bench {
		return &benchrun.Bench{
			Params: &benchcfg.BenchParams{
				Name:     name,
				Str:      name,
				Meas:     benchcfg.DefaultMeas(),
				GroupIdx: -1,
			},
			RunCount: len(samples),
			Samples:  [][]float64{samples, samples, samples},
		}
	}
	data := &benchan.Data{
		Meas:    benchcfg.DefaultMeas(),
		Benches: []*benchrun.Bench{mk("slow", 0.5, 0.6), mk("fast", 0.1, 0.2)},
	}
	sortByMean(data)
	assert.Equal(t, "fast", data.Benches[0].Params.Name)
	assert.Equal(t, "slow", data.Benches[1].Params.Name)
}

func TestApplyFlagsStopPolicies(t *testing.T) {
	o := &options{}
	cmd := newRootCmd()
	require.NoError(t, cmd.Flags().Parse([]string{"--min-runs", "3", "--max-runs", "9", "-T", "2"}))
	// Rebind: the command owns its own options, so parse into ours.
	o.minRuns = 3
	o.maxRuns = 9
	o.timeLimit = "2"
	o.output = "null"
	o.sortMode = "command"
	o.statTest = "mwu"
	o.jobs = 1
	o.resamples = 1000
	o.progressInterval = 100 * time.Millisecond

	s := &benchcfg.Settings{}
	cfg := benchcfg.DefaultRunConfig()
	require.NoError(t, applyFlags(cmd, o, s, cfg))
	assert.Equal(t, 2*time.Second, cfg.Bench.TimeLimit)
	assert.Equal(t, 3, cfg.Bench.MinRuns)
	assert.Equal(t, 9, cfg.Bench.MaxRuns)
	assert.NotZero(t, cfg.Seed)
}

func TestParseStatTest(t *testing.T) {
	st, err := benchcfg.ParseStatTest("mwu")
	require.NoError(t, err)
	assert.Equal(t, benchcfg.StatMWU, st)

	st, err = benchcfg.ParseStatTest("t-test")
	require.NoError(t, err)
	assert.Equal(t, benchcfg.StatTTest, st)

	_, err = benchcfg.ParseStatTest("anova")
	assert.Error(t, err)
}
