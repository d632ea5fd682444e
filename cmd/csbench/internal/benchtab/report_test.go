// Copyright 2024 The csbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchtab

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csbench/csbench/benchan"
	"github.com/csbench/csbench/benchcfg"
	"github.com/csbench/csbench/benchrun"
)

func testAnalysis() *benchan.Analysis {
	mkBench := func(name string, mean float64) *benchrun.Bench {
		samples := make([]float64, 20)
		for i := range samples {
			samples[i] = mean * (1 + 0.002*float64(i%5-2))
		}
		return &benchrun.Bench{
			Params:    &benchcfg.BenchParams{Name: name, Str: name, GroupIdx: -1},
			RunCount:  len(samples),
			ExitCodes: make([]int, len(samples)),
			Samples:   [][]float64{samples},
		}
	}
	data := &benchan.Data{
		Meas: []benchcfg.Meas{{
			Name:  "wall clock time",
			Units: benchcfg.Units{Kind: benchcfg.US},
			Kind:  benchcfg.MeasWall,
		}},
		Benches: []*benchrun.Bench{
			mkBench("sleep 0.1", 0.1),
			mkBench("sleep 0.2", 0.2),
		},
	}
	cfg := benchcfg.DefaultRunConfig()
	cfg.Resamples = 500
	return benchan.Analyze(data, cfg)
}

func TestRender(t *testing.T) {
	var sb strings.Builder
	Render(&sb, testAnalysis(), Options{})
	out := sb.String()

	assert.Contains(t, out, "benchmark sleep 0.1")
	assert.Contains(t, out, "benchmark sleep 0.2")
	assert.Contains(t, out, "20 runs")
	assert.Contains(t, out, "mean")
	assert.Contains(t, out, "st dev")
	assert.Contains(t, out, "times slower than")
	assert.Contains(t, out, "geomean")
	assert.NotContains(t, out, "\x1b[", "uncolored report must not contain escapes")
}

func TestRenderGroups(t *testing.T) {
	mkBench := func(name, value string, group int, mean float64) *benchrun.Bench {
		samples := make([]float64, 20)
		for i := range samples {
			samples[i] = mean * (1 + 0.002*float64(i%5-2))
		}
		return &benchrun.Bench{
			Params: &benchcfg.BenchParams{
				Name: name, Str: name,
				GroupIdx: group, ParamValue: value,
			},
			RunCount:  len(samples),
			ExitCodes: make([]int, len(samples)),
			Samples:   [][]float64{samples},
		}
	}
	data := &benchan.Data{
		Meas: []benchcfg.Meas{{
			Name:  "wall clock time",
			Units: benchcfg.Units{Kind: benchcfg.US},
			Kind:  benchcfg.MeasWall,
		}},
		Benches: []*benchrun.Bench{
			mkBench("fast 10", "10", 0, 1),
			mkBench("fast 20", "20", 0, 2),
			mkBench("slow 10", "10", 1, 2),
			mkBench("slow 20", "20", 1, 4),
		},
		Groups: []benchcfg.BenchGroup{
			{Name: "fast {n}", BenchIdxs: []int{0, 1}},
			{Name: "slow {n}", BenchIdxs: []int{2, 3}},
		},
	}
	cfg := benchcfg.DefaultRunConfig()
	cfg.Resamples = 500

	var sb strings.Builder
	Render(&sb, benchan.Analyze(data, cfg), Options{})
	out := sb.String()

	// One comparison block per parameter value, then the average.
	assert.Contains(t, out, "10:\n")
	assert.Contains(t, out, "20:\n")
	assert.Contains(t, out, "slow {n} is 2.0")
	assert.Contains(t, out, "times slower than fast {n} (p=0.00)")
	assert.Contains(t, out, "on average fast {n} is the reference")
	assert.Contains(t, out, "fastest on 0 of 2 values")
}

func TestWriteCSV(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, WriteCSV(&sb, testAnalysis(), 0))
	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "name,runs,mean_low"))
	assert.True(t, strings.HasPrefix(lines[1], "sleep 0.1,20,"))
}

func TestWriteJSON(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, WriteJSON(&sb, testAnalysis()))

	var doc struct {
		Benches []struct {
			Command  string `json:"command"`
			RunCount int    `json:"run_count"`
			Meas     []struct {
				Name string    `json:"name"`
				Val  []float64 `json:"val"`
			} `json:"meas"`
		} `json:"benches"`
	}
	require.NoError(t, json.Unmarshal([]byte(sb.String()), &doc))
	require.Len(t, doc.Benches, 2)
	assert.Equal(t, "sleep 0.1", doc.Benches[0].Command)
	assert.Equal(t, 20, doc.Benches[0].RunCount)
	require.Len(t, doc.Benches[0].Meas, 1)
	assert.Len(t, doc.Benches[0].Meas[0].Val, 20)
}
