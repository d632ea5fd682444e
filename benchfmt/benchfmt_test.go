// Copyright 2024 The csbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchfmt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csbench/csbench/benchcfg"
)

func TestReadFile(t *testing.T) {
	in := `# meas='wall clock time' units=s
sleep 0.1,0.1003,0.1005,0.1002
sleep 0.2,0.2001,0.2004
`
	f, err := ReadFile(strings.NewReader(in), "test.csbench")
	require.NoError(t, err)
	assert.Equal(t, "wall clock time", f.MeasName)
	assert.Equal(t, benchcfg.US, f.Units.Kind)
	require.Len(t, f.Benches, 2)
	assert.Equal(t, "sleep 0.1", f.Benches[0].Name)
	assert.Equal(t, []float64{0.1003, 0.1005, 0.1002}, f.Benches[0].Samples)
	assert.Equal(t, []float64{0.2001, 0.2004}, f.Benches[1].Samples)
}

func TestReadFileNoHeader(t *testing.T) {
	f, err := ReadFile(strings.NewReader("echo hi,0.001,0.002\n"), "x")
	require.NoError(t, err)
	assert.Equal(t, "wall clock time", f.MeasName)
	require.Len(t, f.Benches, 1)
	assert.Equal(t, benchcfg.MeasWall, f.Meas().Kind)
}

func TestReadFileCustomMeas(t *testing.T) {
	in := "# meas=ops units=ops/s extract='grep rate | cut -d: -f2'\nbench,100,110\n"
	f, err := ReadFile(strings.NewReader(in), "x")
	require.NoError(t, err)
	assert.Equal(t, "grep rate | cut -d: -f2", f.Extract)
	m := f.Meas()
	assert.Equal(t, benchcfg.MeasCustom, m.Kind)
	assert.Equal(t, "ops/s", m.Units.String())
}

func TestReadFileErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		msg  string
	}{
		{"bad value", "cmd,1.0,zap\n", `invalid value "zap"`},
		{"no values", "cmd\n", "expected name and at least one value"},
		{"bad keyword", "# bogus=1\ncmd,1\n", `invalid header keyword "bogus"`},
		{"unterminated", "# meas='oops\ncmd,1\n", "unterminated header string"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadFile(strings.NewReader(tt.in), "bad.csbench")
			require.Error(t, err)
			var serr *SyntaxError
			require.ErrorAs(t, err, &serr)
			assert.Equal(t, "bad.csbench", serr.FileName)
			assert.Contains(t, serr.Msg, tt.msg)
		})
	}
}

func TestWriteRoundTrip(t *testing.T) {
	f := &File{
		MeasName: "wall clock time",
		Units:    benchcfg.Units{Kind: benchcfg.US},
		Benches: []BenchSamples{
			{Name: "sleep 0.1", Samples: []float64{0.1003, 0.1005}},
			{Name: "sleep 0.2", Samples: []float64{0.2001}},
		},
	}
	var sb strings.Builder
	require.NoError(t, WriteFile(&sb, f))

	got, err := ReadFile(strings.NewReader(sb.String()), "x")
	require.NoError(t, err)
	assert.Equal(t, f.MeasName, got.MeasName)
	assert.Equal(t, f.Benches, got.Benches)
}

func TestWriteRejectsComma(t *testing.T) {
	f := &File{
		MeasName: "wall clock time",
		Units:    benchcfg.Units{Kind: benchcfg.US},
		Benches:  []BenchSamples{{Name: "a,b", Samples: []float64{1}}},
	}
	assert.Error(t, WriteFile(&strings.Builder{}, f))
}
