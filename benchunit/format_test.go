// Copyright 2024 The csbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchunit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/csbench/csbench/benchcfg"
)

func TestFormatTime(t *testing.T) {
	tests := []struct {
		t    float64
		want string
	}{
		{1.5, "1.500 s"},
		{0.0123, "12.30 ms"},
		{0.000456, "456.0 μs"},
		{2.5e-8, "25.00 ns"},
		{-0.002, "-2.000 ms"},
		{3600, "3600 s"},
		{1e-12, "0.000 s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatTime(tt.t), "FormatTime(%v)", tt.t)
	}
}

func TestFormatMemory(t *testing.T) {
	tests := []struct {
		t    float64
		want string
	}{
		{512, "512.0 B"},
		{2048, "2.000 KB"},
		{3 << 20, "3.000 MB"},
		{5 << 30, "5.000 GB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatMemory(tt.t), "FormatMemory(%v)", tt.t)
	}
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "2.000 ms", FormatValue(2, benchcfg.Units{Kind: benchcfg.UMs}))
	assert.Equal(t, "4.000 KB", FormatValue(4, benchcfg.Units{Kind: benchcfg.UKB}))
	assert.Equal(t, "12.5 ops", FormatValue(12.5, benchcfg.Units{Kind: benchcfg.UCustom, Str: "ops"}))
	assert.Equal(t, "123", FormatValue(123, benchcfg.Units{Kind: benchcfg.UNone}))
}
