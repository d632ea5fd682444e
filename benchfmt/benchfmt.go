// Copyright 2024 The csbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchfmt reads and writes the csbench text data format.
//
// A data file carries the raw samples of one measurement for a set
// of benchmarks, so a run can be saved and the analysis repeated or
// merged later without re-benchmarking. The format is line oriented:
// an optional header line
//
//	# meas='wall clock time' units=s extract='cat'
//
// describes the measurement, and every following line holds one
// benchmark's name and its samples separated by commas:
//
//	sleep 0.1,0.1003,0.1005,0.1002
//
// Header values containing spaces are quoted with single quotes.
// Benchmark names must not contain commas.
package benchfmt

import "github.com/csbench/csbench/benchcfg"

// BenchSamples is one benchmark's raw samples for the file's
// measurement.
type BenchSamples struct {
	Name    string
	Samples []float64
}

// A File is the parsed form of one data file.
type File struct {
	// MeasName and Units describe the measurement. A file with no
	// header defaults to wall clock seconds.
	MeasName string
	Units    benchcfg.Units
	// Extract is the extraction command of a custom measurement,
	// or empty.
	Extract string

	Benches []BenchSamples
}

// Meas reconstructs the measurement description for analysis.
func (f *File) Meas() benchcfg.Meas {
	kind := benchcfg.MeasWall
	if f.Extract != "" {
		kind = benchcfg.MeasCustom
	}
	return benchcfg.Meas{
		Name:  f.MeasName,
		Cmd:   f.Extract,
		Units: f.Units,
		Kind:  kind,
	}
}
